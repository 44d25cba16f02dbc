package conflictstore

// Driver names a supported database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config selects and configures the conflict store's database backend.
type Config struct {
	Driver Driver
	DSN    string
}

func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.DSN == "" {
		c.DSN = "/tmp/aeonsync-conflicts.db"
	}
	return c
}
