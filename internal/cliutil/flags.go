package cliutil

import "github.com/aeonsync/core/internal/adminclient"

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the values of aeonsyncctl's persistent flags.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
}

// Client builds an admin API client from the current flag values.
func Client() *adminclient.Client {
	c := adminclient.New(Flags.ServerURL)
	if Flags.Token != "" {
		c = c.WithToken(Flags.Token)
	}
	return c
}
