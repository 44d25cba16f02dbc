package handlers

import (
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/aeonsync/core/pkg/config"
	"github.com/aeonsync/core/pkg/operation"
)

var (
	operationSchema = jsonschema.Reflect(&operation.Operation{})
	configSchema    = jsonschema.Reflect(&config.Config{})
)

// OperationSchema serves the JSON Schema for operation.Operation, the
// wire shape operations take once enqueued.
func OperationSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, operationSchema)
}

// ConfigSchema serves the JSON Schema for config.Config, useful for
// validating a config file before handing it to aeonsyncd.
func ConfigSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configSchema)
}
