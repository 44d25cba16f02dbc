package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/aeonsync/core/pkg/config"
	"github.com/aeonsync/core/pkg/operation"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema <operation|config>",
	Short: "Generate a JSON schema for operation.Operation or config.Config",
	Long: `Generate a JSON schema for the operation wire shape or the
aeonsyncd configuration file.

The schema can be used for IDE autocompletion, configuration file
validation, or documentation generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var schema *jsonschema.Schema
	switch args[0] {
	case "operation":
		schema = reflector.Reflect(&operation.Operation{})
		schema.Title = "aeonsync Operation"
	case "config":
		schema = reflector.Reflect(&config.Config{})
		schema.Title = "aeonsyncd Configuration"
	default:
		return fmt.Errorf("unknown schema %q (want operation or config)", args[0])
	}
	schema.Version = "https://json-schema.org/draft/2020-12/schema"

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0o644); err != nil {
			return fmt.Errorf("write schema file: %w", err)
		}
		fmt.Printf("JSON schema written to %s\n", schemaOutput)
		return nil
	}

	fmt.Println(string(schemaJSON))
	return nil
}
