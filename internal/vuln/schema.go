package vuln

import (
	"bytes"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// resultSchema is the strict shape contract for scanner output: a list
// of matches, each carrying a vulnerability id, a severity and an
// optional description. Anything else is a SchemaError.
const resultSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["matches"],
	"properties": {
		"matches": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["vulnerability"],
				"properties": {
					"vulnerability": {
						"type": "object",
						"required": ["id", "severity"],
						"properties": {
							"id": {"type": "string"},
							"severity": {"type": "string"},
							"description": {"type": "string"}
						}
					}
				}
			}
		}
	}
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(resultSchema))
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("scan-result.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("scan-result.json")
	})
	return schema, schemaErr
}

// validate checks raw scanner output against the result schema.
func validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return sch.Validate(inst)
}
