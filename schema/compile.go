package schema

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/manifest.schema.json
var manifestSchemaDoc []byte

//go:embed schemas/index.schema.json
var indexSchemaDoc []byte

var manifestSchema, indexSchema *jsonschema.Schema

func init() {
	var err error
	manifestSchema, err = compile("manifest.schema.json", manifestSchemaDoc)
	if err != nil {
		panic(fmt.Sprintf("schema: compile manifest schema: %v", err))
	}
	indexSchema, err = compile("index.schema.json", indexSchemaDoc)
	if err != nil {
		panic(fmt.Sprintf("schema: compile index schema: %v", err))
	}
}

func compile(name string, doc []byte) (*jsonschema.Schema, error) {
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, decoded); err != nil {
		return nil, fmt.Errorf("add resource %s: %w", name, err)
	}
	return c.Compile(name)
}
