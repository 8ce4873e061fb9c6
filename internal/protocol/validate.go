package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() {
	c := jsonschema.NewCompiler()
	names := []string{"hello.schema.json", "cmd.schema.json"}
	for _, n := range names {
		b, err := schemaFS.ReadFile("schemas/" + n)
		if err != nil {
			schemasErr = err
			return
		}
		if err := c.AddResource(n, bytes.NewReader(b)); err != nil {
			schemasErr = fmt.Errorf("%s: %w", n, err)
			return
		}
	}
	schemas = map[string]*jsonschema.Schema{}
	for _, n := range names {
		s, err := c.Compile(n)
		if err != nil {
			schemasErr = fmt.Errorf("%s: %w", n, err)
			return
		}
		schemas[n] = s
	}
}

func validate(name string, raw []byte) error {
	schemasOnce.Do(loadSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return schemas[name].Validate(v)
}

// ValidateCommand checks a raw CMD message against the embedded schema.
func ValidateCommand(raw []byte) error { return validate("cmd.schema.json", raw) }

// ValidateHello checks a raw HELLO message against the embedded schema.
func ValidateHello(raw []byte) error { return validate("hello.schema.json", raw) }
