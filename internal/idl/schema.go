package idl

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
)

// envelopeSchemaSrc is the auxiliary structural check run over a decoded
// File's meta block after the hand-rolled scalar-field count in
// decodeMeta has passed. It exists as a second, independent line of
// defense against malformed IDL — the two checks overlap deliberately.
const envelopeSchemaSrc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["namespace", "version", "description"],
  "properties": {
    "namespace": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "description": {"type": "string", "minLength": 1},
    "use": {"type": "array", "items": {"type": "string"}}
  }
}`

var envelopeSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(envelopeSchemaSrc)))
	if err != nil {
		panic(fmt.Sprintf("idl: invalid embedded envelope schema: %v", err))
	}
	if err := compiler.AddResource("envelope.json", doc); err != nil {
		panic(fmt.Sprintf("idl: invalid embedded envelope schema: %v", err))
	}
	envelopeSchema = compiler.MustCompile("envelope.json")
}

// ValidateEnvelope re-checks a loaded File's meta block against the
// embedded JSON Schema, independent of the field-count check in
// decodeMeta. A File that already decoded successfully will only fail
// this if namespace/version/description contain the empty string in a
// way decodeMeta's zero-value check missed, so this is defense in depth
// rather than the primary gate.
func ValidateEnvelope(f *File) error {
	instance := map[string]any{
		"namespace":   f.Namespace,
		"version":     f.Version,
		"description": f.Description,
	}
	if len(f.Uses) > 0 {
		uses := make([]any, len(f.Uses))
		for i, u := range f.Uses {
			uses[i] = u
		}
		instance["use"] = uses
	}
	if err := envelopeSchema.Validate(instance); err != nil {
		return rpcerrors.Wrap(&rpcerrors.Report{
			Schema:  "rpctyping.error/v1",
			Code:    rpcerrors.LDR005,
			Phase:   "load",
			Message: fmt.Sprintf("%s: envelope schema: %v", f.Path, err),
		})
	}
	return nil
}
