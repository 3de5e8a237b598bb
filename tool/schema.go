package tool

import "github.com/invopop/jsonschema"

// GenerateSchema reflects a JSON Schema from the input struct type. The root
// struct is expanded in place so hosts receive a plain object schema rather
// than a $ref into $defs.
func GenerateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var zero T
	return r.Reflect(&zero)
}
