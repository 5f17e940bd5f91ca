/*
	Schema validation of bookmark payloads before upload.  Malformed bookmark
	batches are a common source of silent annotation corruption, so uploads
	are checked client-side against the bookmark schema.
*/

package payload

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/flyconnectome/dvidtools/dvid"
)

// bookmarkSchema describes a batch of bookmark elements: Note-kind points
// with optional tags and scalar properties.
const bookmarkSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["Pos", "Kind"],
		"properties": {
			"Pos": {
				"type": "array",
				"items": {"type": "integer"},
				"minItems": 3,
				"maxItems": 3
			},
			"Kind": {"const": "Note"},
			"Tags": {
				"type": "array",
				"items": {"type": "string"}
			},
			"Prop": {
				"type": "object",
				"additionalProperties": {
					"type": ["string", "number", "boolean"]
				}
			}
		}
	}
}`

var compiledBookmarkSchema = jsonschema.MustCompileString("bookmarks.json", bookmarkSchema)

// ValidateBookmarks checks a JSON bookmark batch against the bookmark
// schema, returning ErrFormat with the schema violation on failure.
func ValidateBookmarks(jsonBytes []byte) error {
	var v interface{}
	if err := json.Unmarshal(jsonBytes, &v); err != nil {
		return fmt.Errorf("could not parse bookmarks: %v: %w", err, dvid.ErrParse)
	}
	if err := compiledBookmarkSchema.Validate(v); err != nil {
		return fmt.Errorf("bookmarks failed validation: %v: %w", err, dvid.ErrFormat)
	}
	return nil
}

// ValidateSchema checks a JSON value against a caller-supplied schema, for
// instances whose schema is stored server-side.
func ValidateSchema(jsonBytes, schemaBytes []byte) error {
	sch, err := jsonschema.CompileString("schema.json", string(schemaBytes))
	if err != nil {
		return fmt.Errorf("unable to compile json schema: %v: %w", err, dvid.ErrParse)
	}
	var v interface{}
	if err := json.Unmarshal(jsonBytes, &v); err != nil {
		return fmt.Errorf("could not parse value: %v: %w", err, dvid.ErrParse)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("value failed validation: %v: %w", err, dvid.ErrFormat)
	}
	return nil
}
