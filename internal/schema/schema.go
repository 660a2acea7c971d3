// Package schema validates suite documents against the embedded CUE
// schema before the loader touches them. Validation catches shape
// errors (unknown categories, malformed expectations, out-of-range
// field ids) with CUE's error positions, which are friendlier than
// loader failures.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed suite.cue
var suiteSchema string

// ValidateFile validates a suite YAML file against the schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read suite file: %w", err)
	}
	if err := ValidateBytes(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateBytes validates suite YAML content against the schema.
func ValidateBytes(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("suite document is empty")
	}

	ctx := cuecontext.New()
	schemaVal := ctx.CompileString(suiteSchema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Suite"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Suite: %w", err)
	}

	docVal := ctx.Encode(normalizeKeys(doc))
	if err := docVal.Err(); err != nil {
		return fmt.Errorf("encode suite document: %w", err)
	}

	// Concrete validation makes an absent required field (name, input,
	// an error expectation's message) a violation instead of an
	// incomplete value.
	unified := def.Unify(docVal)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// normalizeKeys rewrites YAML maps to string keys so CUE can encode
// them. Integer keys appear in equivalence_mapping blocks.
func normalizeKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeKeys(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeKeys(item)
		}
		return out
	default:
		return v
	}
}
