package harness

import "context"

// Field is one parsed field as reported by an implementation under
// test. Nested records carry []Field values and record arrays carry
// [][]Field, so expectations can descend without knowing the
// implementation's own types.
type Field struct {
	FID      uint16
	TypeTag  string // "int", "float", "bool", "string", "string_array", "nested_record", "nested_array"
	Value    any
	Checksum string // uppercase hex, empty when the input carried none
}

// Record is the parse output surface the harness validates against.
type Record interface {
	Fields() []Field
}

// ParseOptions mirrors a test case's config block.
type ParseOptions struct {
	Strict            bool
	ValidateChecksums bool
	NormalizeValues   bool
	MaxNestingDepth   *int
}

// EncodeOptions controls canonical re-encoding for round-trip cases.
type EncodeOptions struct {
	Canonical        bool
	IncludeTypeHints bool
	IncludeChecksums bool
}

// Implementation is the system under test. Parse errors are reported
// through the error return; their messages are matched against
// error-handling expectations.
type Implementation interface {
	Name() string
	Parse(ctx context.Context, input string, opts ParseOptions) (Record, error)
	Encode(ctx context.Context, rec Record, opts EncodeOptions) (string, error)
}

// StaticRecord is a plain Record for implementations and tests that
// build field slices directly.
type StaticRecord []Field

func (r StaticRecord) Fields() []Field { return r }
