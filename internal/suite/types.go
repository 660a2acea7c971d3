package suite

// Category names used by the suite document and by category-filtered runs.
const (
	CategoryStructural    = "structural"
	CategorySemantic      = "semantic"
	CategoryErrorHandling = "error-handling"
	CategoryRoundTrip     = "round-trip"
)

// Categories lists the fixed categories in their canonical run order.
var Categories = []string{
	CategoryStructural,
	CategorySemantic,
	CategoryErrorHandling,
	CategoryRoundTrip,
}

// TestConfig holds per-case execution options. The zero value is the
// documented default: every toggle off, no depth limit, no equivalence
// mapping.
type TestConfig struct {
	// NormalizeValues allows value comparison to apply the case's
	// equivalence mapping before comparing.
	NormalizeValues bool

	// ValidateChecksums turns on checksum verification for expected
	// fields that declare one, and checksum validation in the parser.
	ValidateChecksums bool

	// StrictMode selects strict parsing on the implementation side AND
	// exact field-set comparison on the validation side. Both are gated
	// by the one flag on purpose: a suite author opts into both
	// tightenings together.
	StrictMode bool

	// PreserveChecksums makes the round-trip re-encoding include
	// checksums.
	PreserveChecksums bool

	// MaxNestingDepth limits parser nesting when set.
	MaxNestingDepth *int

	// EquivalenceMapping maps a field id to source-representation ->
	// canonical-representation rewrites, declaring that distinct textual
	// encodings decode to the same logical value.
	EquivalenceMapping map[uint16]map[string]string
}

// ExpectedField is one expected output field of a success expectation.
type ExpectedField struct {
	// FID is the unsigned 16-bit field identifier, unique within the
	// case's expected field set.
	FID uint16

	// TypeName names the expected decoded type ("int", "string", ...).
	TypeName string

	// Value is the expected decoded value as a plain scalar/sequence/
	// mapping tree.
	Value any

	// Checksum is the expected content checksum, empty when the field
	// carries none.
	Checksum string
}

// ExpectedError is one expected failure. Only Error and Message are
// matched; the diagnostic coordinates document the failure site for suite
// readers and are deliberately not checked.
type ExpectedError struct {
	Error   string
	Message string

	FieldID  *uint16
	Line     *int
	Column   *int
	MaxDepth *int
}

// ExpectedOutput is a sum type: either an error expectation or a
// field-set expectation. Exactly one variant is populated; construct via
// ErrorOutput or FieldsOutput.
type ExpectedOutput struct {
	isError bool
	err     ExpectedError
	fields  []ExpectedField
}

// ErrorOutput builds the error variant.
func ErrorOutput(err ExpectedError) *ExpectedOutput {
	return &ExpectedOutput{isError: true, err: err}
}

// FieldsOutput builds the field-set variant. An empty field set is valid:
// it asserts a successful parse with no particular fields.
func FieldsOutput(fields []ExpectedField) *ExpectedOutput {
	return &ExpectedOutput{fields: fields}
}

// IsError reports whether this is the error variant.
func (o *ExpectedOutput) IsError() bool { return o.isError }

// Err returns the expected error; valid only when IsError is true.
func (o *ExpectedOutput) Err() ExpectedError { return o.err }

// Fields returns the expected field set; valid only when IsError is false.
func (o *ExpectedOutput) Fields() []ExpectedField { return o.fields }

// TestCase is one conformance case. Either Expected or ExpectedCanonical
// should be present; a case with neither is reported as a failure by the
// runner (not a load error). When both are present the round-trip path
// takes routing priority.
type TestCase struct {
	Name        string
	Category    string
	Description string
	Input       string
	Config      TestConfig

	Expected          *ExpectedOutput
	ExpectedCanonical *string
}

// TestSuite is the loaded suite: a version string and the four ordered
// category sequences.
type TestSuite struct {
	Version string

	StructuralTests    []TestCase
	SemanticTests      []TestCase
	ErrorHandlingTests []TestCase
	RoundTripTests     []TestCase
}

// AllTests returns every case in the fixed category order (structural,
// semantic, error-handling, round-trip) so repeated runs are reproducible.
func (s *TestSuite) AllTests() []TestCase {
	out := make([]TestCase, 0, s.Len())
	out = append(out, s.StructuralTests...)
	out = append(out, s.SemanticTests...)
	out = append(out, s.ErrorHandlingTests...)
	out = append(out, s.RoundTripTests...)
	return out
}

// Category returns the cases of one category. Unknown names yield an
// empty selection, not an error.
func (s *TestSuite) Category(name string) []TestCase {
	switch name {
	case CategoryStructural:
		return s.StructuralTests
	case CategorySemantic:
		return s.SemanticTests
	case CategoryErrorHandling:
		return s.ErrorHandlingTests
	case CategoryRoundTrip:
		return s.RoundTripTests
	default:
		return nil
	}
}

// Len is the total number of cases across all categories.
func (s *TestSuite) Len() int {
	return len(s.StructuralTests) + len(s.SemanticTests) +
		len(s.ErrorHandlingTests) + len(s.RoundTripTests)
}
