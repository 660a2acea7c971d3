package harness

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/lnmp-format/conformance/internal/suite"
)

// floatTolerance bounds the absolute difference accepted between an
// expected and an actual float.
const floatTolerance = 1e-10

// ValidateFields checks parsed fields against a case's expectations.
// A nil return means the case passes; otherwise the error carries the
// failure reason.
//
// In strict mode the actual field set must match the expectation
// exactly. Otherwise every expected field must be present with an
// equivalent value, and extra fields are tolerated.
func ValidateFields(cfg suite.TestConfig, expected []suite.ExpectedField, actual []Field) error {
	v := fieldValidator{cfg: cfg}
	return v.validateRecord(expected, actual, cfg.StrictMode)
}

type fieldValidator struct {
	cfg suite.TestConfig
}

func (v fieldValidator) validateRecord(expected []suite.ExpectedField, actual []Field, exact bool) error {
	if exact && len(actual) != len(expected) {
		return fmt.Errorf("field count mismatch: expected %d, got %d", len(expected), len(actual))
	}

	byFID := make(map[uint16]Field, len(actual))
	for _, f := range actual {
		byFID[f.FID] = f
	}

	for _, exp := range expected {
		act, ok := byFID[exp.FID]
		if !ok {
			return fmt.Errorf("missing field %d", exp.FID)
		}
		if act.TypeTag != exp.TypeName {
			return fmt.Errorf("field %d type mismatch: expected %s, got %s",
				exp.FID, exp.TypeName, act.TypeTag)
		}
		if err := v.validateValue(exp.FID, exp.TypeName, exp.Value, act.Value); err != nil {
			return fmt.Errorf("field %d value mismatch: %w", exp.FID, err)
		}
		if v.cfg.ValidateChecksums && exp.Checksum != "" {
			// Checksums compare verbatim: case is part of the contract.
			if act.Checksum != exp.Checksum {
				return fmt.Errorf("field %d checksum mismatch: expected %s, got %s",
					exp.FID, exp.Checksum, act.Checksum)
			}
		}
	}

	if exact {
		known := make(map[uint16]bool, len(expected))
		for _, exp := range expected {
			known[exp.FID] = true
		}
		for _, f := range actual {
			if !known[f.FID] {
				return fmt.Errorf("unexpected field %d", f.FID)
			}
		}
	}

	return nil
}

func (v fieldValidator) validateValue(fid uint16, typeName string, expected, actual any) error {
	switch typeName {
	case "int":
		exp, ok := asInt64(expected)
		if !ok {
			return errors.New("expected value is not an integer")
		}
		act, ok := actual.(int64)
		if !ok {
			return fmt.Errorf("expected int, got %v", describeActual(actual))
		}
		if act != exp {
			return fmt.Errorf("expected %d, got %d", exp, act)
		}

	case "float":
		exp, ok := asFloat64(expected)
		if !ok {
			return errors.New("expected value is not a float")
		}
		act, ok := actual.(float64)
		if !ok {
			return fmt.Errorf("expected float, got %v", describeActual(actual))
		}
		if math.Abs(act-exp) >= floatTolerance {
			return fmt.Errorf("expected %v, got %v", exp, act)
		}

	case "bool":
		exp, ok := expected.(bool)
		if !ok {
			return errors.New("expected value is not a boolean")
		}
		act, ok := actual.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %v", describeActual(actual))
		}
		if act != exp {
			return fmt.Errorf("expected %t, got %t", exp, act)
		}

	case "string":
		exp, ok := expected.(string)
		if !ok {
			return errors.New("expected value is not a string")
		}
		exp = v.mapEquivalent(fid, exp)
		act, ok := actual.(string)
		if !ok {
			return fmt.Errorf("expected string, got %v", describeActual(actual))
		}
		if act != exp {
			return fmt.Errorf("expected '%s', got '%s'", exp, act)
		}

	case "string_array":
		expSeq, ok := expected.([]any)
		if !ok {
			return errors.New("expected value is not an array")
		}
		act, ok := actual.([]string)
		if !ok {
			return fmt.Errorf("expected string_array, got %v", describeActual(actual))
		}
		if len(act) != len(expSeq) {
			return fmt.Errorf("array length mismatch: expected %d, got %d", len(expSeq), len(act))
		}
		for i, raw := range expSeq {
			elem, ok := raw.(string)
			if !ok {
				return fmt.Errorf("array element %d is not a string", i)
			}
			elem = v.mapEquivalent(fid, elem)
			if act[i] != elem {
				return fmt.Errorf("array element %d mismatch: expected '%s', got '%s'",
					i, elem, act[i])
			}
		}

	case "nested_record":
		expFields, err := expectedFieldsFromTree(expected)
		if err != nil {
			return err
		}
		act, ok := actual.([]Field)
		if !ok {
			return fmt.Errorf("expected nested_record, got %v", describeActual(actual))
		}
		// Nested comparisons are always exact: the canonical nested form
		// has no optional fields.
		return v.validateRecord(expFields, act, true)

	case "nested_array":
		expSeq, ok := expected.([]any)
		if !ok {
			return errors.New("expected value is not an array")
		}
		act, ok := actual.([][]Field)
		if !ok {
			return fmt.Errorf("expected nested_array, got %v", describeActual(actual))
		}
		if len(act) != len(expSeq) {
			return fmt.Errorf("nested array length mismatch: expected %d, got %d",
				len(expSeq), len(act))
		}
		for i, raw := range expSeq {
			expFields, err := expectedFieldsFromTree(raw)
			if err != nil {
				return fmt.Errorf("nested array element %d: %w", i, err)
			}
			if err := v.validateRecord(expFields, act[i], true); err != nil {
				return fmt.Errorf("nested array element %d mismatch: %w", i, err)
			}
		}

	default:
		return fmt.Errorf("unknown expected type: %s", typeName)
	}

	return nil
}

// mapEquivalent rewrites an expected value through the case's
// equivalence mapping. Mapping only applies under value normalization.
func (v fieldValidator) mapEquivalent(fid uint16, s string) string {
	if !v.cfg.NormalizeValues || v.cfg.EquivalenceMapping == nil {
		return s
	}
	if m, ok := v.cfg.EquivalenceMapping[fid]; ok {
		if mapped, ok := m[s]; ok {
			return mapped
		}
	}
	return s
}

// expectedFieldsFromTree reads a nested expectation of the form
// {fields: [{fid, type, value, checksum?}, ...]} out of the decoded
// YAML tree.
func expectedFieldsFromTree(raw any) ([]suite.ExpectedField, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("expected value is not a record")
	}
	seq, ok := m["fields"]
	if !ok {
		return nil, errors.New("expected record has no 'fields' key")
	}
	items, ok := seq.([]any)
	if !ok {
		return nil, errors.New("expected record 'fields' is not a sequence")
	}

	fields := make([]suite.ExpectedField, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected field %d is not a mapping", i)
		}
		fid, ok := asInt64(entry["fid"])
		if !ok || fid < 0 || fid > 65535 {
			return nil, fmt.Errorf("expected field %d has no valid fid", i)
		}
		typeName, ok := entry["type"].(string)
		if !ok {
			return nil, fmt.Errorf("expected field %d has no type", i)
		}
		value, ok := entry["value"]
		if !ok {
			return nil, fmt.Errorf("expected field %d has no value", i)
		}
		f := suite.ExpectedField{FID: uint16(fid), TypeName: typeName, Value: value}
		if cs, ok := entry["checksum"].(string); ok {
			f.Checksum = cs
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ValidateError checks a parse failure against an error expectation.
// The expected error tag matches case-insensitively as a substring of
// the actual message, either verbatim or with camel-case word breaks
// spaced out, so "ChecksumMismatch" also matches "checksum mismatch".
// The expected message matches as a case-insensitive substring.
func ValidateError(expected *suite.ExpectedError, actual error) error {
	actualLower := strings.ToLower(actual.Error())

	tagLower := strings.ToLower(expected.Error)
	tagSpaced := strings.ToLower(spaceCamelCase(expected.Error))
	if !strings.Contains(actualLower, tagLower) && !strings.Contains(actualLower, tagSpaced) {
		return fmt.Errorf("error type mismatch: expected '%s', got '%s'",
			expected.Error, actual.Error())
	}

	if !strings.Contains(actualLower, strings.ToLower(expected.Message)) {
		return fmt.Errorf("error message mismatch: expected to contain '%s', got '%s'",
			expected.Message, actual.Error())
	}

	return nil
}

func spaceCamelCase(s string) string {
	var sb strings.Builder
	for i, ch := range s {
		if unicode.IsUpper(ch) && i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

// CompareCanonical checks a round-trip result against the expected
// canonical text. Leading and trailing whitespace is ignored; interior
// whitespace is significant.
func CompareCanonical(expected, actual string) error {
	if strings.TrimSpace(actual) == strings.TrimSpace(expected) {
		return nil
	}
	return fmt.Errorf("round-trip mismatch:\nexpected: %s\ngot: %s", expected, actual)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func describeActual(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T(%v)", v, v)
}
