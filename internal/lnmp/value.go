package lnmp

import "sort"

// Value is the closed set of LNMP value types. Only Int, Float, Bool,
// String, StringArray, NestedRecord, and RecordArray implement it.
type Value interface {
	value()
}

// Int is a 64-bit signed integer value.
type Int int64

func (Int) value() {}

// Float is a 64-bit floating point value.
type Float float64

func (Float) value() {}

// Bool is a boolean value; canonical text form is 1/0.
type Bool bool

func (Bool) value() {}

// String is a text value.
type String string

func (String) value() {}

// StringArray is an ordered list of strings.
type StringArray []string

func (StringArray) value() {}

// NestedRecord is a record embedded as a field value.
type NestedRecord struct {
	Record *Record
}

func (NestedRecord) value() {}

// RecordArray is an ordered list of nested records.
type RecordArray []*Record

func (RecordArray) value() {}

// Field is one fid/value pair of a record.
type Field struct {
	FID   uint16
	Value Value

	// Checksum is the SC32 checksum carried in the source text, upper
	// hex, empty when the field had none.
	Checksum string
}

// Record is an ordered collection of fields.
type Record struct {
	fields []Field
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// FromFields builds a record from fields, preserving their order.
func FromFields(fields []Field) *Record {
	r := &Record{fields: make([]Field, len(fields))}
	copy(r.fields, fields)
	return r
}

// AddField appends a field to the record.
func (r *Record) AddField(f Field) {
	r.fields = append(r.fields, f)
}

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field {
	return r.fields
}

// GetField returns the first field with the given fid.
func (r *Record) GetField(fid uint16) (Field, bool) {
	for _, f := range r.fields {
		if f.FID == fid {
			return f, true
		}
	}
	return Field{}, false
}

// SortedFields returns the fields sorted by fid. The sort is stable so
// duplicate fids (loose mode) keep their source order.
func (r *Record) SortedFields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FID < out[j].FID })
	return out
}

// TypeHint is the single-letter type annotation written after a field id.
type TypeHint int

// Type hints in hint-string order: i, f, b, s, sa, r, ra.
const (
	HintNone TypeHint = iota
	HintInt
	HintFloat
	HintBool
	HintString
	HintStringArray
	HintRecord
	HintRecordArray
)

// String returns the text form of the hint, empty for HintNone.
func (h TypeHint) String() string {
	switch h {
	case HintInt:
		return "i"
	case HintFloat:
		return "f"
	case HintBool:
		return "b"
	case HintString:
		return "s"
	case HintStringArray:
		return "sa"
	case HintRecord:
		return "r"
	case HintRecordArray:
		return "ra"
	default:
		return ""
	}
}

// ParseTypeHint parses a hint string; ok is false for unknown hints.
func ParseTypeHint(s string) (TypeHint, bool) {
	switch s {
	case "i":
		return HintInt, true
	case "f":
		return HintFloat, true
	case "b":
		return HintBool, true
	case "s":
		return HintString, true
	case "sa":
		return HintStringArray, true
	case "r":
		return HintRecord, true
	case "ra":
		return HintRecordArray, true
	default:
		return HintNone, false
	}
}

// HintFor returns the hint matching a value's type.
func HintFor(v Value) TypeHint {
	switch v.(type) {
	case Int:
		return HintInt
	case Float:
		return HintFloat
	case Bool:
		return HintBool
	case String:
		return HintString
	case StringArray:
		return HintStringArray
	case NestedRecord:
		return HintRecord
	case RecordArray:
		return HintRecordArray
	default:
		return HintNone
	}
}

// Validates reports whether a parsed value satisfies the hint.
func (h TypeHint) Validates(v Value) bool {
	if h == HintNone {
		return true
	}
	return HintFor(v) == h
}

// TypeTag returns the long type name used by the conformance contract
// for a value ("int", "string_array", "nested_record", ...).
func TypeTag(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case StringArray:
		return "string_array"
	case NestedRecord:
		return "nested_record"
	case RecordArray:
		return "nested_array"
	default:
		return "unknown"
	}
}
