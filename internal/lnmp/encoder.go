package lnmp

import (
	"strconv"
	"strings"
)

// EncoderConfig controls encoding behavior.
type EncoderConfig struct {
	// IncludeTypeHints emits F<fid>:<hint>=<value> instead of
	// F<fid>=<value>.
	IncludeTypeHints bool

	// Canonical separates top-level fields with newlines; otherwise
	// semicolons produce the inline form.
	Canonical bool

	// EnableChecksums appends #<SC32> to every top-level field.
	EnableChecksums bool
}

// Encoder renders records as LNMP text. The zero-argument constructor
// produces canonical output: fields sorted by fid at every level,
// newline separators, no hints, no checksums.
type Encoder struct {
	cfg EncoderConfig
}

func NewEncoder() *Encoder {
	return NewEncoderWithConfig(EncoderConfig{Canonical: true})
}

func NewEncoderWithConfig(cfg EncoderConfig) *Encoder {
	return &Encoder{cfg: cfg}
}

// Encode renders a record. The record is canonicalized first, so output
// is deterministic regardless of input field order.
func (e *Encoder) Encode(rec *Record) string {
	canonical := canonicalize(rec)

	fields := make([]string, 0, len(canonical.Fields()))
	for _, f := range canonical.Fields() {
		fields = append(fields, e.encodeField(f, e.cfg.EnableChecksums))
	}

	sep := "\n"
	if !e.cfg.Canonical {
		sep = ";"
	}
	return strings.Join(fields, sep)
}

func (e *Encoder) encodeField(f Field, withChecksum bool) string {
	var sb strings.Builder
	sb.WriteByte('F')
	sb.WriteString(strconv.FormatUint(uint64(f.FID), 10))
	if e.cfg.IncludeTypeHints {
		sb.WriteByte(':')
		sb.WriteString(HintFor(f.Value).String())
	}
	sb.WriteByte('=')
	sb.WriteString(e.encodeValue(f.Value))
	if withChecksum {
		sb.WriteByte('#')
		sb.WriteString(FormatChecksum(ComputeChecksum(f.FID, f.Value)))
	}
	return sb.String()
}

func (e *Encoder) encodeValue(v Value) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		if val {
			return "1"
		}
		return "0"
	case String:
		return e.encodeString(string(val))
	case StringArray:
		items := make([]string, len(val))
		for i, s := range val {
			items[i] = e.encodeString(s)
		}
		// Canonical form has no spaces after commas.
		return "[" + strings.Join(items, ",") + "]"
	case NestedRecord:
		return e.encodeNestedRecord(val.Record)
	case RecordArray:
		if len(val) == 0 {
			return "[]"
		}
		parts := make([]string, len(val))
		for i, rec := range val {
			parts[i] = e.encodeNestedRecord(rec)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

// encodeNestedRecord renders {F1=..;F2=..}. Nested fields always use
// semicolon separators and never carry checksums.
func (e *Encoder) encodeNestedRecord(rec *Record) string {
	if len(rec.Fields()) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(rec.Fields()))
	for _, f := range rec.Fields() {
		parts = append(parts, e.encodeField(f, false))
	}
	return "{" + strings.Join(parts, ";") + "}"
}

func (e *Encoder) encodeString(s string) string {
	if !needsQuoting(s) {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, ch := range s {
		switch ch {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(ch)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func needsQuoting(s string) bool {
	if s == "" || looksLikeLiteral(s) {
		return true
	}
	for _, ch := range s {
		if !isSafeUnquoted(ch) {
			return true
		}
	}
	return false
}

func isSafeUnquoted(ch rune) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '_', ch == '-', ch == '.':
		return true
	}
	return false
}

// looksLikeLiteral reports whether an unquoted rendering of s would
// reparse as something other than a string.
func looksLikeLiteral(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no":
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

// canonicalize sorts fields by fid at every nesting level and drops
// empty strings, arrays, and nested structures.
func canonicalize(rec *Record) *Record {
	out := NewRecord()
	for _, f := range rec.SortedFields() {
		v := canonicalizeValue(f.Value)
		if isEmptyValue(v) {
			continue
		}
		out.AddField(Field{FID: f.FID, Value: v, Checksum: f.Checksum})
	}
	return out
}

func canonicalizeValue(v Value) Value {
	switch val := v.(type) {
	case NestedRecord:
		return NestedRecord{Record: canonicalize(val.Record)}
	case RecordArray:
		out := make(RecordArray, len(val))
		for i, rec := range val {
			out[i] = canonicalize(rec)
		}
		return out
	default:
		return v
	}
}

func isEmptyValue(v Value) bool {
	switch val := v.(type) {
	case String:
		return val == ""
	case StringArray:
		return len(val) == 0
	case NestedRecord:
		return len(val.Record.Fields()) == 0
	case RecordArray:
		return len(val) == 0
	}
	return false
}
