package lnmp

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SC32 semantic checksums are computed over the string
// "{fid}:{hint}:{normalized_value}" using CRC-32/ISO-HDLC, which is the
// polynomial crc32.IEEE implements.

// ComputeChecksum returns the SC32 checksum for a field. The type hint
// is inferred from the value.
func ComputeChecksum(fid uint16, v Value) uint32 {
	return crc32.ChecksumIEEE([]byte(serializeForChecksum(fid, v)))
}

// ValidateChecksum reports whether checksum matches the field.
func ValidateChecksum(fid uint16, v Value, checksum uint32) bool {
	return ComputeChecksum(fid, v) == checksum
}

// FormatChecksum renders a checksum as eight uppercase hex digits.
func FormatChecksum(checksum uint32) string {
	return fmt.Sprintf("%08X", checksum)
}

// ParseChecksum parses an eight-digit hex checksum, with or without a
// leading 0x.
func ParseChecksum(s string) (uint32, bool) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 8 {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func serializeForChecksum(fid uint16, v Value) string {
	return fmt.Sprintf("%d:%s:%s", fid, HintFor(v).String(), serializeValue(v))
}

// serializeValue renders the normalized value form: booleans as 1/0,
// floats with trailing zeros trimmed and -0.0 folded to 0.0, strings in
// Unicode NFC, arrays comma-joined, nested structures recursive with
// fields in fid order.
func serializeValue(v Value) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		f := float64(val)
		if f == 0 {
			f = 0
		}
		return formatFloat(f)
	case Bool:
		if val {
			return "1"
		}
		return "0"
	case String:
		return norm.NFC.String(string(val))
	case StringArray:
		normalized := make([]string, len(val))
		for i, s := range val {
			normalized[i] = norm.NFC.String(s)
		}
		return strings.Join(normalized, ",")
	case NestedRecord:
		return serializeNested(val.Record)
	case RecordArray:
		parts := make([]string, len(val))
		for i, rec := range val {
			parts[i] = serializeNested(rec)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

func serializeNested(rec *Record) string {
	fields := rec.SortedFields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = serializeForChecksum(f.FID, f.Value)
	}
	return "{" + strings.Join(parts, ";") + "}"
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}
