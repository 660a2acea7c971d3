package lnmp

import (
	"context"
	"fmt"

	"github.com/lnmp-format/conformance/internal/harness"
)

// Codec adapts the reference parser and encoder to the harness
// implementation contract.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

func (*Codec) Name() string { return "lnmp-go" }

func (*Codec) Parse(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := ModeLoose
	if opts.Strict {
		mode = ModeStrict
	}
	p, err := NewParserWithConfig(input, ParserConfig{
		Mode:              mode,
		ValidateChecksums: opts.ValidateChecksums,
		NormalizeValues:   opts.NormalizeValues,
		MaxNestingDepth:   opts.MaxNestingDepth,
	})
	if err != nil {
		return nil, err
	}
	rec, err := p.ParseRecord()
	if err != nil {
		return nil, err
	}
	return codecRecord{rec: rec}, nil
}

func (*Codec) Encode(ctx context.Context, rec harness.Record, opts harness.EncodeOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	native, err := recordFromHarness(rec)
	if err != nil {
		return "", err
	}
	enc := NewEncoderWithConfig(EncoderConfig{
		Canonical:        opts.Canonical,
		IncludeTypeHints: opts.IncludeTypeHints,
		EnableChecksums:  opts.IncludeChecksums,
	})
	return enc.Encode(native), nil
}

type codecRecord struct {
	rec *Record
}

func (r codecRecord) Fields() []harness.Field {
	return harnessFields(r.rec)
}

func harnessFields(rec *Record) []harness.Field {
	out := make([]harness.Field, 0, len(rec.Fields()))
	for _, f := range rec.Fields() {
		out = append(out, harness.Field{
			FID:      f.FID,
			TypeTag:  TypeTag(f.Value),
			Value:    harnessValue(f.Value),
			Checksum: f.Checksum,
		})
	}
	return out
}

func harnessValue(v Value) any {
	switch val := v.(type) {
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case String:
		return string(val)
	case StringArray:
		return []string(val)
	case NestedRecord:
		return harnessFields(val.Record)
	case RecordArray:
		out := make([][]harness.Field, len(val))
		for i, rec := range val {
			out[i] = harnessFields(rec)
		}
		return out
	default:
		return nil
	}
}

// recordFromHarness rebuilds a native record from harness fields. The
// common case is the codec's own parse output, which keeps the native
// record intact.
func recordFromHarness(rec harness.Record) (*Record, error) {
	if cr, ok := rec.(codecRecord); ok {
		return cr.rec, nil
	}

	out := NewRecord()
	for _, f := range rec.Fields() {
		v, err := nativeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", f.FID, err)
		}
		out.AddField(Field{FID: f.FID, Value: v, Checksum: f.Checksum})
	}
	return out, nil
}

func nativeValue(v any) (Value, error) {
	switch val := v.(type) {
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []string:
		return StringArray(val), nil
	case []harness.Field:
		rec := NewRecord()
		for _, f := range val {
			nested, err := nativeValue(f.Value)
			if err != nil {
				return nil, err
			}
			rec.AddField(Field{FID: f.FID, Value: nested})
		}
		return NestedRecord{Record: rec}, nil
	case [][]harness.Field:
		out := make(RecordArray, len(val))
		for i, fields := range val {
			rec := NewRecord()
			for _, f := range fields {
				nested, err := nativeValue(f.Value)
				if err != nil {
					return nil, err
				}
				rec.AddField(Field{FID: f.FID, Value: nested})
			}
			out[i] = rec
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
