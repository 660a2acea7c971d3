package lnmp

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects parsing strictness. Strict mode rejects comment lines,
// semicolon separators at top level, and duplicate field ids; loose mode
// accepts them.
type Mode int

const (
	ModeLoose Mode = iota
	ModeStrict
)

// ParserConfig controls parsing behavior.
type ParserConfig struct {
	Mode Mode

	// ValidateChecksums verifies every checksum found in the input
	// against the computed SC32 value.
	ValidateChecksums bool

	// RequireChecksums rejects fields without a checksum.
	RequireChecksums bool

	// NormalizeValues interprets 0/1 and true/yes/false/no as booleans
	// even without a bool hint.
	NormalizeValues bool

	// MaxNestingDepth limits nested record/array depth when set.
	MaxNestingDepth *int
}

// Parser parses LNMP text into records.
type Parser struct {
	lx    *lexer
	cur   token
	cfg   ParserConfig
	depth int
}

// NewParser creates a loose-mode parser.
func NewParser(input string) (*Parser, error) {
	return NewParserWithConfig(input, ParserConfig{})
}

// NewParserWithConfig creates a parser with explicit configuration.
// Strict mode rejects comment lines up front, before any field parses.
func NewParserWithConfig(input string, cfg ParserConfig) (*Parser, error) {
	if cfg.Mode == ModeStrict {
		if line, ok := findCommentLine(input); ok {
			return nil, errStrictViolation("comments are not allowed in strict mode", line, 1)
		}
	}
	p := &Parser{lx: newLexer(input), cfg: cfg}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse is a convenience wrapper: parse one record in loose mode.
func Parse(input string) (*Record, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}
	return p.ParseRecord()
}

// findCommentLine reports the first line whose first non-blank character
// is '#'. A '#' after a value is a checksum, not a comment.
func findCommentLine(input string) (int, bool) {
	for i, line := range strings.Split(input, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			return i + 1, true
		}
	}
	return 0, false
}

func (p *Parser) advance() error {
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) expect(kind tokenKind, what string) error {
	if p.cur.kind != kind {
		return errUnexpectedToken(what, p.cur.describe(), p.cur.line, p.cur.col)
	}
	return p.advance()
}

// ParseRecord parses one top-level record: field assignments separated by
// newlines (canonical) or semicolons (loose only). Comment lines are
// skipped in loose mode. Empty input yields an empty record.
func (p *Parser) ParseRecord() (*Record, error) {
	rec := NewRecord()

	if err := p.skipBlankLines(); err != nil {
		return nil, err
	}

	for p.cur.kind != tokEOF {
		field, err := p.parseFieldAssignment()
		if err != nil {
			return nil, err
		}
		if p.cfg.Mode == ModeStrict {
			if _, dup := rec.GetField(field.FID); dup {
				return nil, errDuplicateFieldID(field.FID, p.cur.line, p.cur.col)
			}
		}
		rec.AddField(field)

		switch p.cur.kind {
		case tokSemicolon:
			if p.cfg.Mode == ModeStrict {
				return nil, errStrictViolation(
					"semicolons are not allowed in strict mode (use newlines)",
					p.cur.line, p.cur.col)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokNewline:
			if err := p.skipBlankLines(); err != nil {
				return nil, err
			}
		case tokEOF:
			// Done.
		default:
			return nil, errUnexpectedToken("newline or semicolon",
				p.cur.describe(), p.cur.line, p.cur.col)
		}
	}

	return rec, nil
}

// skipBlankLines consumes newlines and, in loose mode, comment lines.
func (p *Parser) skipBlankLines() error {
	for {
		switch p.cur.kind {
		case tokNewline:
			if err := p.advance(); err != nil {
				return err
			}
		case tokHash:
			// A hash at statement position opens a comment; checksum
			// hashes are consumed during field parsing.
			if err := p.skipComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *Parser) skipComment() error {
	for p.cur.kind != tokNewline && p.cur.kind != tokEOF {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseFieldAssignment parses F<fid>[:hint]=<value>[#CHECKSUM].
func (p *Parser) parseFieldAssignment() (Field, error) {
	if p.cur.kind != tokFieldPrefix {
		return Field{}, errUnexpectedToken("field", p.cur.describe(), p.cur.line, p.cur.col)
	}
	if err := p.advance(); err != nil {
		return Field{}, err
	}

	fid, err := p.parseFieldID()
	if err != nil {
		return Field{}, err
	}

	hint, err := p.parseTypeHint()
	if err != nil {
		return Field{}, err
	}

	if err := p.expect(tokEquals, "'='"); err != nil {
		return Field{}, err
	}

	valueLine, valueCol := p.cur.line, p.cur.col
	value, err := p.parseValue(hint, fid)
	if err != nil {
		return Field{}, err
	}

	if !hint.Validates(value) {
		return Field{}, errTypeHintMismatch(fid, hint.String(), describeValue(value), valueLine, valueCol)
	}

	field := Field{FID: fid, Value: value}

	if p.cur.kind == tokHash {
		checksum, err := p.parseChecksum(fid, value)
		if err != nil {
			return Field{}, err
		}
		field.Checksum = checksum
	} else if p.cfg.RequireChecksums {
		return Field{}, errChecksumMismatch(fid, "checksum required", "no checksum",
			p.cur.line, p.cur.col)
	}

	return field, nil
}

func (p *Parser) parseFieldID() (uint16, error) {
	if p.cur.kind != tokNumber {
		return 0, errUnexpectedToken("field ID", p.cur.describe(), p.cur.line, p.cur.col)
	}
	text, line, col := p.cur.text, p.cur.line, p.cur.col
	if err := p.advance(); err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, errInvalidFieldID(text, "is not a valid field ID", line, col)
	}
	if n > 65535 {
		return 0, errInvalidFieldID(text, "exceeds 16-bit range", line, col)
	}
	return uint16(n), nil
}

func (p *Parser) parseTypeHint() (TypeHint, error) {
	if p.cur.kind != tokTypeHint {
		return HintNone, nil
	}
	text, line, col := p.cur.text, p.cur.line, p.cur.col
	if err := p.advance(); err != nil {
		return HintNone, err
	}
	hint, ok := ParseTypeHint(text)
	if !ok {
		return HintNone, errInvalidTypeHint(text, line, col)
	}
	return hint, nil
}

func (p *Parser) parseValue(hint TypeHint, fid uint16) (Value, error) {
	line, col := p.cur.line, p.cur.col

	switch p.cur.kind {
	case tokNumber:
		text := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseNumber(text, hint, fid, line, col)

	case tokQuoted:
		s := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return String(s), nil

	case tokUnquoted:
		s := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Bool hints and value normalization accept the textual boolean
		// literal forms.
		if hint == HintBool || p.cfg.NormalizeValues {
			switch strings.ToLower(s) {
			case "true", "yes":
				return Bool(true), nil
			case "false", "no":
				return Bool(false), nil
			}
		}
		return String(s), nil

	case tokLeftBracket:
		return p.parseArray(hint, fid)

	case tokLeftBrace:
		return p.parseNestedRecord()

	default:
		return nil, errUnexpectedToken("value", p.cur.describe(), line, col)
	}
}

func (p *Parser) parseNumber(text string, hint TypeHint, fid uint16, line, col int) (Value, error) {
	if hint == HintBool {
		switch text {
		case "0":
			return Bool(false), nil
		case "1":
			return Bool(true), nil
		default:
			return nil, errInvalidValue(fid, fmt.Sprintf("invalid boolean value: %s", text), line, col)
		}
	}
	// Under value normalization 0/1 read as booleans; other numbers are
	// left alone.
	if p.cfg.NormalizeValues && hint == HintNone {
		switch text {
		case "0":
			return Bool(false), nil
		case "1":
			return Bool(true), nil
		}
	}

	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errInvalidValue(fid, fmt.Sprintf("invalid float: %s", text), line, col)
		}
		return Float(f), nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, errInvalidValue(fid, fmt.Sprintf("invalid integer: %s", text), line, col)
	}
	return Int(i), nil
}

// parseArray parses either a string array [a,b] or a record array
// [{...},{...}], disambiguated by the first element unless a hint forces
// the record-array form.
func (p *Parser) parseArray(hint TypeHint, fid uint16) (Value, error) {
	if err := p.expect(tokLeftBracket, "'['"); err != nil {
		return nil, err
	}

	if p.cur.kind == tokRightBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if hint == HintRecordArray {
			return RecordArray{}, nil
		}
		return StringArray{}, nil
	}

	if hint == HintRecordArray && p.cur.kind != tokLeftBrace {
		return nil, errUnexpectedToken("nested record ({...}) inside record array",
			p.cur.describe(), p.cur.line, p.cur.col)
	}
	if p.cur.kind == tokLeftBrace {
		return p.parseNestedArray()
	}
	return p.parseStringArray()
}

func (p *Parser) parseStringArray() (Value, error) {
	var items StringArray
	for {
		switch p.cur.kind {
		case tokQuoted, tokUnquoted:
			items = append(items, p.cur.text)
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, errUnexpectedToken("string", p.cur.describe(), p.cur.line, p.cur.col)
		}

		switch p.cur.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRightBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			return items, nil
		default:
			return nil, errUnexpectedToken("comma or closing bracket",
				p.cur.describe(), p.cur.line, p.cur.col)
		}
	}
}

func (p *Parser) parseNestedArray() (Value, error) {
	line, col := p.cur.line, p.cur.col
	if err := p.enterNesting(line, col); err != nil {
		return nil, err
	}
	defer p.leaveNesting()

	var records RecordArray
	for {
		if p.cur.kind != tokLeftBrace {
			return nil, errUnexpectedToken("left brace for nested record",
				p.cur.describe(), p.cur.line, p.cur.col)
		}
		nested, err := p.parseNestedRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, nested.(NestedRecord).Record)

		switch p.cur.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRightBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			return records, nil
		default:
			return nil, errUnexpectedToken("comma or closing bracket",
				p.cur.describe(), p.cur.line, p.cur.col)
		}
	}
}

// parseNestedRecord parses {F<fid>=<value>;...}. Nested fields are
// semicolon-separated and sorted by fid for the canonical representation.
func (p *Parser) parseNestedRecord() (Value, error) {
	line, col := p.cur.line, p.cur.col
	if err := p.enterNesting(line, col); err != nil {
		return nil, err
	}
	defer p.leaveNesting()

	if err := p.expect(tokLeftBrace, "'{'"); err != nil {
		return nil, err
	}

	rec := NewRecord()
	if p.cur.kind == tokRightBrace {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return NestedRecord{Record: rec}, nil
	}

	for {
		field, err := p.parseFieldAssignment()
		if err != nil {
			return nil, err
		}
		if p.cfg.Mode == ModeStrict {
			if _, dup := rec.GetField(field.FID); dup {
				return nil, errDuplicateFieldID(field.FID, p.cur.line, p.cur.col)
			}
		}
		rec.AddField(field)

		switch p.cur.kind {
		case tokSemicolon:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind == tokRightBrace {
				if err := p.advance(); err != nil {
					return nil, err
				}
				return NestedRecord{Record: FromFields(rec.SortedFields())}, nil
			}
		case tokRightBrace:
			if err := p.advance(); err != nil {
				return nil, err
			}
			return NestedRecord{Record: FromFields(rec.SortedFields())}, nil
		case tokEOF:
			return nil, errUnexpectedEOF(p.cur.line, p.cur.col)
		default:
			return nil, errUnexpectedToken("semicolon or closing brace",
				p.cur.describe(), p.cur.line, p.cur.col)
		}
	}
}

func (p *Parser) enterNesting(line, col int) error {
	p.depth++
	if p.cfg.MaxNestingDepth != nil && p.depth > *p.cfg.MaxNestingDepth {
		depth := p.depth
		p.depth--
		return errNestingTooDeep(*p.cfg.MaxNestingDepth, depth, line, col)
	}
	return nil
}

func (p *Parser) leaveNesting() {
	if p.depth > 0 {
		p.depth--
	}
}

// parseChecksum reads the hex digits after a '#'. The lexer may split a
// hex string into number and identifier tokens, so fragments concatenate.
func (p *Parser) parseChecksum(fid uint16, value Value) (string, error) {
	line, col := p.cur.line, p.cur.col
	if err := p.advance(); err != nil { // consume '#'
		return "", err
	}

	var sb strings.Builder
	for p.cur.kind == tokNumber || p.cur.kind == tokUnquoted {
		sb.WriteString(p.cur.text)
		if err := p.advance(); err != nil {
			return "", err
		}
	}
	if sb.Len() == 0 {
		return "", errUnexpectedToken("checksum", p.cur.describe(), p.cur.line, p.cur.col)
	}

	found := strings.ToUpper(sb.String())
	if p.cfg.ValidateChecksums {
		want := FormatChecksum(ComputeChecksum(fid, value))
		if found != want {
			return "", errChecksumMismatch(fid, want, found, line, col)
		}
	}
	return found, nil
}

func describeValue(v Value) string {
	switch val := v.(type) {
	case Int:
		return fmt.Sprintf("integer %d", int64(val))
	case Float:
		return fmt.Sprintf("float %v", float64(val))
	case Bool:
		return fmt.Sprintf("boolean %t", bool(val))
	case String:
		return fmt.Sprintf("string %q", string(val))
	case StringArray:
		return fmt.Sprintf("string array of %d items", len(val))
	case NestedRecord:
		return "nested record"
	case RecordArray:
		return fmt.Sprintf("record array of %d records", len(val))
	default:
		return "unknown value"
	}
}
