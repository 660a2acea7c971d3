package lnmp

import "fmt"

// ErrorKind categorizes parse and encode failures. The kinds mirror the
// format's error taxonomy; suites match on the text produced by Error().
type ErrorKind string

const (
	KindInvalidCharacter   ErrorKind = "InvalidCharacter"
	KindUnterminatedString ErrorKind = "UnterminatedString"
	KindUnexpectedToken    ErrorKind = "UnexpectedToken"
	KindInvalidFieldID     ErrorKind = "InvalidFieldId"
	KindInvalidValue       ErrorKind = "InvalidValue"
	KindUnexpectedEOF      ErrorKind = "UnexpectedEof"
	KindInvalidEscape      ErrorKind = "InvalidEscapeSequence"
	KindStrictViolation    ErrorKind = "StrictModeViolation"
	KindTypeHintMismatch   ErrorKind = "TypeHintMismatch"
	KindInvalidTypeHint    ErrorKind = "InvalidTypeHint"
	KindChecksumMismatch   ErrorKind = "ChecksumMismatch"
	KindNestingTooDeep     ErrorKind = "NestingTooDeep"
	KindDuplicateFieldID   ErrorKind = "DuplicateFieldId"
)

// ParseError is a structured parse failure with source coordinates.
type ParseError struct {
	Kind   ErrorKind
	Line   int
	Column int
	msg    string
}

func (e *ParseError) Error() string { return e.msg }

func errInvalidCharacter(ch rune, line, col int) *ParseError {
	return &ParseError{
		Kind: KindInvalidCharacter, Line: line, Column: col,
		msg: fmt.Sprintf("invalid character %q at line %d, column %d", ch, line, col),
	}
}

func errUnterminatedString(line, col int) *ParseError {
	return &ParseError{
		Kind: KindUnterminatedString, Line: line, Column: col,
		msg: fmt.Sprintf("unterminated string at line %d, column %d", line, col),
	}
}

func errUnexpectedToken(expected, found string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindUnexpectedToken, Line: line, Column: col,
		msg: fmt.Sprintf("unexpected token at line %d, column %d: expected %s, found %s",
			line, col, expected, found),
	}
}

func errInvalidFieldID(value, reason string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindInvalidFieldID, Line: line, Column: col,
		msg: fmt.Sprintf("invalid field ID at line %d, column %d: '%s' %s",
			line, col, value, reason),
	}
}

func errInvalidValue(fid uint16, reason string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindInvalidValue, Line: line, Column: col,
		msg: fmt.Sprintf("invalid value for field %d at line %d, column %d: %s",
			fid, line, col, reason),
	}
}

func errUnexpectedEOF(line, col int) *ParseError {
	return &ParseError{
		Kind: KindUnexpectedEOF, Line: line, Column: col,
		msg: fmt.Sprintf("unexpected end of file at line %d, column %d", line, col),
	}
}

func errInvalidEscape(seq string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindInvalidEscape, Line: line, Column: col,
		msg: fmt.Sprintf("invalid escape sequence %q at line %d, column %d", seq, line, col),
	}
}

func errStrictViolation(reason string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindStrictViolation, Line: line, Column: col,
		msg: fmt.Sprintf("strict mode violation at line %d, column %d: %s", line, col, reason),
	}
}

func errTypeHintMismatch(fid uint16, expected, actual string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindTypeHintMismatch, Line: line, Column: col,
		msg: fmt.Sprintf("type hint mismatch for field %d at line %d, column %d: expected type %q, got %s",
			fid, line, col, expected, actual),
	}
}

func errInvalidTypeHint(hint string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindInvalidTypeHint, Line: line, Column: col,
		msg: fmt.Sprintf("invalid type hint %q at line %d, column %d", hint, line, col),
	}
}

func errChecksumMismatch(fid uint16, expected, found string, line, col int) *ParseError {
	return &ParseError{
		Kind: KindChecksumMismatch, Line: line, Column: col,
		msg: fmt.Sprintf("checksum mismatch for field %d at line %d, column %d: expected %s, found %s",
			fid, line, col, expected, found),
	}
}

func errNestingTooDeep(maxDepth, actualDepth, line, col int) *ParseError {
	return &ParseError{
		Kind: KindNestingTooDeep, Line: line, Column: col,
		msg: fmt.Sprintf("nesting too deep at line %d, column %d: maximum depth is %d, but reached %d",
			line, col, maxDepth, actualDepth),
	}
}

func errDuplicateFieldID(fid uint16, line, col int) *ParseError {
	return &ParseError{
		Kind: KindDuplicateFieldID, Line: line, Column: col,
		msg: fmt.Sprintf("duplicate field ID %d at line %d, column %d", fid, line, col),
	}
}
