package lnmp

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokFieldPrefix
	tokNumber
	tokEquals
	tokSemicolon
	tokTypeHint
	tokLeftBracket
	tokRightBracket
	tokLeftBrace
	tokRightBrace
	tokComma
	tokQuoted
	tokUnquoted
	tokHash
	tokNewline
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// describe renders a token for error messages.
func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokFieldPrefix:
		return "'F'"
	case tokNumber:
		return fmt.Sprintf("number %q", t.text)
	case tokEquals:
		return "'='"
	case tokSemicolon:
		return "';'"
	case tokTypeHint:
		return fmt.Sprintf("type hint %q", t.text)
	case tokLeftBracket:
		return "'['"
	case tokRightBracket:
		return "']'"
	case tokLeftBrace:
		return "'{'"
	case tokRightBrace:
		return "'}'"
	case tokComma:
		return "','"
	case tokQuoted, tokUnquoted:
		return fmt.Sprintf("string %q", t.text)
	case tokHash:
		return "'#'"
	case tokNewline:
		return "newline"
	default:
		return "unknown token"
	}
}

// lexer tokenizes LNMP text. Whitespace (spaces, tabs) separates tokens;
// newlines are significant and tokenized.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1, col: 1}
}

func (lx *lexer) peek() (rune, bool) {
	if lx.pos >= len(lx.input) {
		return 0, false
	}
	for _, r := range lx.input[lx.pos:] {
		return r, true
	}
	return 0, false
}

func (lx *lexer) peekAt(offset int) (rune, bool) {
	i := 0
	for _, r := range lx.input[lx.pos:] {
		if i == offset {
			return r, true
		}
		i++
	}
	return 0, false
}

func (lx *lexer) advance() (rune, bool) {
	r, ok := lx.peek()
	if !ok {
		return 0, false
	}
	lx.pos += len(string(r))
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r, true
}

func (lx *lexer) skipWhitespace() {
	for {
		r, ok := lx.peek()
		if !ok || (r != ' ' && r != '\t' && r != '\r') {
			return
		}
		lx.advance()
	}
}

// next returns the next token. The token carries the line/column where it
// started.
func (lx *lexer) next() (token, error) {
	lx.skipWhitespace()

	line, col := lx.line, lx.col
	r, ok := lx.peek()
	if !ok {
		return token{kind: tokEOF, line: line, col: col}, nil
	}

	switch r {
	case '\n':
		lx.advance()
		return token{kind: tokNewline, line: line, col: col}, nil
	case '#':
		lx.advance()
		return token{kind: tokHash, line: line, col: col}, nil
	case '=':
		lx.advance()
		return token{kind: tokEquals, line: line, col: col}, nil
	case ';':
		lx.advance()
		return token{kind: tokSemicolon, line: line, col: col}, nil
	case '[':
		lx.advance()
		return token{kind: tokLeftBracket, line: line, col: col}, nil
	case ']':
		lx.advance()
		return token{kind: tokRightBracket, line: line, col: col}, nil
	case '{':
		lx.advance()
		return token{kind: tokLeftBrace, line: line, col: col}, nil
	case '}':
		lx.advance()
		return token{kind: tokRightBrace, line: line, col: col}, nil
	case ',':
		lx.advance()
		return token{kind: tokComma, line: line, col: col}, nil
	case ':':
		lx.advance()
		return lx.lexTypeHint(line, col)
	case '"':
		return lx.lexQuotedString(line, col)
	}

	// 'F' immediately followed by a digit opens a field id.
	if r == 'F' {
		if d, ok := lx.peekAt(1); ok && unicode.IsDigit(d) {
			lx.advance()
			return token{kind: tokFieldPrefix, line: line, col: col}, nil
		}
	}

	if unicode.IsDigit(r) || r == '-' {
		return lx.lexNumber(line, col)
	}

	if isUnquotedStart(r) {
		return lx.lexUnquoted(line, col)
	}

	return token{}, errInvalidCharacter(r, line, col)
}

// lexTypeHint reads the hint letters after a ':'.
func (lx *lexer) lexTypeHint(line, col int) (token, error) {
	var sb strings.Builder
	for {
		r, ok := lx.peek()
		if !ok || !unicode.IsLetter(r) {
			break
		}
		sb.WriteRune(r)
		lx.advance()
	}
	return token{kind: tokTypeHint, text: sb.String(), line: line, col: col}, nil
}

func (lx *lexer) lexNumber(line, col int) (token, error) {
	var sb strings.Builder
	if r, ok := lx.peek(); ok && r == '-' {
		sb.WriteRune(r)
		lx.advance()
	}
	for {
		r, ok := lx.peek()
		if !ok || (!unicode.IsDigit(r) && r != '.') {
			break
		}
		sb.WriteRune(r)
		lx.advance()
	}
	return token{kind: tokNumber, text: sb.String(), line: line, col: col}, nil
}

func (lx *lexer) lexQuotedString(line, col int) (token, error) {
	lx.advance() // opening quote
	var sb strings.Builder
	for {
		r, ok := lx.advance()
		if !ok {
			return token{}, errUnterminatedString(line, col)
		}
		switch r {
		case '"':
			return token{kind: tokQuoted, text: sb.String(), line: line, col: col}, nil
		case '\\':
			esc, ok := lx.advance()
			if !ok {
				return token{}, errUnterminatedString(line, col)
			}
			switch esc {
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case 'n':
				sb.WriteRune('\n')
			case 'r':
				sb.WriteRune('\r')
			case 't':
				sb.WriteRune('\t')
			default:
				return token{}, errInvalidEscape("\\"+string(esc), lx.line, lx.col)
			}
		case '\n':
			return token{}, errUnterminatedString(line, col)
		default:
			sb.WriteRune(r)
		}
	}
}

func (lx *lexer) lexUnquoted(line, col int) (token, error) {
	var sb strings.Builder
	for {
		r, ok := lx.peek()
		if !ok || !isUnquotedChar(r) {
			break
		}
		sb.WriteRune(r)
		lx.advance()
	}
	return token{kind: tokUnquoted, text: sb.String(), line: line, col: col}, nil
}

func isUnquotedStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isUnquotedChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '_' || r == '-' || r == '.' || r == '@' || r == '+' || r == '/'
}
