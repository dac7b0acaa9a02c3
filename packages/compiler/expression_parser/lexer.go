package expression_parser

import (
	"strconv"
	"strings"

	"tplc-go/packages/compiler/core"
)

// TokenType represents the type of an expression token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
	TokenTypeError
)

var keywords = []string{
	"null",
	"undefined",
	"true",
	"false",
	"this",
	"typeof",
	"in",
}

// Token represents a token in an expression
type Token struct {
	Index    int
	End      int
	Type     TokenType
	NumValue float64
	StrValue string
}

// NewToken creates a new Token
func NewToken(index, end int, typ TokenType, numValue float64, strValue string) *Token {
	return &Token{
		Index:    index,
		End:      end,
		Type:     typ,
		NumValue: numValue,
		StrValue: strValue,
	}
}

// IsCharacter checks if the token is a character with the given code
func (t *Token) IsCharacter(code int) bool {
	return t.Type == TokenTypeCharacter && int(t.NumValue) == code
}

// IsNumber checks if the token is a number
func (t *Token) IsNumber() bool {
	return t.Type == TokenTypeNumber
}

// IsString checks if the token is a string
func (t *Token) IsString() bool {
	return t.Type == TokenTypeString
}

// IsOperator checks if the token is an operator with the given value
func (t *Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

// IsIdentifier checks if the token is an identifier
func (t *Token) IsIdentifier() bool {
	return t.Type == TokenTypeIdentifier
}

// IsKeyword checks if the token is a keyword
func (t *Token) IsKeyword() bool {
	return t.Type == TokenTypeKeyword
}

// IsError checks if the token is an error token
func (t *Token) IsError() bool {
	return t.Type == TokenTypeError
}

// String returns a printable representation of the token
func (t *Token) String() string {
	switch t.Type {
	case TokenTypeCharacter, TokenTypeIdentifier, TokenTypeKeyword, TokenTypeOperator, TokenTypeString, TokenTypeError:
		return t.StrValue
	case TokenTypeNumber:
		return strconv.FormatFloat(t.NumValue, 'f', -1, 64)
	}
	return ""
}

// EOFToken is the token returned past the end of input
var EOFToken = NewToken(-1, -1, TokenTypeCharacter, 0, "")

// Lexer tokenizes expression strings
type Lexer struct{}

// NewLexer creates a new Lexer
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokenize scans the given text into a list of tokens
func (l *Lexer) Tokenize(text string) []*Token {
	scanner := newScanner(text)
	tokens := []*Token{}
	for token := scanner.scanToken(); token != nil; token = scanner.scanToken() {
		tokens = append(tokens, token)
	}
	return tokens
}

type scanner struct {
	input  string
	length int
	peek   int
	index  int
}

func newScanner(input string) *scanner {
	s := &scanner{
		input:  input,
		length: len(input),
		index:  -1,
	}
	s.advance()
	return s
}

func (s *scanner) advance() {
	s.index++
	if s.index >= s.length {
		s.peek = core.CharEOF
	} else {
		s.peek = int(s.input[s.index])
	}
}

func (s *scanner) scanToken() *Token {
	input, length := s.input, s.length
	peek, index := s.peek, s.index

	// Skip whitespace
	for peek <= core.CharSPACE {
		index++
		if index >= length {
			peek = core.CharEOF
			break
		}
		peek = int(input[index])
	}

	s.peek = peek
	s.index = index

	if index >= length {
		return nil
	}

	if isIdentifierStart(peek) {
		return s.scanIdentifier()
	}
	if core.IsDigit(peek) {
		return s.scanNumber(index)
	}

	start := index
	switch peek {
	case core.CharPERIOD:
		s.advance()
		if core.IsDigit(s.peek) {
			return s.scanNumber(start)
		}
		return newCharacterToken(start, s.index, core.CharPERIOD)
	case core.CharLPAREN, core.CharRPAREN, core.CharLBRACE, core.CharRBRACE,
		core.CharLBRACKET, core.CharRBRACKET, core.CharCOMMA, core.CharCOLON, core.CharSEMICOLON:
		s.advance()
		return newCharacterToken(start, s.index, peek)
	case core.CharSQ, core.CharDQ:
		return s.scanString()
	case core.CharHASH:
		return s.scanOperator(start, string(rune(peek)))
	case core.CharPLUS, core.CharMINUS, core.CharSTAR, core.CharSLASH, core.CharPERCENT, core.CharCARET:
		return s.scanOperator(start, string(rune(peek)))
	case core.CharQUESTION:
		return s.scanQuestion(start)
	case core.CharLT, core.CharGT:
		return s.scanComplexOperator(start, string(rune(peek)), core.CharEQ, "=")
	case core.CharBANG, core.CharEQ:
		return s.scanComplexOperatorTwo(start, string(rune(peek)), core.CharEQ, "=", core.CharEQ, "=")
	case core.CharAMPERSAND:
		return s.scanComplexOperator(start, "&", core.CharAMPERSAND, "&")
	case core.CharBAR:
		return s.scanComplexOperator(start, "|", core.CharBAR, "|")
	case core.CharNBSP:
		for core.IsWhitespace(s.peek) {
			s.advance()
		}
		return s.scanToken()
	}

	s.advance()
	return s.error("Unexpected character ["+string(rune(peek))+"]", 0)
}

func newCharacterToken(index, end, code int) *Token {
	return NewToken(index, end, TokenTypeCharacter, float64(code), string(rune(code)))
}

func (s *scanner) scanOperator(start int, str string) *Token {
	s.advance()
	return NewToken(start, s.index, TokenTypeOperator, 0, str)
}

// scanComplexOperator scans an operator that may be followed by a single
// optional character (e.g. `<` and `<=`).
func (s *scanner) scanComplexOperator(start int, one string, twoCode int, two string) *Token {
	s.advance()
	str := one
	if s.peek == twoCode {
		s.advance()
		str += two
	}
	return NewToken(start, s.index, TokenTypeOperator, 0, str)
}

// scanComplexOperatorTwo handles up to two optional trailing characters
// (e.g. `=`, `==` and `===`).
func (s *scanner) scanComplexOperatorTwo(start int, one string, twoCode int, two string, threeCode int, three string) *Token {
	s.advance()
	str := one
	if s.peek == twoCode {
		s.advance()
		str += two
		if s.peek == threeCode {
			s.advance()
			str += three
		}
	}
	return NewToken(start, s.index, TokenTypeOperator, 0, str)
}

func (s *scanner) scanQuestion(start int) *Token {
	s.advance()
	str := "?"
	// Either `??` or `?.`
	if s.peek == core.CharQUESTION || s.peek == core.CharPERIOD {
		if s.peek == core.CharPERIOD {
			str += "."
		} else {
			str += "?"
		}
		s.advance()
	}
	return NewToken(start, s.index, TokenTypeOperator, 0, str)
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.advance()
	for isIdentifierPart(s.peek) {
		s.advance()
	}
	str := s.input[start:s.index]
	for _, keyword := range keywords {
		if str == keyword {
			return NewToken(start, s.index, TokenTypeKeyword, 0, str)
		}
	}
	return NewToken(start, s.index, TokenTypeIdentifier, 0, str)
}

func (s *scanner) scanNumber(start int) *Token {
	simple := s.index == start
	s.advance() // consume the first digit
	for {
		if core.IsDigit(s.peek) {
			// ok
		} else if s.peek == core.CharPERIOD {
			simple = false
		} else if isExponentStart(s.peek) {
			s.advance()
			if isExponentSign(s.peek) {
				s.advance()
			}
			if !core.IsDigit(s.peek) {
				return s.error("Invalid exponent", -1)
			}
			simple = false
		} else if s.peek == core.CharUnderscore {
			// Separators are only valid between two digits
			if s.index == start || s.index >= s.length-1 ||
				!core.IsDigit(int(s.input[s.index-1])) || !core.IsDigit(int(s.input[s.index+1])) {
				return s.error("Invalid numeric separator", 0)
			}
		} else {
			break
		}
		s.advance()
	}
	str := strings.ReplaceAll(s.input[start:s.index], "_", "")
	var value float64
	if simple {
		intVal, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return s.error("Invalid integer literal when parsing "+str, 0)
		}
		value = float64(intVal)
	} else {
		floatVal, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return s.error("Invalid float literal when parsing "+str, 0)
		}
		value = floatVal
	}
	return NewToken(start, s.index, TokenTypeNumber, value, str)
}

func (s *scanner) scanString() *Token {
	start := s.index
	quote := s.peek
	s.advance() // consume the opening quote

	var buffer strings.Builder
	marker := s.index

	for s.peek != quote {
		if s.peek == core.CharBACKSLASH {
			buffer.WriteString(s.input[marker:s.index])
			s.advance()
			var unescaped rune
			switch s.peek {
			case core.CharLowerU:
				// 4 character hex code for unicode character
				if s.index+5 > s.length {
					return s.error("Unterminated escape sequence", 0)
				}
				hex := s.input[s.index+1 : s.index+5]
				code, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return s.error("Invalid unicode escape [\\u"+hex+"]", 0)
				}
				unescaped = rune(code)
				for i := 0; i < 5; i++ {
					s.advance()
				}
			default:
				unescaped = unescape(s.peek)
				s.advance()
			}
			buffer.WriteRune(unescaped)
			marker = s.index
		} else if s.peek == core.CharEOF {
			return s.error("Unterminated quote", 0)
		} else {
			s.advance()
		}
	}

	last := s.input[marker:s.index]
	s.advance() // consume the closing quote

	buffer.WriteString(last)
	return NewToken(start, s.index, TokenTypeString, 0, buffer.String())
}

func (s *scanner) error(message string, offset int) *Token {
	position := s.index + offset
	return NewToken(position, s.index, TokenTypeError, 0,
		"Lexer Error: "+message+" at column "+strconv.Itoa(position)+" in expression ["+s.input+"]")
}

func isIdentifierStart(code int) bool {
	return (core.CharLowerA <= code && code <= core.CharLowerZ) ||
		(core.CharA <= code && code <= core.CharZ) ||
		code == core.CharUnderscore || code == core.CharDollar
}

func isIdentifierPart(code int) bool {
	return core.IsAsciiLetter(code) || core.IsDigit(code) ||
		code == core.CharUnderscore || code == core.CharDollar
}

// IsIdentifier reports whether the entire input is a single valid identifier.
func IsIdentifier(input string) bool {
	if len(input) == 0 {
		return false
	}
	if !isIdentifierStart(int(input[0])) {
		return false
	}
	for i := 1; i < len(input); i++ {
		if !isIdentifierPart(int(input[i])) {
			return false
		}
	}
	return true
}

func isExponentStart(code int) bool {
	return code == 'e' || code == 'E'
}

func isExponentSign(code int) bool {
	return code == core.CharMINUS || code == core.CharPLUS
}

func unescape(code int) rune {
	switch code {
	case core.CharLowerN:
		return '\n'
	case core.CharLowerF:
		return '\f'
	case core.CharLowerR:
		return '\r'
	case core.CharLowerT:
		return '\t'
	case core.CharLowerV:
		return '\v'
	default:
		return rune(code)
	}
}
