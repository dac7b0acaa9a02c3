package ml_parser

import (
	"strings"

	"tplc-go/packages/compiler/core"
	"tplc-go/packages/compiler/util"
)

// NonBindableAttr marks an element whose subtree is excluded from block and
// interpolation tokenization; delimiters inside it pass through as text.
const NonBindableAttr = "nonbindable"

// TokenizeOptions configures the tokenizer
type TokenizeOptions struct {
	// TokenizeBlocks enables `{#...}` block tokenization. Defaults to true.
	TokenizeBlocks *bool
	// EnabledBlocks lists the block kinds the tokenizer recognizes. Block
	// names outside this list fall back to literal text. Defaults to
	// SupportedBlocks.
	EnabledBlocks []string
}

// TokenizeResult is the result of tokenizing a template
type TokenizeResult struct {
	Tokens []*Token
	Errors []*util.ParseError
}

// Tokenize scans template source text into tokens
func Tokenize(source, url string, options *TokenizeOptions) *TokenizeResult {
	tokenizer := newTokenizer(util.NewParseSourceFile(source, url), options)
	tokenizer.tokenize()
	return &TokenizeResult{Tokens: tokenizer.tokens, Errors: tokenizer.errors}
}

// characterCursor walks the source text tracking offset, line and column
type characterCursor struct {
	file   *util.ParseSourceFile
	input  string
	length int
	offset int
	line   int
	col    int
	peek   int
}

func newCharacterCursor(file *util.ParseSourceFile) *characterCursor {
	cursor := &characterCursor{
		file:   file,
		input:  file.Content,
		length: len(file.Content),
	}
	cursor.updatePeek()
	return cursor
}

func (c *characterCursor) updatePeek() {
	if c.offset >= c.length {
		c.peek = core.CharEOF
	} else {
		c.peek = int(c.input[c.offset])
	}
}

// peekAt looks ahead without moving the cursor
func (c *characterCursor) peekAt(delta int) int {
	if c.offset+delta >= c.length {
		return core.CharEOF
	}
	return int(c.input[c.offset+delta])
}

func (c *characterCursor) advance() {
	if c.offset >= c.length {
		return
	}
	if c.peek == core.CharLF {
		c.line++
		c.col = 0
	} else {
		c.col++
	}
	c.offset++
	c.updatePeek()
}

func (c *characterCursor) clone() *characterCursor {
	copied := *c
	return &copied
}

func (c *characterCursor) location() *util.ParseLocation {
	return util.NewParseLocation(c.file, c.offset, c.line, c.col)
}

// spanFrom creates a span from the given start cursor to this cursor
func (c *characterCursor) spanFrom(start *characterCursor) *util.ParseSourceSpan {
	return util.NewParseSourceSpan(start.location(), c.location(), nil, nil)
}

type tokenizer struct {
	cursor         *characterCursor
	tokens         []*Token
	errors         []*util.ParseError
	tokenizeBlocks bool
	enabledBlocks  map[string]bool
	blockDepth     int
	// Stack of open element names inside a non-bindable region. While it is
	// non-empty, block and interpolation delimiters pass through as text.
	nonBindableStack []string
}

func newTokenizer(file *util.ParseSourceFile, options *TokenizeOptions) *tokenizer {
	tokenizeBlocks := true
	enabled := SupportedBlocks
	if options != nil {
		if options.TokenizeBlocks != nil {
			tokenizeBlocks = *options.TokenizeBlocks
		}
		if options.EnabledBlocks != nil {
			enabled = options.EnabledBlocks
		}
	}
	enabledBlocks := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		enabledBlocks[name] = true
	}
	return &tokenizer{
		cursor:         newCharacterCursor(file),
		tokenizeBlocks: tokenizeBlocks,
		enabledBlocks:  enabledBlocks,
	}
}

func (t *tokenizer) emit(tokenType TokenType, parts []string, span *util.ParseSourceSpan) *Token {
	token := NewToken(tokenType, parts, span)
	t.tokens = append(t.tokens, token)
	return token
}

func (t *tokenizer) error(span *util.ParseSourceSpan, msg string) {
	t.errors = append(t.errors, util.NewParseError(span, msg))
}

func (t *tokenizer) tokenize() {
	for t.cursor.peek != core.CharEOF {
		start := t.cursor.clone()
		switch {
		case t.cursor.peek == core.CharLT:
			t.consumeTagRelated(start)
		case t.isInterpolationStart():
			t.consumeInterpolation(start)
		case t.isBlockStart():
			t.consumeBlockOpen(start)
		case t.isBlockSectionStart():
			t.consumeBlockSection(start)
		case t.isBlockCloseStart():
			t.consumeBlockClose(start)
		default:
			t.consumeText(start)
		}
	}
	t.emit(TokenTypeEOF, []string{}, t.cursor.spanFrom(t.cursor.clone()))
}

func (t *tokenizer) blocksActive() bool {
	return t.tokenizeBlocks && len(t.nonBindableStack) == 0
}

func (t *tokenizer) isInterpolationStart() bool {
	return len(t.nonBindableStack) == 0 &&
		t.cursor.peek == core.CharLBRACE && t.cursor.peekAt(1) == core.CharLBRACE
}

func (t *tokenizer) isBlockStart() bool {
	if !t.blocksActive() || t.cursor.peek != core.CharLBRACE || t.cursor.peekAt(1) != core.CharHASH {
		return false
	}
	// Only names from the enabled set open a block; anything else is text.
	probe := t.cursor.clone()
	probe.advance()
	probe.advance()
	name := readBlockName(probe)
	return t.enabledBlocks[name]
}

func (t *tokenizer) isBlockSectionStart() bool {
	return t.blocksActive() && t.blockDepth > 0 &&
		t.cursor.peek == core.CharLBRACE && t.cursor.peekAt(1) == core.CharCOLON
}

func (t *tokenizer) isBlockCloseStart() bool {
	return t.blocksActive() && t.blockDepth > 0 &&
		t.cursor.peek == core.CharLBRACE && t.cursor.peekAt(1) == core.CharSLASH
}

// readBlockName consumes a run of block-name characters from the cursor
func readBlockName(cursor *characterCursor) string {
	var name strings.Builder
	for core.IsAsciiLetter(cursor.peek) || core.IsDigit(cursor.peek) {
		name.WriteByte(byte(cursor.peek))
		cursor.advance()
	}
	return name.String()
}

// readSectionName reads a section name, recognizing the two-word `else if`
func readSectionName(cursor *characterCursor) string {
	name := readBlockName(cursor)
	if name != "else" {
		return name
	}
	probe := cursor.clone()
	hadSpace := false
	for util.IsWhitespace(probe.peek) {
		hadSpace = true
		probe.advance()
	}
	if !hadSpace {
		return name
	}
	if second := readBlockName(probe); second == "if" {
		*cursor = *probe
		return "else if"
	}
	return name
}

func (t *tokenizer) consumeText(start *characterCursor) {
	var text strings.Builder
	for {
		if t.cursor.peek == core.CharEOF || t.cursor.peek == core.CharLT {
			break
		}
		if t.cursor.peek == core.CharLBRACE &&
			(t.isInterpolationStart() || t.isBlockStart() || t.isBlockSectionStart() || t.isBlockCloseStart()) {
			break
		}
		text.WriteByte(byte(t.cursor.peek))
		t.cursor.advance()
	}
	t.emit(TokenTypeTEXT, []string{text.String()}, t.cursor.spanFrom(start))
}

func (t *tokenizer) consumeInterpolation(start *characterCursor) {
	t.cursor.advance() // {
	t.cursor.advance() // {
	exprStart := t.cursor.clone()
	for {
		if t.cursor.peek == core.CharEOF {
			t.error(t.cursor.spanFrom(start), "Unterminated interpolation")
			t.emit(TokenTypeTEXT, []string{t.cursor.input[start.offset:t.cursor.offset]}, t.cursor.spanFrom(start))
			return
		}
		if t.cursor.peek == core.CharRBRACE && t.cursor.peekAt(1) == core.CharRBRACE {
			break
		}
		t.cursor.advance()
	}
	expression := t.cursor.input[exprStart.offset:t.cursor.offset]
	t.cursor.advance() // }
	t.cursor.advance() // }
	t.emit(TokenTypeINTERPOLATION, []string{expression}, t.cursor.spanFrom(start))
}

func (t *tokenizer) consumeBlockOpen(start *characterCursor) {
	t.cursor.advance() // {
	t.cursor.advance() // #
	name := readBlockName(t.cursor)
	startToken := t.emit(TokenTypeBLOCK_OPEN_START, []string{name}, t.cursor.spanFrom(start))

	closed := t.consumeBlockParameters()
	if !closed {
		startToken.Type = TokenTypeINCOMPLETE_BLOCK_OPEN
		startToken.SourceSpan = t.cursor.spanFrom(start)
		t.error(startToken.SourceSpan, `Incomplete block "`+name+`". The block delimiter is missing its closing brace`)
		return
	}

	endStart := t.cursor.clone()
	t.cursor.advance() // }
	t.emit(TokenTypeBLOCK_OPEN_END, []string{}, t.cursor.spanFrom(endStart))
	t.blockDepth++
}

func (t *tokenizer) consumeBlockSection(start *characterCursor) {
	t.cursor.advance() // {
	t.cursor.advance() // :
	name := readSectionName(t.cursor)
	startToken := t.emit(TokenTypeBLOCK_SECTION_START, []string{name}, t.cursor.spanFrom(start))

	closed := t.consumeBlockParameters()
	if !closed {
		startToken.Type = TokenTypeINCOMPLETE_BLOCK_OPEN
		startToken.SourceSpan = t.cursor.spanFrom(start)
		t.error(startToken.SourceSpan, `Incomplete block "`+name+`". The block delimiter is missing its closing brace`)
		return
	}

	endStart := t.cursor.clone()
	t.cursor.advance() // }
	t.emit(TokenTypeBLOCK_SECTION_END, []string{}, t.cursor.spanFrom(endStart))
}

func (t *tokenizer) consumeBlockClose(start *characterCursor) {
	t.cursor.advance() // {
	t.cursor.advance() // /
	name := readBlockName(t.cursor)
	for util.IsWhitespace(t.cursor.peek) {
		t.cursor.advance()
	}
	if t.cursor.peek == core.CharRBRACE {
		t.cursor.advance()
		t.emit(TokenTypeBLOCK_CLOSE, []string{name}, t.cursor.spanFrom(start))
		t.blockDepth--
	} else {
		span := t.cursor.spanFrom(start)
		t.error(span, `Incomplete closing block "`+name+`". The delimiter is missing its closing brace`)
		t.emit(TokenTypeBLOCK_CLOSE, []string{name}, span)
		t.blockDepth--
	}
}

// consumeBlockParameters consumes `;`-separated parameters up to, but not
// including, the closing brace of the delimiter. It is nesting- and
// quote-aware so that object literals and call arguments may contain `;`,
// `}` and newlines. Returns false if the input ended before the brace.
func (t *tokenizer) consumeBlockParameters() bool {
	for util.IsWhitespace(t.cursor.peek) {
		t.cursor.advance()
	}

	for t.cursor.peek != core.CharRBRACE {
		if t.cursor.peek == core.CharEOF {
			return false
		}

		paramStart := t.cursor.clone()
		paramEnd := t.cursor.clone()
		var nesting []int
		inQuote := 0

		for {
			ch := t.cursor.peek
			if ch == core.CharEOF {
				return false
			}
			if inQuote != 0 {
				if ch == core.CharBACKSLASH {
					t.cursor.advance()
				} else if ch == inQuote {
					inQuote = 0
				}
			} else if util.IsQuote(ch) {
				inQuote = ch
			} else if ch == core.CharLPAREN || ch == core.CharLBRACKET {
				nesting = append(nesting, ch)
			} else if ch == core.CharLBRACE {
				nesting = append(nesting, ch)
			} else if ch == core.CharRPAREN || ch == core.CharRBRACKET {
				if len(nesting) > 0 {
					nesting = nesting[:len(nesting)-1]
				}
			} else if ch == core.CharRBRACE {
				if len(nesting) == 0 {
					break
				}
				nesting = nesting[:len(nesting)-1]
			} else if ch == core.CharSEMICOLON && len(nesting) == 0 {
				break
			}
			t.cursor.advance()
			if !util.IsWhitespace(ch) {
				paramEnd = t.cursor.clone()
			}
		}

		expression := t.cursor.input[paramStart.offset:paramEnd.offset]
		if len(expression) > 0 {
			t.emit(TokenTypeBLOCK_PARAMETER, []string{expression}, paramEnd.spanFrom(paramStart))
		}

		if t.cursor.peek == core.CharSEMICOLON {
			t.cursor.advance()
			for util.IsWhitespace(t.cursor.peek) {
				t.cursor.advance()
			}
		}
	}
	return true
}

func (t *tokenizer) consumeTagRelated(start *characterCursor) {
	if t.cursor.peekAt(1) == core.CharBANG &&
		t.cursor.peekAt(2) == core.CharMINUS && t.cursor.peekAt(3) == core.CharMINUS {
		t.consumeComment(start)
	} else if t.cursor.peekAt(1) == core.CharSLASH {
		t.consumeTagClose(start)
	} else if util.IsAsciiLetter(t.cursor.peekAt(1)) {
		t.consumeTagOpen(start)
	} else {
		// A stray `<` is ordinary text.
		t.cursor.advance()
		t.emit(TokenTypeTEXT, []string{"<"}, t.cursor.spanFrom(start))
	}
}

func (t *tokenizer) consumeComment(start *characterCursor) {
	for i := 0; i < 4; i++ { // <!--
		t.cursor.advance()
	}
	t.emit(TokenTypeCOMMENT_START, []string{}, t.cursor.spanFrom(start))
	textStart := t.cursor.clone()
	for {
		if t.cursor.peek == core.CharEOF {
			t.error(t.cursor.spanFrom(start), "Unterminated comment")
			t.emit(TokenTypeRAW_TEXT, []string{t.cursor.input[textStart.offset:t.cursor.offset]}, t.cursor.spanFrom(textStart))
			return
		}
		if t.cursor.peek == core.CharMINUS && t.cursor.peekAt(1) == core.CharMINUS && t.cursor.peekAt(2) == core.CharGT {
			break
		}
		t.cursor.advance()
	}
	t.emit(TokenTypeRAW_TEXT, []string{t.cursor.input[textStart.offset:t.cursor.offset]}, t.cursor.spanFrom(textStart))
	endStart := t.cursor.clone()
	for i := 0; i < 3; i++ { // -->
		t.cursor.advance()
	}
	t.emit(TokenTypeCOMMENT_END, []string{}, t.cursor.spanFrom(endStart))
}

func (t *tokenizer) consumeTagOpen(start *characterCursor) {
	t.cursor.advance() // <
	name := t.readTagName()
	startToken := t.emit(TokenTypeTAG_OPEN_START, []string{name}, t.cursor.spanFrom(start))

	nonBindable := false
	for {
		t.skipWhitespace()
		ch := t.cursor.peek
		if ch == core.CharEOF {
			startToken.Type = TokenTypeINCOMPLETE_TAG_OPEN
			t.error(t.cursor.spanFrom(start), `Unterminated opening tag "`+name+`"`)
			return
		}
		if ch == core.CharGT {
			endStart := t.cursor.clone()
			t.cursor.advance()
			t.emit(TokenTypeTAG_OPEN_END, []string{}, t.cursor.spanFrom(endStart))
			if nonBindable || len(t.nonBindableStack) > 0 {
				t.nonBindableStack = append(t.nonBindableStack, name)
			}
			return
		}
		if ch == core.CharSLASH && t.cursor.peekAt(1) == core.CharGT {
			endStart := t.cursor.clone()
			t.cursor.advance()
			t.cursor.advance()
			t.emit(TokenTypeTAG_OPEN_END_VOID, []string{}, t.cursor.spanFrom(endStart))
			return
		}
		if t.consumeAttribute() == NonBindableAttr {
			nonBindable = true
		}
	}
}

// consumeAttribute consumes one attribute and returns its name
func (t *tokenizer) consumeAttribute() string {
	nameStart := t.cursor.clone()
	var name strings.Builder
	for {
		ch := t.cursor.peek
		if ch == core.CharEOF || util.IsWhitespace(ch) || ch == core.CharEQ || ch == core.CharGT ||
			(ch == core.CharSLASH && t.cursor.peekAt(1) == core.CharGT) {
			break
		}
		name.WriteByte(byte(ch))
		t.cursor.advance()
	}
	if name.Len() == 0 {
		// Avoid an infinite loop on malformed input.
		t.cursor.advance()
		return ""
	}
	t.emit(TokenTypeATTR_NAME, []string{name.String()}, t.cursor.spanFrom(nameStart))

	t.skipWhitespace()
	if t.cursor.peek != core.CharEQ {
		return name.String()
	}
	t.cursor.advance() // =
	t.skipWhitespace()

	if util.IsQuote(t.cursor.peek) {
		quote := t.cursor.peek
		quoteStart := t.cursor.clone()
		t.cursor.advance()
		t.emit(TokenTypeATTR_QUOTE, []string{string(rune(quote))}, t.cursor.spanFrom(quoteStart))
		valueStart := t.cursor.clone()
		for t.cursor.peek != quote && t.cursor.peek != core.CharEOF {
			t.cursor.advance()
		}
		t.emit(TokenTypeATTR_VALUE_TEXT, []string{t.cursor.input[valueStart.offset:t.cursor.offset]}, t.cursor.spanFrom(valueStart))
		if t.cursor.peek == quote {
			closeStart := t.cursor.clone()
			t.cursor.advance()
			t.emit(TokenTypeATTR_QUOTE, []string{string(rune(quote))}, t.cursor.spanFrom(closeStart))
		}
	} else {
		valueStart := t.cursor.clone()
		for {
			ch := t.cursor.peek
			if ch == core.CharEOF || util.IsWhitespace(ch) || ch == core.CharGT {
				break
			}
			t.cursor.advance()
		}
		t.emit(TokenTypeATTR_VALUE_TEXT, []string{t.cursor.input[valueStart.offset:t.cursor.offset]}, t.cursor.spanFrom(valueStart))
	}
	return name.String()
}

func (t *tokenizer) consumeTagClose(start *characterCursor) {
	t.cursor.advance() // <
	t.cursor.advance() // /
	name := t.readTagName()
	t.skipWhitespace()
	if t.cursor.peek == core.CharGT {
		t.cursor.advance()
	} else {
		t.error(t.cursor.spanFrom(start), `Unterminated closing tag "`+name+`"`)
	}
	t.emit(TokenTypeTAG_CLOSE, []string{name}, t.cursor.spanFrom(start))

	if n := len(t.nonBindableStack); n > 0 && t.nonBindableStack[n-1] == name {
		t.nonBindableStack = t.nonBindableStack[:n-1]
	}
}

func (t *tokenizer) readTagName() string {
	var name strings.Builder
	for {
		ch := t.cursor.peek
		if !util.IsAsciiLetter(ch) && !util.IsDigit(ch) && ch != core.CharMINUS && ch != core.CharUnderscore && ch != core.CharCOLON {
			break
		}
		name.WriteByte(byte(ch))
		t.cursor.advance()
	}
	return name.String()
}

func (t *tokenizer) skipWhitespace() {
	for util.IsWhitespace(t.cursor.peek) {
		t.cursor.advance()
	}
}
