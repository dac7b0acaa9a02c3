package ml_parser

import "tplc-go/packages/compiler/util"

// TokenType represents the type of a markup token
type TokenType int

const (
	TokenTypeTAG_OPEN_START TokenType = iota
	TokenTypeTAG_OPEN_END
	TokenTypeTAG_OPEN_END_VOID
	TokenTypeTAG_CLOSE
	TokenTypeINCOMPLETE_TAG_OPEN
	TokenTypeTEXT
	TokenTypeRAW_TEXT
	TokenTypeINTERPOLATION
	TokenTypeCOMMENT_START
	TokenTypeCOMMENT_END
	TokenTypeATTR_NAME
	TokenTypeATTR_QUOTE
	TokenTypeATTR_VALUE_TEXT
	TokenTypeBLOCK_OPEN_START
	TokenTypeBLOCK_OPEN_END
	TokenTypeBLOCK_SECTION_START
	TokenTypeBLOCK_SECTION_END
	TokenTypeBLOCK_CLOSE
	TokenTypeBLOCK_PARAMETER
	TokenTypeINCOMPLETE_BLOCK_OPEN
	TokenTypeEOF
)

// Token represents a token in the template source. Parts carries the
// token-type specific strings: the tag or block name for open/close tokens,
// the text for text and parameter tokens.
type Token struct {
	Type       TokenType
	Parts      []string
	SourceSpan *util.ParseSourceSpan
}

// NewToken creates a new Token
func NewToken(tokenType TokenType, parts []string, sourceSpan *util.ParseSourceSpan) *Token {
	return &Token{
		Type:       tokenType,
		Parts:      parts,
		SourceSpan: sourceSpan,
	}
}
