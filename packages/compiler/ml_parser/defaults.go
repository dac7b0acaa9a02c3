package ml_parser

// SupportedBlocks lists the block names the tokenizer recognizes by default.
// A `{#name ...}` delimiter whose name is not enabled is treated as text.
var SupportedBlocks = []string{"if", "for", "switch", "defer"}

// VoidElements are elements that never have children or a closing tag.
var VoidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}
