package ml_parser_test

import (
	"fmt"
	"testing"

	"tplc-go/packages/compiler/ml_parser"
	"tplc-go/packages/compiler/util"

	"github.com/google/go-cmp/cmp"
)

func TestLexer_TextAndInterpolation(t *testing.T) {
	t.Run("should tokenize plain text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "hello"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("hello", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should tokenize interpolation between text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "hello "},
			[]interface{}{ml_parser.TokenTypeINTERPOLATION, " name "},
			[]interface{}{ml_parser.TokenTypeTEXT, "!"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("hello {{ name }}!", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report an unterminated interpolation", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Unterminated interpolation", "0:0"},
		}
		result := tokenizeAndHumanizeErrors("{{a", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeErrors() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should emit an unterminated interpolation as text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "{{a"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{{a", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_Tags(t *testing.T) {
	t.Run("should tokenize a simple element", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "div"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "t"},
			[]interface{}{ml_parser.TokenTypeTAG_CLOSE, "div"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<div>t</div>", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should tokenize attributes", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "div"},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "class"},
			[]interface{}{ml_parser.TokenTypeATTR_QUOTE, `"`},
			[]interface{}{ml_parser.TokenTypeATTR_VALUE_TEXT, "a"},
			[]interface{}{ml_parser.TokenTypeATTR_QUOTE, `"`},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "[title]"},
			[]interface{}{ml_parser.TokenTypeATTR_QUOTE, `"`},
			[]interface{}{ml_parser.TokenTypeATTR_VALUE_TEXT, "b"},
			[]interface{}{ml_parser.TokenTypeATTR_QUOTE, `"`},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTAG_CLOSE, "div"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(`<div class="a" [title]="b"></div>`, nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should tokenize an attribute without a value", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "input"},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "disabled"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<input disabled>", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should tokenize an unquoted attribute value", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "input"},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "type"},
			[]interface{}{ml_parser.TokenTypeATTR_VALUE_TEXT, "text"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<input type=text>", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should tokenize a self-closing tag", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "input"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END_VOID},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<input/>", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should treat a stray < as text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "a "},
			[]interface{}{ml_parser.TokenTypeTEXT, "<"},
			[]interface{}{ml_parser.TokenTypeTEXT, " b"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("a < b", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report an unterminated opening tag", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{`Unterminated opening tag "div"`, "0:0"},
		}
		result := tokenizeAndHumanizeErrors("<div class", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeErrors() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_Comments(t *testing.T) {
	t.Run("should tokenize comments", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeCOMMENT_START},
			[]interface{}{ml_parser.TokenTypeRAW_TEXT, "note"},
			[]interface{}{ml_parser.TokenTypeCOMMENT_END},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<!--note-->", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report an unterminated comment", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Unterminated comment", "0:0"},
		}
		result := tokenizeAndHumanizeErrors("<!--note", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeErrors() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_Blocks(t *testing.T) {
	t.Run("should tokenize a block with a single parameter", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_START, "if"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "cond"},
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "a"},
			[]interface{}{ml_parser.TokenTypeBLOCK_CLOSE, "if"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#if cond}a{/if}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should split parameters on semicolons", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_START, "for"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "item of items"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "track item.id"},
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "x"},
			[]interface{}{ml_parser.TokenTypeBLOCK_CLOSE, "for"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#for item of items; track item.id}x{/for}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not split on semicolons inside parentheses", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_START, "if"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "fn(a; b)"},
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "x"},
			[]interface{}{ml_parser.TokenTypeBLOCK_CLOSE, "if"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#if fn(a; b)}x{/if}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should allow braces inside a parameter", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_START, "if"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "{a: 1}.a"},
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "x"},
			[]interface{}{ml_parser.TokenTypeBLOCK_CLOSE, "if"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#if {a: 1}.a}x{/if}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should allow semicolons and braces inside quotes", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_START, "if"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, `title === "a;}b"`},
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "x"},
			[]interface{}{ml_parser.TokenTypeBLOCK_CLOSE, "if"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts(`{#if title === "a;}b"}x{/if}`, nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should tokenize sections including the two-word else if", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_START, "if"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "a"},
			[]interface{}{ml_parser.TokenTypeBLOCK_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "1"},
			[]interface{}{ml_parser.TokenTypeBLOCK_SECTION_START, "else if"},
			[]interface{}{ml_parser.TokenTypeBLOCK_PARAMETER, "b"},
			[]interface{}{ml_parser.TokenTypeBLOCK_SECTION_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "2"},
			[]interface{}{ml_parser.TokenTypeBLOCK_SECTION_START, "else"},
			[]interface{}{ml_parser.TokenTypeBLOCK_SECTION_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "3"},
			[]interface{}{ml_parser.TokenTypeBLOCK_CLOSE, "if"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#if a}1{:else if b}2{:else}3{/if}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not treat a section outside a block as a section", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "{:else}"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{:else}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should treat an unknown block name as text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "{#frob a}x{/frob}"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#frob a}x{/frob}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should treat a block outside EnabledBlocks as text", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "{#for a of b}x{/for}"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		options := &ml_parser.TokenizeOptions{EnabledBlocks: []string{"if"}}
		result := tokenizeAndHumanizeParts("{#for a of b}x{/for}", options)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not tokenize blocks when TokenizeBlocks is false", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTEXT, "{#if a}x{/if}"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		disabled := false
		options := &ml_parser.TokenizeOptions{TokenizeBlocks: &disabled}
		result := tokenizeAndHumanizeParts("{#if a}x{/if}", options)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report an incomplete block open", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{`Incomplete block "if". The block delimiter is missing its closing brace`, "0:0"},
		}
		result := tokenizeAndHumanizeErrors("{#if a", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeErrors() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should retype an incomplete block open token", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeINCOMPLETE_BLOCK_OPEN, "if"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("{#if a", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should report an incomplete closing block", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{`Incomplete closing block "if". The delimiter is missing its closing brace`, "0:8"},
		}
		result := tokenizeAndHumanizeErrors("{#if a}x{/if", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeErrors() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLexer_NonBindable(t *testing.T) {
	t.Run("should pass delimiters through inside a nonbindable element", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "div"},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "nonbindable"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "{{x}} {#if a}b{/if}"},
			[]interface{}{ml_parser.TokenTypeTAG_CLOSE, "div"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<div nonbindable>{{x}} {#if a}b{/if}</div>", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should cover nested elements under a nonbindable ancestor", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "div"},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "nonbindable"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "span"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "{{x}}"},
			[]interface{}{ml_parser.TokenTypeTAG_CLOSE, "span"},
			[]interface{}{ml_parser.TokenTypeTAG_CLOSE, "div"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<div nonbindable><span>{{x}}</span></div>", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should restore tokenization after the nonbindable element closes", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_START, "div"},
			[]interface{}{ml_parser.TokenTypeATTR_NAME, "nonbindable"},
			[]interface{}{ml_parser.TokenTypeTAG_OPEN_END},
			[]interface{}{ml_parser.TokenTypeTEXT, "{{x}}"},
			[]interface{}{ml_parser.TokenTypeTAG_CLOSE, "div"},
			[]interface{}{ml_parser.TokenTypeINTERPOLATION, "y"},
			[]interface{}{ml_parser.TokenTypeEOF},
		}
		result := tokenizeAndHumanizeParts("<div nonbindable>{{x}}</div>{{y}}", nil)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("tokenizeAndHumanizeParts() mismatch (-want +got):\n%s", diff)
		}
	})
}

func tokenizeAndHumanizeParts(input string, options *ml_parser.TokenizeOptions) []interface{} {
	result := ml_parser.Tokenize(input, "someUrl", options)
	humanized := []interface{}{}
	for _, token := range result.Tokens {
		parts := []interface{}{token.Type}
		for _, part := range token.Parts {
			parts = append(parts, part)
		}
		humanized = append(humanized, parts)
	}
	return humanized
}

func tokenizeAndHumanizeErrors(input string, options *ml_parser.TokenizeOptions) []interface{} {
	result := ml_parser.Tokenize(input, "someUrl", options)
	humanized := []interface{}{}
	for _, err := range result.Errors {
		humanized = append(humanized, []interface{}{err.Msg, humanizeLineColumn(err.Span.Start)})
	}
	return humanized
}

func humanizeLineColumn(location *util.ParseLocation) string {
	return fmt.Sprintf("%d:%d", location.Line, location.Col)
}
