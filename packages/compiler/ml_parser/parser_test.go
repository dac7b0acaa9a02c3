package ml_parser_test

import (
	"testing"

	"tplc-go/packages/compiler/ml_parser"
	"tplc-go/packages/compiler/util"

	"github.com/google/go-cmp/cmp"
)

func TestTreeBuilder_Elements(t *testing.T) {
	t.Run("should build nested elements", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Element", "div", 0},
			[]interface{}{"Element", "span", 1},
			[]interface{}{"Text", "a", 2},
		}
		result := parseAndHumanize(t, "<div><span>a</span></div>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should attach attributes to their element", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Element", "input", 0},
			[]interface{}{"Attribute", "id", "x"},
			[]interface{}{"Attribute", "hidden", ""},
		}
		result := parseAndHumanize(t, `<input id="x" hidden>`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not push void elements onto the stack", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Element", "br", 0},
			[]interface{}{"Text", "a", 0},
		}
		result := parseAndHumanize(t, "<br>a")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should mark self-closing elements", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Element", "my-cmp", 0, "#selfClosing"},
			[]interface{}{"Text", "a", 0},
		}
		result := parseAndHumanize(t, "<my-cmp/>a")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should build comments", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Comment", "note", 0},
		}
		result := parseAndHumanize(t, "<!--note-->")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should build interpolations as separate nodes", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Element", "div", 0},
			[]interface{}{"Text", "a ", 1},
			[]interface{}{"Interpolation", "b", 1},
			[]interface{}{"Text", " c", 1},
		}
		result := parseAndHumanize(t, "<div>a {{b}} c</div>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestTreeBuilder_Blocks(t *testing.T) {
	t.Run("should build a block with parameters", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Block", "for", 0},
			[]interface{}{"BlockParameter", "item of items"},
			[]interface{}{"BlockParameter", "track item.id"},
			[]interface{}{"Text", "x", 1},
		}
		result := parseAndHumanize(t, "{#for item of items; track item.id}x{/for}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should attach sections to their primary block", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Block", "if", 0},
			[]interface{}{"BlockParameter", "a"},
			[]interface{}{"Text", "1", 1},
			[]interface{}{"BlockSection", "else if", 0},
			[]interface{}{"BlockParameter", "b"},
			[]interface{}{"Text", "2", 1},
			[]interface{}{"BlockSection", "else", 0},
			[]interface{}{"Text", "3", 1},
		}
		result := parseAndHumanize(t, "{#if a}1{:else if b}2{:else}3{/if}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should nest blocks", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Block", "if", 0},
			[]interface{}{"BlockParameter", "a"},
			[]interface{}{"Block", "for", 1},
			[]interface{}{"BlockParameter", "i of x"},
			[]interface{}{"Text", "t", 2},
		}
		result := parseAndHumanize(t, "{#if a}{#for i of x}t{/for}{/if}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should nest elements and blocks in either order", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Element", "div", 0},
			[]interface{}{"Block", "if", 1},
			[]interface{}{"BlockParameter", "a"},
			[]interface{}{"Element", "span", 2},
			[]interface{}{"Text", "x", 3},
		}
		result := parseAndHumanize(t, "<div>{#if a}<span>x</span>{/if}</div>")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should route section children to the current section", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"Block", "switch", 0},
			[]interface{}{"BlockParameter", "kind"},
			[]interface{}{"BlockSection", "case", 0},
			[]interface{}{"BlockParameter", "1"},
			[]interface{}{"Element", "b", 1},
			[]interface{}{"Text", "one", 2},
			[]interface{}{"BlockSection", "default", 0},
			[]interface{}{"Text", "other", 1},
		}
		result := parseAndHumanize(t, "{#switch kind}{:case 1}<b>one</b>{:default}other{/switch}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("parseAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should keep an incomplete block open as a leaf", func(t *testing.T) {
		result := ml_parser.Parse("{#if a", "someUrl", nil)
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error, got %v", result.Errors)
		}
		expected := []interface{}{
			[]interface{}{"Block", "if", 0},
		}
		humanized := humanizeNodes(result.RootNodes)
		if diff := cmp.Diff(expected, humanized); diff != "" {
			t.Errorf("humanizeNodes() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestTreeBuilder_Errors(t *testing.T) {
	t.Run("should report an unexpected closing tag", func(t *testing.T) {
		expectErrors(t, "</div>", []string{
			`Unexpected closing tag "div". It may happen when the tag has already been closed by another tag.`,
		})
	})

	t.Run("should report unclosed tags at the end of input", func(t *testing.T) {
		expectErrors(t, "<div><span>", []string{
			`Unclosed tag "span"`,
			`Unclosed tag "div"`,
		})
	})

	t.Run("should report a tag left open when its ancestor closes", func(t *testing.T) {
		expectErrors(t, "<div><span></div>", []string{
			`Unclosed tag "span"`,
		})
	})

	t.Run("should report an unclosed block at the end of input", func(t *testing.T) {
		expectErrors(t, "{#if a}x", []string{
			`Unclosed block "if"`,
		})
	})

	t.Run("should report a mismatched closing block", func(t *testing.T) {
		expectErrors(t, "{#if a}{#for i of x}{/if}{/for}", []string{
			`Unexpected closing block "if". The block may have been closed earlier.`,
			`Unclosed block "if"`,
		})
	})

	t.Run("should report tags left open when a block closes over them", func(t *testing.T) {
		expectErrors(t, "{#if a}<div>{/if}</div>", []string{
			`Unclosed tag "div"`,
			`Unexpected closing tag "div". It may happen when the tag has already been closed by another tag.`,
		})
	})

	t.Run("should not close an element across a block boundary", func(t *testing.T) {
		expectErrors(t, "<div>{#if a}</div>", []string{
			`Unexpected closing tag "div". It may happen when the tag has already been closed by another tag.`,
			`Unclosed block "if"`,
			`Unclosed tag "div"`,
		})
	})

	t.Run("should report a section whose parent is an element", func(t *testing.T) {
		expectErrors(t, "{#if a}<div>{:else}</div>{/if}", []string{
			`Block section "else" must be placed directly inside its parent block`,
		})
	})
}

func parseAndHumanize(t *testing.T, input string) []interface{} {
	t.Helper()
	result := ml_parser.Parse(input, "someUrl", nil)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", humanizeParseErrors(result.Errors))
	}
	return humanizeNodes(result.RootNodes)
}

func expectErrors(t *testing.T, input string, expected []string) {
	t.Helper()
	result := ml_parser.Parse(input, "someUrl", nil)
	messages := []string{}
	for _, err := range result.Errors {
		messages = append(messages, err.Msg)
	}
	if diff := cmp.Diff(expected, messages); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func humanizeParseErrors(errors []*util.ParseError) []string {
	messages := make([]string, len(errors))
	for i, err := range errors {
		messages[i] = err.Msg
	}
	return messages
}

func humanizeNodes(nodes []ml_parser.Node) []interface{} {
	humanizer := &treeHumanizer{result: []interface{}{}}
	ml_parser.VisitAll(humanizer, nodes, nil)
	return humanizer.result
}

// treeHumanizer flattens a markup tree into rows of node kind, name and depth
// for comparison in tests.
type treeHumanizer struct {
	result []interface{}
	depth  int
}

func (h *treeHumanizer) VisitElement(element *ml_parser.Element, context interface{}) interface{} {
	row := []interface{}{"Element", element.Name, h.depth}
	if element.IsSelfClosing {
		row = append(row, "#selfClosing")
	}
	h.result = append(h.result, row)
	for _, attr := range element.Attrs {
		attr.Visit(h, context)
	}
	h.depth++
	ml_parser.VisitAll(h, element.Children, context)
	h.depth--
	return nil
}

func (h *treeHumanizer) VisitAttribute(attribute *ml_parser.Attribute, context interface{}) interface{} {
	h.result = append(h.result, []interface{}{"Attribute", attribute.Name, attribute.Value})
	return nil
}

func (h *treeHumanizer) VisitText(text *ml_parser.Text, context interface{}) interface{} {
	h.result = append(h.result, []interface{}{"Text", text.Value, h.depth})
	return nil
}

func (h *treeHumanizer) VisitInterpolation(interpolation *ml_parser.Interpolation, context interface{}) interface{} {
	h.result = append(h.result, []interface{}{"Interpolation", interpolation.Expression, h.depth})
	return nil
}

func (h *treeHumanizer) VisitComment(comment *ml_parser.Comment, context interface{}) interface{} {
	h.result = append(h.result, []interface{}{"Comment", comment.Value, h.depth})
	return nil
}

func (h *treeHumanizer) VisitBlock(block *ml_parser.Block, context interface{}) interface{} {
	h.result = append(h.result, []interface{}{"Block", block.Name, h.depth})
	for _, parameter := range block.Parameters {
		parameter.Visit(h, context)
	}
	h.depth++
	ml_parser.VisitAll(h, block.Children, context)
	h.depth--
	for _, section := range block.Sections {
		h.result = append(h.result, []interface{}{"BlockSection", section.Name, h.depth})
		for _, parameter := range section.Parameters {
			parameter.Visit(h, context)
		}
		h.depth++
		ml_parser.VisitAll(h, section.Children, context)
		h.depth--
	}
	return nil
}

func (h *treeHumanizer) VisitBlockParameter(parameter *ml_parser.BlockParameter, context interface{}) interface{} {
	h.result = append(h.result, []interface{}{"BlockParameter", parameter.Expression})
	return nil
}
