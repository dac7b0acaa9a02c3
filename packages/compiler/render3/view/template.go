package view

import (
	"fmt"
	"strings"

	"tplc-go/packages/compiler/expression_parser"
	"tplc-go/packages/compiler/ml_parser"
	"tplc-go/packages/compiler/render3"
	"tplc-go/packages/compiler/util"
)

const (
	// TemplateElementName is the tag that declares an embedded view
	TemplateElementName = "template"
	// ContentElementName is the tag that declares a projection slot
	ContentElementName = "content"

	selectAttrName      = "select"
	letAttrPrefix       = "let-"
	referenceAttrPrefix = "#"
	animationPrefix     = "@"
	bindingStartChar    = '['
	bindingEndChar      = ']'
	eventStartChar      = '('
	eventEndChar        = ')'

	// DefaultContentSelector matches any projected node
	DefaultContentSelector = "*"
)

// ParseTemplateOptions configures template parsing
type ParseTemplateOptions struct {
	// CollectErrors keeps parse errors alongside a partial tree instead of
	// aborting at the first diagnostic.
	CollectErrors bool
	// PreserveWhitespaces keeps whitespace-only text nodes. Defaults to false.
	PreserveWhitespaces bool
	// EnabledBlocks overrides the set of recognized block names. Defaults to
	// ml_parser.SupportedBlocks.
	EnabledBlocks []string
}

// Render3ParseResult is the result of parsing a template into a render AST
type Render3ParseResult struct {
	Nodes  []render3.Node
	Errors []*util.ParseError
}

// ParseTemplate parses template source text into a render AST
func ParseTemplate(template, templateURL string, options *ParseTemplateOptions) *Render3ParseResult {
	if options == nil {
		options = &ParseTemplateOptions{}
	}

	parseResult := ml_parser.Parse(template, templateURL, &ml_parser.TokenizeOptions{
		EnabledBlocks: options.EnabledBlocks,
	})
	if len(parseResult.Errors) > 0 && !options.CollectErrors {
		return &Render3ParseResult{Errors: parseResult.Errors}
	}

	bindingParser := NewBindingParser()
	transformer := NewHtmlAstToRenderAst(bindingParser, options)
	nodes := transformer.Transform(parseResult.RootNodes)

	errors := append([]*util.ParseError{}, parseResult.Errors...)
	errors = append(errors, transformer.Errors...)
	errors = append(errors, bindingParser.Errors...)

	if len(errors) > 0 && !options.CollectErrors {
		return &Render3ParseResult{Errors: errors}
	}
	return &Render3ParseResult{Nodes: nodes, Errors: errors}
}

// HtmlAstToRenderAst converts the markup AST produced by ml_parser into the
// typed render AST. Binding and event expressions are parsed on the way
// through, and block nodes are handed to the block grammar builders.
type HtmlAstToRenderAst struct {
	bindingParser *BindingParser
	options       *ParseTemplateOptions

	// Errors collects the diagnostics reported during the transform
	Errors []*util.ParseError
	// ContentSelectors lists the selector of every projection slot found,
	// in document order
	ContentSelectors []string
}

// NewHtmlAstToRenderAst creates a new HtmlAstToRenderAst
func NewHtmlAstToRenderAst(bindingParser *BindingParser, options *ParseTemplateOptions) *HtmlAstToRenderAst {
	return &HtmlAstToRenderAst{
		bindingParser: bindingParser,
		options:       options,
	}
}

// Transform converts a slice of markup root nodes into render AST nodes
func (t *HtmlAstToRenderAst) Transform(rootNodes []ml_parser.Node) []render3.Node {
	results := ml_parser.VisitAll(t, rootNodes, nil)
	nodes := make([]render3.Node, 0, len(results))
	for _, result := range results {
		if node, ok := result.(render3.Node); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (t *HtmlAstToRenderAst) reportError(span *util.ParseSourceSpan, msg string) {
	t.Errors = append(t.Errors, util.NewParseError(span, msg))
}

// VisitElement visits an element node
func (t *HtmlAstToRenderAst) VisitElement(element *ml_parser.Element, context interface{}) interface{} {
	children := t.Transform(element.Children)

	if element.Name == ContentElementName {
		return t.createContent(element, children)
	}

	isTemplateElement := element.Name == TemplateElementName

	attributes := []*render3.TextAttribute{}
	inputs := []*render3.BoundAttribute{}
	outputs := []*render3.BoundEvent{}
	references := []*render3.Reference{}
	variables := []*render3.Variable{}

	for _, attr := range element.Attrs {
		name := attr.Name

		switch {
		case strings.HasPrefix(name, letAttrPrefix):
			if !isTemplateElement {
				t.reportError(attr.SourceSpan(),
					fmt.Sprintf(`"let-" is only supported on <%s> elements`, TemplateElementName))
				continue
			}
			variables = append(variables, t.createVariable(attr))

		case strings.HasPrefix(name, referenceAttrPrefix):
			references = append(references, t.createReference(attr))

		case len(name) > 1 && name[0] == bindingStartChar && name[len(name)-1] == bindingEndChar:
			inputs = append(inputs, t.createBoundAttribute(attr))

		case len(name) > 1 && name[0] == eventStartChar && name[len(name)-1] == eventEndChar:
			if output := t.createBoundEvent(attr); output != nil {
				outputs = append(outputs, output)
			}

		default:
			attributes = append(attributes, t.createTextAttribute(attr))
		}
	}

	if isTemplateElement {
		tagName := element.Name
		return render3.NewTemplate(
			&tagName,
			attributes,
			inputs,
			outputs,
			children,
			references,
			variables,
			element.IsSelfClosing,
			element.SourceSpan(),
			element.StartSourceSpan,
			element.EndSourceSpan,
		)
	}

	return render3.NewElement(
		element.Name,
		attributes,
		inputs,
		outputs,
		children,
		references,
		element.IsSelfClosing,
		element.SourceSpan(),
		element.StartSourceSpan,
		element.EndSourceSpan,
	)
}

// VisitAttribute visits an attribute node
func (t *HtmlAstToRenderAst) VisitAttribute(attribute *ml_parser.Attribute, context interface{}) interface{} {
	return t.createTextAttribute(attribute)
}

// VisitText visits a text node
func (t *HtmlAstToRenderAst) VisitText(text *ml_parser.Text, context interface{}) interface{} {
	if !t.options.PreserveWhitespaces && strings.TrimSpace(text.Value) == "" {
		return nil
	}
	return render3.NewText(text.Value, text.SourceSpan())
}

// VisitInterpolation visits an interpolation node
func (t *HtmlAstToRenderAst) VisitInterpolation(interpolation *ml_parser.Interpolation, context interface{}) interface{} {
	// The expression starts two characters past the span start, after the
	// opening `{{` delimiter.
	span := interpolation.SourceSpan()
	expr := t.bindingParser.ParseBinding(interpolation.Expression, span, span.Start.Offset+2)
	return render3.NewBoundText(expr, span)
}

// VisitComment visits a comment node. Comments are not represented in the
// render AST.
func (t *HtmlAstToRenderAst) VisitComment(comment *ml_parser.Comment, context interface{}) interface{} {
	return nil
}

// VisitBlock visits a block node, dispatching to the block grammar builder
// for the block's kind
func (t *HtmlAstToRenderAst) VisitBlock(block *ml_parser.Block, context interface{}) interface{} {
	var result render3.Node
	var errors []*util.ParseError

	switch block.Name {
	case "if":
		createResult := render3.CreateIfBlock(block, t, t.bindingParser)
		result = createResult.Node
		errors = createResult.Errors
	case "for":
		createResult := render3.CreateForLoop(block, t, t.bindingParser)
		result = createResult.Node
		errors = createResult.Errors
	case "switch":
		createResult := render3.CreateSwitchBlock(block, t, t.bindingParser)
		result = createResult.Node
		errors = createResult.Errors
	case "defer":
		createResult := render3.CreateDeferredBlock(block, t, t.bindingParser)
		result = createResult.Node
		errors = createResult.Errors
	default:
		result = render3.NewUnknownBlock(block.Name, block.SourceSpan(), block.NameSpan)
		errors = []*util.ParseError{
			util.NewParseError(block.SourceSpan(), fmt.Sprintf("Unrecognized block %q", block.Name)),
		}
	}

	t.Errors = append(t.Errors, errors...)
	if result == nil {
		return nil
	}
	return result
}

// VisitBlockParameter visits a block parameter. Parameters are consumed by
// the block grammar builders, never visited directly.
func (t *HtmlAstToRenderAst) VisitBlockParameter(parameter *ml_parser.BlockParameter, context interface{}) interface{} {
	return nil
}

func (t *HtmlAstToRenderAst) createContent(element *ml_parser.Element, children []render3.Node) *render3.Content {
	attributes := make([]*render3.TextAttribute, 0, len(element.Attrs))
	selector := DefaultContentSelector
	for _, attr := range element.Attrs {
		if attr.Name == selectAttrName && attr.Value != "" {
			selector = attr.Value
		}
		attributes = append(attributes, t.createTextAttribute(attr))
	}
	t.ContentSelectors = append(t.ContentSelectors, selector)
	return render3.NewContent(
		selector,
		attributes,
		children,
		element.IsSelfClosing,
		element.SourceSpan(),
		element.StartSourceSpan,
		element.EndSourceSpan,
	)
}

func (t *HtmlAstToRenderAst) createTextAttribute(attr *ml_parser.Attribute) *render3.TextAttribute {
	return render3.NewTextAttribute(attr.Name, attr.Value, attr.SourceSpan(), attr.KeySpan, attr.ValueSpan)
}

func (t *HtmlAstToRenderAst) createVariable(attr *ml_parser.Attribute) *render3.Variable {
	name := attr.Name[len(letAttrPrefix):]
	keySpan := innerKeySpan(attr.KeySpan, len(letAttrPrefix), len(name))
	return render3.NewVariable(name, attr.Value, attr.SourceSpan(), keySpan, attr.ValueSpan)
}

func (t *HtmlAstToRenderAst) createReference(attr *ml_parser.Attribute) *render3.Reference {
	name := attr.Name[len(referenceAttrPrefix):]
	keySpan := innerKeySpan(attr.KeySpan, len(referenceAttrPrefix), len(name))
	return render3.NewReference(name, attr.Value, attr.SourceSpan(), keySpan, attr.ValueSpan)
}

// createBoundAttribute builds a BoundAttribute from a `[...]` attribute. The
// name inside the brackets selects the binding type: `attr.`, `class.` and
// `style.` prefixes bind attributes, single classes and single style
// properties, a leading `@` binds an animation, anything else is a property
// binding. Style bindings may carry a trailing unit, as in `style.width.px`.
func (t *HtmlAstToRenderAst) createBoundAttribute(attr *ml_parser.Attribute) *render3.BoundAttribute {
	name := attr.Name[1 : len(attr.Name)-1]
	bindingType := render3.BindingTypeProperty
	var unit *string
	nameOffset := 1

	switch {
	case strings.HasPrefix(name, animationPrefix):
		bindingType = render3.BindingTypeAnimation
		name = name[len(animationPrefix):]
		nameOffset += len(animationPrefix)
	case strings.HasPrefix(name, "attr."):
		bindingType = render3.BindingTypeAttribute
		name = name[len("attr."):]
		nameOffset += len("attr.")
	case strings.HasPrefix(name, "class."):
		bindingType = render3.BindingTypeClass
		name = name[len("class."):]
		nameOffset += len("class.")
	case strings.HasPrefix(name, "style."):
		bindingType = render3.BindingTypeStyle
		name = name[len("style."):]
		nameOffset += len("style.")
		if dot := strings.LastIndex(name, "."); dot > 0 {
			unitStr := name[dot+1:]
			unit = &unitStr
			name = name[:dot]
		}
	}

	keySpan := innerKeySpan(attr.KeySpan, nameOffset, len(name))
	value := t.parseAttributeValue(attr)
	return render3.NewBoundAttribute(name, bindingType, value, unit, attr.SourceSpan(), keySpan, attr.ValueSpan)
}

// createBoundEvent builds a BoundEvent from a `(...)` attribute. A leading
// `@` marks an animation listener whose name carries the phase, as in
// `(@fade.done)`; a `target:name` form attaches the listener to a global
// target such as `window` or `document`.
func (t *HtmlAstToRenderAst) createBoundEvent(attr *ml_parser.Attribute) *render3.BoundEvent {
	name := attr.Name[1 : len(attr.Name)-1]
	eventType := render3.ParsedEventTypeRegular
	var target *string
	var phase *string

	if strings.HasPrefix(name, animationPrefix) {
		eventType = render3.ParsedEventTypeAnimation
		trimmed := name[len(animationPrefix):]
		dot := strings.LastIndex(trimmed, ".")
		if dot <= 0 || dot == len(trimmed)-1 {
			t.reportError(attr.KeySpan, fmt.Sprintf(
				`Animation event %q is missing its phase, e.g. (%s.done)`, attr.Name, "@"+trimmed))
			return nil
		}
		phaseStr := trimmed[dot+1:]
		phase = &phaseStr
		name = trimmed[:dot]
	} else if colon := strings.Index(name, ":"); colon > 0 {
		targetStr := name[:colon]
		target = &targetStr
		name = name[colon+1:]
	}

	keySpan := innerKeySpan(attr.KeySpan, 1, len(attr.Name)-2)
	handler := t.parseAttributeValue(attr)
	return render3.NewBoundEvent(name, eventType, handler, target, phase, attr.SourceSpan(), attr.ValueSpan, keySpan)
}

func (t *HtmlAstToRenderAst) parseAttributeValue(attr *ml_parser.Attribute) *expression_parser.ASTWithSource {
	span := attr.ValueSpan
	if span == nil {
		span = attr.SourceSpan()
	}
	return t.bindingParser.ParseBinding(attr.Value, span, span.Start.Offset)
}

// innerKeySpan narrows an attribute key span to the identifier inside a
// sigil, e.g. the `name` of `[name]` or `#name`.
func innerKeySpan(keySpan *util.ParseSourceSpan, offset, length int) *util.ParseSourceSpan {
	if keySpan == nil {
		return nil
	}
	start := keySpan.Start.MoveBy(offset)
	return util.NewParseSourceSpan(start, start.MoveBy(length), start, nil)
}
