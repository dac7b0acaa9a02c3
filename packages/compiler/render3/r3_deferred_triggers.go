package render3

import (
	"regexp"
	"strconv"
	"strings"

	"tplc-go/packages/compiler/core"
	"tplc-go/packages/compiler/expression_parser"
	"tplc-go/packages/compiler/ml_parser"
	"tplc-go/packages/compiler/util"
)

// Pattern for a timing value in a trigger
var timePattern = regexp.MustCompile(`^\d+\.?\d*(ms|s)?$`)

// CommaDelimitedSyntax maps opening characters to closing characters
var commaDelimitedSyntax = map[int]int{
	core.CharLBRACE:   core.CharRBRACE,   // Object literals
	core.CharLBRACKET: core.CharRBRACKET, // Array literals
	core.CharLPAREN:   core.CharRPAREN,   // Function calls
}

// OnTriggerType represents possible types of `on` triggers
type OnTriggerType string

const (
	OnTriggerTypeIdle        OnTriggerType = "idle"
	OnTriggerTypeTimer       OnTriggerType = "timer"
	OnTriggerTypeInteraction OnTriggerType = "interaction"
	OnTriggerTypeImmediate   OnTriggerType = "immediate"
	OnTriggerTypeHover       OnTriggerType = "hover"
	OnTriggerTypeViewport    OnTriggerType = "viewport"
)

// ParsedParameter represents parsed information about a defer trigger parameter
type ParsedParameter struct {
	// Expression of the parameter
	Expression string
	// Index within the trigger at which the parameter starts
	Start int
}

// ParseError carries a message from a failed section or trigger parse
type ParseError struct {
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return e.Message
}

// ParseWhenTrigger parses a `when` deferred trigger
func ParseWhenTrigger(
	param *ml_parser.BlockParameter,
	bindingParser BindingParser,
	triggers *DeferredBlockTriggers,
	errors *[]*util.ParseError,
) {
	sourceSpan := param.SourceSpan()
	whenIndex := strings.Index(param.Expression, "when")
	var whenSourceSpan *util.ParseSourceSpan
	if whenIndex != -1 {
		whenSourceSpan = util.NewParseSourceSpan(
			sourceSpan.Start.MoveBy(whenIndex),
			sourceSpan.Start.MoveBy(whenIndex+len("when")),
			nil,
			nil,
		)
	}
	prefetchSpan := getPrefetchSpan(param.Expression, sourceSpan)

	if whenIndex == -1 {
		*errors = append(*errors, util.NewParseError(sourceSpan, `Could not find "when" keyword in expression`))
	} else {
		start := GetTriggerParametersStart(param.Expression, whenIndex+1)
		parsed := bindingParser.ParseBinding(
			param.Expression[start:],
			sourceSpan,
			sourceSpan.Start.Offset+start,
		)
		trackTrigger(
			"when",
			triggers,
			errors,
			NewBoundDeferredTrigger(parsed.AST, sourceSpan, prefetchSpan, whenSourceSpan),
		)
	}
}

// ParseOnTrigger parses an `on` trigger
func ParseOnTrigger(
	param *ml_parser.BlockParameter,
	triggers *DeferredBlockTriggers,
	errors *[]*util.ParseError,
) {
	sourceSpan := param.SourceSpan()
	onIndex := strings.Index(param.Expression, "on")
	var onSourceSpan *util.ParseSourceSpan
	if onIndex != -1 {
		onSourceSpan = util.NewParseSourceSpan(
			sourceSpan.Start.MoveBy(onIndex),
			sourceSpan.Start.MoveBy(onIndex+len("on")),
			nil,
			nil,
		)
	}
	prefetchSpan := getPrefetchSpan(param.Expression, sourceSpan)

	if onIndex == -1 {
		*errors = append(*errors, util.NewParseError(sourceSpan, `Could not find "on" keyword in expression`))
	} else {
		start := GetTriggerParametersStart(param.Expression, onIndex+1)
		parser := NewOnTriggerParser(
			param.Expression,
			start,
			sourceSpan,
			triggers,
			errors,
			prefetchSpan,
			onSourceSpan,
		)
		parser.Parse()
	}
}

// getPrefetchSpan gets the prefetch span from an expression
func getPrefetchSpan(expression string, sourceSpan *util.ParseSourceSpan) *util.ParseSourceSpan {
	if !strings.HasPrefix(expression, "prefetch") {
		return nil
	}
	return util.NewParseSourceSpan(sourceSpan.Start, sourceSpan.Start.MoveBy(len("prefetch")), nil, nil)
}

// OnTriggerParser parses the comma-separated trigger list of an `on` parameter
type OnTriggerParser struct {
	expression   string
	start        int
	span         *util.ParseSourceSpan
	triggers     *DeferredBlockTriggers
	errors       *[]*util.ParseError
	prefetchSpan *util.ParseSourceSpan
	onSourceSpan *util.ParseSourceSpan
	index        int
	tokens       []*expression_parser.Token
}

// NewOnTriggerParser creates a new OnTriggerParser
func NewOnTriggerParser(
	expression string,
	start int,
	span *util.ParseSourceSpan,
	triggers *DeferredBlockTriggers,
	errors *[]*util.ParseError,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) *OnTriggerParser {
	lexer := expression_parser.NewLexer()
	tokens := lexer.Tokenize(expression[start:])
	return &OnTriggerParser{
		expression:   expression,
		start:        start,
		span:         span,
		triggers:     triggers,
		errors:       errors,
		prefetchSpan: prefetchSpan,
		onSourceSpan: onSourceSpan,
		index:        0,
		tokens:       tokens,
	}
}

// Parse parses the triggers
func (p *OnTriggerParser) Parse() {
	for len(p.tokens) > 0 && p.index < len(p.tokens) {
		token := p.token()

		if !token.IsIdentifier() {
			p.unexpectedToken(token)
			break
		}

		// An identifier immediately followed by a comma or the end of
		// the expression cannot have parameters so we can exit early
		if p.isFollowedByOrLast(core.CharCOMMA) {
			p.consumeTrigger(token, []ParsedParameter{})
			p.advance()
		} else if p.isFollowedByOrLast(core.CharLPAREN) {
			p.advance() // Advance to the opening paren
			prevErrors := len(*p.errors)
			parameters := p.consumeParameters()
			if len(*p.errors) != prevErrors {
				break
			}
			p.consumeTrigger(token, parameters)
			p.advance() // Advance past the closing paren
		} else if p.index < len(p.tokens)-1 {
			p.unexpectedToken(p.tokens[p.index+1])
		}

		p.advance()
	}
}

// advance advances the parser index
func (p *OnTriggerParser) advance() {
	p.index++
}

// isFollowedByOrLast checks if the current token is followed by a character or is the last token
func (p *OnTriggerParser) isFollowedByOrLast(char int) bool {
	if p.index == len(p.tokens)-1 {
		return true
	}
	return p.tokens[p.index+1].IsCharacter(char)
}

// token returns the current token
func (p *OnTriggerParser) token() *expression_parser.Token {
	if p.index >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.index]
}

// consumeTrigger consumes a trigger
func (p *OnTriggerParser) consumeTrigger(identifier *expression_parser.Token, parameters []ParsedParameter) {
	triggerNameStartSpan := p.span.Start.MoveBy(
		p.start + identifier.Index - p.tokens[0].Index,
	)
	nameSpan := util.NewParseSourceSpan(
		triggerNameStartSpan,
		triggerNameStartSpan.MoveBy(len(identifier.StrValue)),
		nil,
		nil,
	)
	currentToken := p.token()
	endSpan := triggerNameStartSpan.MoveBy(currentToken.End - identifier.Index)

	// The prefetch and on spans belong to the first trigger of the parameter
	isFirstTrigger := identifier.Index == 0
	var onSourceSpan *util.ParseSourceSpan
	var prefetchSourceSpan *util.ParseSourceSpan
	if isFirstTrigger {
		onSourceSpan = p.onSourceSpan
		prefetchSourceSpan = p.prefetchSpan
	}
	var sourceSpanStart *util.ParseLocation
	if isFirstTrigger {
		sourceSpanStart = p.span.Start
	} else {
		sourceSpanStart = triggerNameStartSpan
	}
	sourceSpan := util.NewParseSourceSpan(sourceSpanStart, endSpan, nil, nil)

	triggerName := identifier.StrValue
	var trigger DeferredTriggerInterface
	var err error

	switch triggerName {
	case string(OnTriggerTypeIdle):
		trigger, err = createIdleTrigger(parameters, nameSpan, sourceSpan, prefetchSourceSpan, onSourceSpan)

	case string(OnTriggerTypeTimer):
		trigger, err = createTimerTrigger(parameters, nameSpan, sourceSpan, p.prefetchSpan, p.onSourceSpan)

	case string(OnTriggerTypeInteraction):
		trigger, err = createInteractionTrigger(parameters, nameSpan, sourceSpan, p.prefetchSpan, p.onSourceSpan)

	case string(OnTriggerTypeImmediate):
		trigger, err = createImmediateTrigger(parameters, nameSpan, sourceSpan, prefetchSourceSpan, onSourceSpan)

	case string(OnTriggerTypeHover):
		trigger, err = createHoverTrigger(parameters, nameSpan, sourceSpan, p.prefetchSpan, p.onSourceSpan)

	case string(OnTriggerTypeViewport):
		trigger, err = createViewportTrigger(parameters, nameSpan, sourceSpan, p.prefetchSpan, p.onSourceSpan)

	default:
		err = &ParseError{Message: `Unrecognized trigger type "` + triggerName + `"`}
	}

	if err != nil {
		p.error(identifier, err.Error())
	} else {
		trackTrigger(triggerName, p.triggers, p.errors, trigger)
	}
}

// consumeParameters consumes parameters from the expression
func (p *OnTriggerParser) consumeParameters() []ParsedParameter {
	parameters := []ParsedParameter{}

	if !p.token().IsCharacter(core.CharLPAREN) {
		p.unexpectedToken(p.token())
		return parameters
	}

	p.advance()

	commaDelimStack := []int{}
	var tokens []*expression_parser.Token

	for p.index < len(p.tokens) {
		token := p.token()

		// Stop parsing on the end character outside of a comma-delimited syntax
		if token.IsCharacter(core.CharRPAREN) && len(commaDelimStack) == 0 {
			if len(tokens) > 0 {
				parameters = append(parameters, ParsedParameter{
					Expression: p.tokenRangeText(tokens),
					Start:      tokens[0].Index,
				})
			}
			break
		}

		if token.Type == expression_parser.TokenTypeCharacter {
			if closingChar, ok := commaDelimitedSyntax[int(token.NumValue)]; ok {
				commaDelimStack = append(commaDelimStack, closingChar)
			}
		}

		if len(commaDelimStack) > 0 && token.IsCharacter(commaDelimStack[len(commaDelimStack)-1]) {
			commaDelimStack = commaDelimStack[:len(commaDelimStack)-1]
		}

		// A comma at the top level starts a new parameter
		if len(commaDelimStack) == 0 && token.IsCharacter(core.CharCOMMA) && len(tokens) > 0 {
			parameters = append(parameters, ParsedParameter{
				Expression: p.tokenRangeText(tokens),
				Start:      tokens[0].Index,
			})
			p.advance()
			tokens = []*expression_parser.Token{}
			continue
		}

		tokens = append(tokens, token)
		p.advance()
	}

	if !p.token().IsCharacter(core.CharRPAREN) || len(commaDelimStack) > 0 {
		p.error(p.token(), "Unexpected end of expression")
	}

	if p.index < len(p.tokens)-1 && !p.tokens[p.index+1].IsCharacter(core.CharCOMMA) {
		p.unexpectedToken(p.tokens[p.index+1])
	}

	return parameters
}

// tokenRangeText gets the text for a range of tokens
func (p *OnTriggerParser) tokenRangeText(tokens []*expression_parser.Token) string {
	if len(tokens) == 0 {
		return ""
	}

	return p.expression[p.start+tokens[0].Index : p.start+tokens[len(tokens)-1].End]
}

// error adds an error
func (p *OnTriggerParser) error(token *expression_parser.Token, message string) {
	newStart := p.span.Start.MoveBy(p.start + token.Index)
	newEnd := newStart.MoveBy(token.End - token.Index)
	*p.errors = append(*p.errors, util.NewParseError(
		util.NewParseSourceSpan(newStart, newEnd, nil, nil),
		message,
	))
}

// unexpectedToken adds an error for an unexpected token
func (p *OnTriggerParser) unexpectedToken(token *expression_parser.Token) {
	p.error(token, `Unexpected token "`+token.String()+`"`)
}

// DeferredTriggerInterface is the common surface of deferred trigger nodes
type DeferredTriggerInterface interface {
	SourceSpan() *util.ParseSourceSpan
}

// trackTrigger adds a trigger to the set of triggers, rejecting duplicates
func trackTrigger(
	name string,
	allTriggers *DeferredBlockTriggers,
	errors *[]*util.ParseError,
	trigger DeferredTriggerInterface,
) {
	var existingTrigger DeferredTriggerInterface
	switch name {
	case "when":
		if allTriggers.When != nil {
			existingTrigger = allTriggers.When
		}
	case "idle":
		if allTriggers.Idle != nil {
			existingTrigger = allTriggers.Idle
		}
	case "immediate":
		if allTriggers.Immediate != nil {
			existingTrigger = allTriggers.Immediate
		}
	case "hover":
		if allTriggers.Hover != nil {
			existingTrigger = allTriggers.Hover
		}
	case "timer":
		if allTriggers.Timer != nil {
			existingTrigger = allTriggers.Timer
		}
	case "interaction":
		if allTriggers.Interaction != nil {
			existingTrigger = allTriggers.Interaction
		}
	case "viewport":
		if allTriggers.Viewport != nil {
			existingTrigger = allTriggers.Viewport
		}
	}

	if existingTrigger != nil {
		*errors = append(*errors, util.NewParseError(trigger.SourceSpan(), `Duplicate "`+name+`" trigger is not allowed`))
		return
	}

	switch name {
	case "when":
		if bdt, ok := trigger.(*BoundDeferredTrigger); ok {
			allTriggers.When = bdt
		}
	case "idle":
		if idt, ok := trigger.(*IdleDeferredTrigger); ok {
			allTriggers.Idle = idt
		}
	case "immediate":
		if imt, ok := trigger.(*ImmediateDeferredTrigger); ok {
			allTriggers.Immediate = imt
		}
	case "hover":
		if ht, ok := trigger.(*HoverDeferredTrigger); ok {
			allTriggers.Hover = ht
		}
	case "timer":
		if tt, ok := trigger.(*TimerDeferredTrigger); ok {
			allTriggers.Timer = tt
		}
	case "interaction":
		if it, ok := trigger.(*InteractionDeferredTrigger); ok {
			allTriggers.Interaction = it
		}
	case "viewport":
		if vt, ok := trigger.(*ViewportDeferredTrigger); ok {
			allTriggers.Viewport = vt
		}
	}
}

// createIdleTrigger creates an idle trigger
func createIdleTrigger(
	parameters []ParsedParameter,
	nameSpan *util.ParseSourceSpan,
	sourceSpan *util.ParseSourceSpan,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) (DeferredTriggerInterface, error) {
	if len(parameters) > 0 {
		return nil, &ParseError{Message: `"` + string(OnTriggerTypeIdle) + `" trigger cannot have parameters`}
	}

	return NewIdleDeferredTrigger(nameSpan, sourceSpan, prefetchSpan, onSourceSpan), nil
}

// createTimerTrigger creates a timer trigger
func createTimerTrigger(
	parameters []ParsedParameter,
	nameSpan *util.ParseSourceSpan,
	sourceSpan *util.ParseSourceSpan,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) (DeferredTriggerInterface, error) {
	if len(parameters) != 1 {
		return nil, &ParseError{Message: `"` + string(OnTriggerTypeTimer) + `" trigger must have exactly one parameter`}
	}

	delay := ParseDeferredTime(parameters[0].Expression)
	if delay == nil {
		return nil, &ParseError{Message: `Could not parse time value of trigger "` + string(OnTriggerTypeTimer) + `"`}
	}

	return NewTimerDeferredTrigger(*delay, nameSpan, sourceSpan, prefetchSpan, onSourceSpan), nil
}

// createImmediateTrigger creates an immediate trigger
func createImmediateTrigger(
	parameters []ParsedParameter,
	nameSpan *util.ParseSourceSpan,
	sourceSpan *util.ParseSourceSpan,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) (DeferredTriggerInterface, error) {
	if len(parameters) > 0 {
		return nil, &ParseError{Message: `"` + string(OnTriggerTypeImmediate) + `" trigger cannot have parameters`}
	}

	return NewImmediateDeferredTrigger(nameSpan, sourceSpan, prefetchSpan, onSourceSpan), nil
}

// createHoverTrigger creates a hover trigger
func createHoverTrigger(
	parameters []ParsedParameter,
	nameSpan *util.ParseSourceSpan,
	sourceSpan *util.ParseSourceSpan,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) (DeferredTriggerInterface, error) {
	if len(parameters) != 1 {
		return nil, &ParseError{Message: `"` + string(OnTriggerTypeHover) + `" trigger must have exactly one parameter`}
	}
	reference := parameters[0].Expression
	return NewHoverDeferredTrigger(&reference, nameSpan, sourceSpan, prefetchSpan, onSourceSpan), nil
}

// createInteractionTrigger creates an interaction trigger
func createInteractionTrigger(
	parameters []ParsedParameter,
	nameSpan *util.ParseSourceSpan,
	sourceSpan *util.ParseSourceSpan,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) (DeferredTriggerInterface, error) {
	if len(parameters) != 1 {
		return nil, &ParseError{Message: `"` + string(OnTriggerTypeInteraction) + `" trigger must have exactly one parameter`}
	}
	reference := parameters[0].Expression
	return NewInteractionDeferredTrigger(&reference, nameSpan, sourceSpan, prefetchSpan, onSourceSpan), nil
}

// createViewportTrigger creates a viewport trigger
func createViewportTrigger(
	parameters []ParsedParameter,
	nameSpan *util.ParseSourceSpan,
	sourceSpan *util.ParseSourceSpan,
	prefetchSpan *util.ParseSourceSpan,
	onSourceSpan *util.ParseSourceSpan,
) (DeferredTriggerInterface, error) {
	if len(parameters) > 1 {
		return nil, &ParseError{Message: `"` + string(OnTriggerTypeViewport) + `" trigger can only have zero or one parameters`}
	}

	var reference *string
	if len(parameters) > 0 {
		ref := parameters[0].Expression
		reference = &ref
	}

	return NewViewportDeferredTrigger(reference, nameSpan, sourceSpan, prefetchSpan, onSourceSpan), nil
}

// GetTriggerParametersStart gets the index within an expression at which the trigger parameters start
func GetTriggerParametersStart(value string, startPosition int) int {
	hasFoundSeparator := false

	for i := startPosition; i < len(value); i++ {
		if util.IsWhitespace(int(value[i])) {
			hasFoundSeparator = true
		} else if hasFoundSeparator {
			return i
		}
	}

	return -1
}

// ParseDeferredTime parses a time expression from a deferred trigger to
// milliseconds. Values without a unit are treated as milliseconds.
func ParseDeferredTime(value string) *int {
	match := timePattern.FindStringSubmatch(value)
	if match == nil {
		return nil
	}

	var units string
	if len(match) > 1 {
		units = match[1]
	}
	timeStr := strings.TrimSuffix(match[0], units)

	timeValue, err := strconv.ParseFloat(timeStr, 64)
	if err != nil {
		return nil
	}

	var milliseconds int
	if units == "s" {
		milliseconds = int(timeValue * 1000)
	} else {
		milliseconds = int(timeValue)
	}

	return &milliseconds
}
