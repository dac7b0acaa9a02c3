package render3

import (
	"regexp"

	"tplc-go/packages/compiler/ml_parser"
	"tplc-go/packages/compiler/util"
)

// Pattern to identify a `prefetch when` trigger
var prefetchWhenPattern = regexp.MustCompile(`^prefetch\s+when\s`)

// Pattern to identify a `prefetch on` trigger
var prefetchOnPattern = regexp.MustCompile(`^prefetch\s+on\s`)

// Pattern to identify a `minimum` parameter in a block
var minimumParameterPattern = regexp.MustCompile(`^minimum\s`)

// Pattern to identify an `after` parameter in a block
var afterParameterPattern = regexp.MustCompile(`^after\s`)

// Pattern to identify a `when` parameter in a block
var whenParameterPattern = regexp.MustCompile(`^when\s`)

// Pattern to identify an `on` parameter in a block
var onParameterPattern = regexp.MustCompile(`^on\s`)

// IsConnectedDeferBlock determines if a section with a specific name belongs to a `defer` block
func IsConnectedDeferBlock(name string) bool {
	return name == "placeholder" || name == "loading" || name == "error"
}

// CreateDeferredBlockResult represents the result of creating a deferred block
type CreateDeferredBlockResult struct {
	Node   *DeferredBlock
	Errors []*util.ParseError
}

// CreateDeferredBlock creates a deferred block from a markup block and its sections
func CreateDeferredBlock(
	ast *ml_parser.Block,
	visitor ml_parser.Visitor,
	bindingParser BindingParser,
) CreateDeferredBlockResult {
	errors := []*util.ParseError{}
	placeholder, loading, errorBlock := parseDeferSections(ast.Sections, &errors, visitor)
	triggers, prefetchTriggers := parsePrimaryTriggers(ast, bindingParser, &errors)

	// The `defer` block has a main span encompassing all of its sections as well
	lastEndSourceSpan := ast.EndSourceSpan
	endOfLastSourceSpan := ast.SourceSpan().End
	if len(ast.Sections) > 0 {
		lastSection := ast.Sections[len(ast.Sections)-1]
		lastEndSourceSpan = lastSection.EndSourceSpan
		endOfLastSourceSpan = lastSection.SourceSpan().End
	}

	sourceSpanWithSections := util.NewParseSourceSpan(
		ast.SourceSpan().Start,
		endOfLastSourceSpan,
		nil,
		nil,
	)

	children := convertToR3Nodes(ml_parser.VisitAll(visitor, ast.Children, nil))
	node := NewDeferredBlock(
		children,
		triggers,
		prefetchTriggers,
		placeholder,
		loading,
		errorBlock,
		ast.NameSpan,
		sourceSpanWithSections,
		ast.SourceSpan(),
		ast.StartSourceSpan,
		lastEndSourceSpan,
	)

	return CreateDeferredBlockResult{Node: node, Errors: errors}
}

// parseDeferSections parses the placeholder, loading and error sections
func parseDeferSections(
	sections []*ml_parser.Block,
	errors *[]*util.ParseError,
	visitor ml_parser.Visitor,
) (*DeferredBlockPlaceholder, *DeferredBlockLoading, *DeferredBlockError) {
	var placeholder *DeferredBlockPlaceholder
	var loading *DeferredBlockLoading
	var errorBlock *DeferredBlockError

	for _, section := range sections {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if err, ok := r.(error); ok {
						*errors = append(*errors, util.NewParseError(section.StartSourceSpan, err.Error()))
					} else {
						*errors = append(*errors, util.NewParseError(section.StartSourceSpan, "Unknown error"))
					}
				}
			}()

			if !IsConnectedDeferBlock(section.Name) {
				*errors = append(*errors, util.NewParseError(section.StartSourceSpan, `Unrecognized block "`+section.Name+`"`))
				return
			}

			switch section.Name {
			case "placeholder":
				if placeholder != nil {
					*errors = append(*errors, util.NewParseError(
						section.StartSourceSpan,
						"Defer block can only have one placeholder block",
					))
				} else {
					placeholder = parsePlaceholderBlock(section, visitor)
				}

			case "loading":
				if loading != nil {
					*errors = append(*errors, util.NewParseError(
						section.StartSourceSpan,
						"Defer block can only have one loading block",
					))
				} else {
					loading = parseLoadingBlock(section, visitor)
				}

			case "error":
				if errorBlock != nil {
					*errors = append(*errors, util.NewParseError(section.StartSourceSpan, "Defer block can only have one error block"))
				} else {
					errorBlock = parseErrorBlock(section, visitor)
				}
			}
		}()
	}

	return placeholder, loading, errorBlock
}

// parsePlaceholderBlock parses a placeholder section
func parsePlaceholderBlock(ast *ml_parser.Block, visitor ml_parser.Visitor) *DeferredBlockPlaceholder {
	var minimumTime *int

	for _, param := range ast.Parameters {
		if minimumParameterPattern.MatchString(param.Expression) {
			if minimumTime != nil {
				panic(&ParseError{Message: `Placeholder block can only have one "minimum" parameter`})
			}

			parsedTime := ParseDeferredTime(
				param.Expression[GetTriggerParametersStart(param.Expression, 0):],
			)

			if parsedTime == nil {
				panic(&ParseError{Message: `Could not parse time value of parameter "minimum"`})
			}

			minimumTime = parsedTime
		} else {
			panic(&ParseError{Message: `Unrecognized parameter in placeholder block: "` + param.Expression + `"`})
		}
	}

	children := convertToR3Nodes(ml_parser.VisitAll(visitor, ast.Children, nil))
	return NewDeferredBlockPlaceholder(
		children,
		minimumTime,
		ast.NameSpan,
		ast.SourceSpan(),
		ast.StartSourceSpan,
		ast.EndSourceSpan,
	)
}

// parseLoadingBlock parses a loading section
func parseLoadingBlock(ast *ml_parser.Block, visitor ml_parser.Visitor) *DeferredBlockLoading {
	var afterTime *int
	var minimumTime *int

	for _, param := range ast.Parameters {
		if afterParameterPattern.MatchString(param.Expression) {
			if afterTime != nil {
				panic(&ParseError{Message: `Loading block can only have one "after" parameter`})
			}

			parsedTime := ParseDeferredTime(
				param.Expression[GetTriggerParametersStart(param.Expression, 0):],
			)

			if parsedTime == nil {
				panic(&ParseError{Message: `Could not parse time value of parameter "after"`})
			}

			afterTime = parsedTime
		} else if minimumParameterPattern.MatchString(param.Expression) {
			if minimumTime != nil {
				panic(&ParseError{Message: `Loading block can only have one "minimum" parameter`})
			}

			parsedTime := ParseDeferredTime(
				param.Expression[GetTriggerParametersStart(param.Expression, 0):],
			)

			if parsedTime == nil {
				panic(&ParseError{Message: `Could not parse time value of parameter "minimum"`})
			}

			minimumTime = parsedTime
		} else {
			panic(&ParseError{Message: `Unrecognized parameter in loading block: "` + param.Expression + `"`})
		}
	}

	children := convertToR3Nodes(ml_parser.VisitAll(visitor, ast.Children, nil))
	return NewDeferredBlockLoading(
		children,
		afterTime,
		minimumTime,
		ast.NameSpan,
		ast.SourceSpan(),
		ast.StartSourceSpan,
		ast.EndSourceSpan,
	)
}

// parseErrorBlock parses an error section
func parseErrorBlock(ast *ml_parser.Block, visitor ml_parser.Visitor) *DeferredBlockError {
	if len(ast.Parameters) > 0 {
		panic(&ParseError{Message: `Error block cannot have parameters`})
	}

	children := convertToR3Nodes(ml_parser.VisitAll(visitor, ast.Children, nil))
	return NewDeferredBlockError(
		children,
		ast.NameSpan,
		ast.SourceSpan(),
		ast.StartSourceSpan,
		ast.EndSourceSpan,
	)
}

// parsePrimaryTriggers parses the triggers from the main block parameters
func parsePrimaryTriggers(
	ast *ml_parser.Block,
	bindingParser BindingParser,
	errors *[]*util.ParseError,
) (*DeferredBlockTriggers, *DeferredBlockTriggers) {
	triggers := &DeferredBlockTriggers{}
	prefetchTriggers := &DeferredBlockTriggers{}

	for _, param := range ast.Parameters {
		// The tokenizer strips the leading whitespace so the expression
		// starts with a keyword
		if whenParameterPattern.MatchString(param.Expression) {
			ParseWhenTrigger(param, bindingParser, triggers, errors)
		} else if onParameterPattern.MatchString(param.Expression) {
			ParseOnTrigger(param, triggers, errors)
		} else if prefetchWhenPattern.MatchString(param.Expression) {
			ParseWhenTrigger(param, bindingParser, prefetchTriggers, errors)
		} else if prefetchOnPattern.MatchString(param.Expression) {
			ParseOnTrigger(param, prefetchTriggers, errors)
		} else {
			*errors = append(*errors, util.NewParseError(param.SourceSpan(), "Unrecognized trigger"))
		}
	}

	return triggers, prefetchTriggers
}
