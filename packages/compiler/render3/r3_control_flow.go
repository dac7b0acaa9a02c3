package render3

import (
	"regexp"
	"strings"

	"tplc-go/packages/compiler/expression_parser"
	"tplc-go/packages/compiler/ml_parser"
	"tplc-go/packages/compiler/util"
)

// Pattern for the expression in a for loop block
var forLoopExpressionPattern = regexp.MustCompile(`^\s*([0-9A-Za-z_$]*)\s+of\s+([\S\s]*)`)

// Pattern for the tracking expression in a for loop block
var forLoopTrackPattern = regexp.MustCompile(`^track\s+([\S\s]*)`)

// Pattern for the `as` expression in a conditional block
var conditionalAliasPattern = regexp.MustCompile(`^(as\s+)(.*)`)

// Pattern used to identify an `else if` section
var elseIfPattern = regexp.MustCompile(`^else[^\S\r\n]+if`)

// Pattern used to identify a `let` parameter
var forLoopLetPattern = regexp.MustCompile(`^let\s+([\S\s]*)`)

// Pattern used to validate an identifier
var identifierPattern = regexp.MustCompile(`^[$A-Za-z_][0-9A-Za-z_$]*$`)

// Pattern to group a string into leading whitespace, non whitespace, and trailing whitespace
var charactersInSurroundingWhitespacePattern = regexp.MustCompile(`(\s*)(\S+)(\s*)`)

// Names of variables that are allowed to be used in the `let` expression of a `for` loop
var allowedForLoopLetVariables = map[string]bool{
	"$index": true,
	"$first": true,
	"$last":  true,
	"$even":  true,
	"$odd":   true,
	"$count": true,
}

// BindingParser parses binding expressions encountered in block parameters
type BindingParser interface {
	ParseBinding(expression string, sourceSpan *util.ParseSourceSpan, absoluteOffset int) *expression_parser.ASTWithSource
}

// IsConnectedForLoopBlock determines if a section with a specific name belongs to a `for` block
func IsConnectedForLoopBlock(name string) bool {
	return name == "empty"
}

// IsConnectedIfLoopBlock determines if a section with a specific name belongs to an `if` block
func IsConnectedIfLoopBlock(name string) bool {
	return name == "else" || elseIfPattern.MatchString(name)
}

// CreateIfBlockResult represents the result of creating an if block
type CreateIfBlockResult struct {
	Node   *IfBlock
	Errors []*util.ParseError
}

// CreateIfBlock creates an `if` block from a markup block and its sections
func CreateIfBlock(
	ast *ml_parser.Block,
	visitor ml_parser.Visitor,
	bindingParser BindingParser,
) CreateIfBlockResult {
	errors := validateIfSections(ast.Sections)
	branches := []*IfBlockBranch{}
	mainBlockParams := parseConditionalBlockParameters(ast, &errors, bindingParser)

	if mainBlockParams != nil {
		children := convertToR3Nodes(ml_parser.VisitAll(visitor, ast.Children, nil))
		branches = append(branches, NewIfBlockBranch(
			mainBlockParams.Expression,
			children,
			mainBlockParams.ExpressionAlias,
			ast.SourceSpan(),
			ast.StartSourceSpan,
			ast.EndSourceSpan,
			ast.NameSpan,
		))
	}

	for _, section := range ast.Sections {
		if elseIfPattern.MatchString(section.Name) {
			params := parseConditionalBlockParameters(section, &errors, bindingParser)
			if params != nil {
				children := convertToR3Nodes(ml_parser.VisitAll(visitor, section.Children, nil))
				branches = append(branches, NewIfBlockBranch(
					params.Expression,
					children,
					params.ExpressionAlias,
					section.SourceSpan(),
					section.StartSourceSpan,
					section.EndSourceSpan,
					section.NameSpan,
				))
			}
		} else if section.Name == "else" {
			children := convertToR3Nodes(ml_parser.VisitAll(visitor, section.Children, nil))
			branches = append(branches, NewIfBlockBranch(
				nil,
				children,
				nil,
				section.SourceSpan(),
				section.StartSourceSpan,
				section.EndSourceSpan,
				section.NameSpan,
			))
		}
	}

	// The outer IfBlock should have a span that encapsulates all branches
	var ifBlockStartSourceSpan *util.ParseSourceSpan
	var ifBlockEndSourceSpan *util.ParseSourceSpan
	if len(branches) > 0 {
		ifBlockStartSourceSpan = branches[0].StartSourceSpan
		ifBlockEndSourceSpan = branches[len(branches)-1].EndSourceSpan
	} else {
		ifBlockStartSourceSpan = ast.StartSourceSpan
		ifBlockEndSourceSpan = ast.EndSourceSpan
	}

	wholeSourceSpan := ast.SourceSpan()
	if len(branches) > 0 {
		lastBranch := branches[len(branches)-1]
		wholeSourceSpan = util.NewParseSourceSpan(ifBlockStartSourceSpan.Start, lastBranch.SourceSpan().End, nil, nil)
	}

	return CreateIfBlockResult{
		Node:   NewIfBlock(branches, wholeSourceSpan, ast.StartSourceSpan, ifBlockEndSourceSpan, ast.NameSpan),
		Errors: errors,
	}
}

// CreateForLoopResult represents the result of creating a for loop block
type CreateForLoopResult struct {
	Node   *ForLoopBlock
	Errors []*util.ParseError
}

// CreateForLoop creates a `for` loop block from a markup block and its sections
func CreateForLoop(
	ast *ml_parser.Block,
	visitor ml_parser.Visitor,
	bindingParser BindingParser,
) CreateForLoopResult {
	errors := []*util.ParseError{}
	params := parseForLoopParameters(ast, &errors, bindingParser)
	var node *ForLoopBlock
	var empty *ForLoopBlockEmpty

	for _, section := range ast.Sections {
		if section.Name == "empty" {
			if empty != nil {
				errors = append(errors, util.NewParseError(section.SourceSpan(), `For loop can only have one "empty" block`))
			} else if len(section.Parameters) > 0 {
				errors = append(errors, util.NewParseError(section.SourceSpan(), `"empty" block cannot have parameters`))
			} else {
				children := convertToR3Nodes(ml_parser.VisitAll(visitor, section.Children, nil))
				empty = NewForLoopBlockEmpty(
					children,
					section.SourceSpan(),
					section.StartSourceSpan,
					section.EndSourceSpan,
					section.NameSpan,
				)
			}
		} else {
			errors = append(errors, util.NewParseError(section.SourceSpan(), `Unrecognized for loop block "`+section.Name+`"`))
		}
	}

	if params != nil {
		if params.TrackBy == nil {
			errors = append(errors, util.NewParseError(ast.StartSourceSpan, `For loop must have a "track" expression`))
		} else {
			// The main span of a `for` block includes the `empty` section
			var endSpan *util.ParseSourceSpan
			if empty != nil {
				endSpan = empty.EndSourceSpan
			} else {
				endSpan = ast.EndSourceSpan
			}
			sourceSpan := ast.SourceSpan()
			if endSpan != nil {
				sourceSpan = util.NewParseSourceSpan(ast.SourceSpan().Start, endSpan.End, nil, nil)
			}
			children := convertToR3Nodes(ml_parser.VisitAll(visitor, ast.Children, nil))
			node = NewForLoopBlock(
				params.ItemName,
				params.Expression,
				params.TrackBy.Expression,
				params.TrackBy.KeywordSpan,
				params.Context,
				children,
				empty,
				sourceSpan,
				ast.SourceSpan(),
				ast.StartSourceSpan,
				endSpan,
				ast.NameSpan,
			)
		}
	}

	return CreateForLoopResult{Node: node, Errors: errors}
}

// CreateSwitchBlockResult represents the result of creating a switch block
type CreateSwitchBlockResult struct {
	Node   *SwitchBlock
	Errors []*util.ParseError
}

// CreateSwitchBlock creates a switch block from a markup block and its sections
func CreateSwitchBlock(
	ast *ml_parser.Block,
	visitor ml_parser.Visitor,
	bindingParser BindingParser,
) CreateSwitchBlockResult {
	errors := validateSwitchBlock(ast)
	var primaryExpression expression_parser.AST
	if len(ast.Parameters) > 0 {
		primaryExpression = parseBlockParameterToBinding(ast.Parameters[0], bindingParser, nil).AST
	} else {
		primaryExpression = bindingParser.ParseBinding("", ast.SourceSpan(), 0).AST
	}
	cases := []*SwitchBlockCase{}
	unknownBlocks := []*UnknownBlock{}
	var defaultCase *SwitchBlockCase

	// The sections were validated above, so invalid ones are only recorded
	for _, section := range ast.Sections {
		if (section.Name != "case" || len(section.Parameters) == 0) && section.Name != "default" {
			unknownBlocks = append(unknownBlocks, NewUnknownBlock(section.Name, section.SourceSpan(), section.NameSpan))
			continue
		}

		var expr expression_parser.AST
		if section.Name == "case" {
			expr = parseBlockParameterToBinding(section.Parameters[0], bindingParser, nil).AST
		}
		children := convertToR3Nodes(ml_parser.VisitAll(visitor, section.Children, nil))
		astCase := NewSwitchBlockCase(
			expr,
			children,
			section.SourceSpan(),
			section.StartSourceSpan,
			section.EndSourceSpan,
			section.NameSpan,
		)

		if expr == nil {
			defaultCase = astCase
		} else {
			cases = append(cases, astCase)
		}
	}

	// Ensure that the default case is last in the array
	if defaultCase != nil {
		cases = append(cases, defaultCase)
	}

	return CreateSwitchBlockResult{
		Node: NewSwitchBlock(
			primaryExpression,
			cases,
			unknownBlocks,
			ast.SourceSpan(),
			ast.StartSourceSpan,
			ast.EndSourceSpan,
			ast.NameSpan,
		),
		Errors: errors,
	}
}

// ForLoopParameters represents parsed parameters for a for loop
type ForLoopParameters struct {
	ItemName   *Variable
	TrackBy    *TrackByExpression
	Expression *expression_parser.ASTWithSource
	Context    []*Variable
}

// TrackByExpression represents a track by expression
type TrackByExpression struct {
	Expression  *expression_parser.ASTWithSource
	KeywordSpan *util.ParseSourceSpan
}

// ConditionalBlockParameters represents parsed parameters for a conditional block
type ConditionalBlockParameters struct {
	Expression      expression_parser.AST
	ExpressionAlias *Variable
}

// parseForLoopParameters parses the parameters of a `for` loop block
func parseForLoopParameters(
	block *ml_parser.Block,
	errors *[]*util.ParseError,
	bindingParser BindingParser,
) *ForLoopParameters {
	if len(block.Parameters) == 0 {
		*errors = append(*errors, util.NewParseError(block.StartSourceSpan, "For loop does not have an expression"))
		return nil
	}

	expressionParam := block.Parameters[0]
	secondaryParams := block.Parameters[1:]
	expression := stripOptionalParentheses(expressionParam, errors)
	if expression == nil {
		return nil
	}

	match := forLoopExpressionPattern.FindStringSubmatch(*expression)
	if match == nil || len(match) < 3 || strings.TrimSpace(match[2]) == "" {
		*errors = append(*errors, util.NewParseError(
			expressionParam.SourceSpan(),
			"Cannot parse expression. For loop expression must match the pattern \"<identifier> of <expression>\"",
		))
		return nil
	}

	itemName := match[1]
	rawExpression := match[2]
	if allowedForLoopLetVariables[itemName] {
		*errors = append(*errors, util.NewParseError(
			expressionParam.SourceSpan(),
			"For loop item name cannot be one of "+strings.Join(sortedLoopLetVariables(), ", ")+".",
		))
	}

	// The first parameter contains the variable declaration and the expression
	variableName := strings.Split(expressionParam.Expression, " ")[0]
	variableSpan := util.NewParseSourceSpan(
		expressionParam.SourceSpan().Start,
		expressionParam.SourceSpan().Start.MoveBy(len(variableName)),
		nil,
		nil,
	)
	result := &ForLoopParameters{
		ItemName:   NewVariable(itemName, "$implicit", variableSpan, variableSpan, nil),
		TrackBy:    nil,
		Expression: parseBlockParameterToBinding(expressionParam, bindingParser, &rawExpression),
		Context:    []*Variable{},
	}

	// Add ambiently-available context variables
	for _, contextName := range sortedLoopLetVariables() {
		emptySpanAfterForBlockStart := util.NewParseSourceSpan(
			block.StartSourceSpan.End,
			block.StartSourceSpan.End,
			nil,
			nil,
		)
		result.Context = append(result.Context, NewVariable(
			contextName,
			contextName,
			emptySpanAfterForBlockStart,
			emptySpanAfterForBlockStart,
			nil,
		))
	}

	for _, param := range secondaryParams {
		letMatch := forLoopLetPattern.FindStringSubmatch(param.Expression)
		if letMatch != nil && len(letMatch) > 1 {
			variablesSpan := util.NewParseSourceSpan(
				param.SourceSpan().Start.MoveBy(len(letMatch[0])-len(letMatch[1])),
				param.SourceSpan().End,
				nil,
				nil,
			)
			parseLetParameter(
				param.SourceSpan(),
				letMatch[1],
				variablesSpan,
				itemName,
				&result.Context,
				errors,
			)
			continue
		}

		trackMatch := forLoopTrackPattern.FindStringSubmatch(param.Expression)
		if trackMatch != nil && len(trackMatch) > 1 {
			if result.TrackBy != nil {
				*errors = append(*errors, util.NewParseError(param.SourceSpan(), `For loop can only have one "track" expression`))
			} else {
				expr := parseBlockParameterToBinding(param, bindingParser, &trackMatch[1])
				if _, ok := expr.AST.(*expression_parser.EmptyExpr); ok {
					*errors = append(*errors, util.NewParseError(block.StartSourceSpan, `For loop must have a "track" expression`))
				}
				keywordSpan := util.NewParseSourceSpan(
					param.SourceSpan().Start,
					param.SourceSpan().Start.MoveBy(len("track")),
					nil,
					nil,
				)
				result.TrackBy = &TrackByExpression{
					Expression:  expr,
					KeywordSpan: keywordSpan,
				}
			}
			continue
		}

		*errors = append(*errors, util.NewParseError(param.SourceSpan(), `Unrecognized for loop parameter "`+param.Expression+`"`))
	}

	return result
}

// sortedLoopLetVariables returns the allowed `let` variables in a stable order
func sortedLoopLetVariables() []string {
	return []string{"$index", "$first", "$last", "$even", "$odd", "$count"}
}

// parseLetParameter parses the `let` parameter of a `for` loop block
func parseLetParameter(
	sourceSpan *util.ParseSourceSpan,
	expression string,
	span *util.ParseSourceSpan,
	loopItemName string,
	context *[]*Variable,
	errors *[]*util.ParseError,
) {
	parts := strings.Split(expression, ",")
	startSpan := span.Start
	for _, part := range parts {
		expressionParts := strings.Split(part, "=")
		var name string
		var variableName string
		if len(expressionParts) == 2 {
			name = strings.TrimSpace(expressionParts[0])
			variableName = strings.TrimSpace(expressionParts[1])
		}

		if len(name) == 0 || len(variableName) == 0 {
			*errors = append(*errors, util.NewParseError(
				sourceSpan,
				`Invalid for loop "let" parameter. Parameter should match the pattern "<name> = <variable name>"`,
			))
		} else if !allowedForLoopLetVariables[variableName] {
			*errors = append(*errors, util.NewParseError(
				sourceSpan,
				`Unknown "let" parameter variable "`+variableName+`". The allowed variables are: `+strings.Join(sortedLoopLetVariables(), ", "),
			))
		} else if name == loopItemName {
			*errors = append(*errors, util.NewParseError(
				sourceSpan,
				`Invalid for loop "let" parameter. Variable cannot be called "`+loopItemName+`"`,
			))
		} else {
			hasDuplicate := false
			for _, v := range *context {
				if v.Name == name {
					hasDuplicate = true
					break
				}
			}
			if hasDuplicate {
				*errors = append(*errors, util.NewParseError(sourceSpan, `Duplicate "let" parameter variable "`+variableName+`"`))
			} else {
				var keySpan *util.ParseSourceSpan
				keyMatch := charactersInSurroundingWhitespacePattern.FindStringSubmatch(expressionParts[0])
				if keyMatch != nil && len(keyMatch) >= 3 {
					keyLeadingWhitespace := keyMatch[1]
					keyName := keyMatch[2]
					keySpan = util.NewParseSourceSpan(
						startSpan.MoveBy(len(keyLeadingWhitespace)),
						startSpan.MoveBy(len(keyLeadingWhitespace)+len(keyName)),
						nil,
						nil,
					)
				} else {
					keySpan = span
				}

				var valueSpan *util.ParseSourceSpan
				valueMatch := charactersInSurroundingWhitespacePattern.FindStringSubmatch(expressionParts[1])
				if valueMatch != nil && len(valueMatch) >= 3 {
					valueLeadingWhitespace := valueMatch[1]
					implicit := valueMatch[2]
					valueSpan = util.NewParseSourceSpan(
						startSpan.MoveBy(len(expressionParts[0])+1+len(valueLeadingWhitespace)),
						startSpan.MoveBy(len(expressionParts[0])+1+len(valueLeadingWhitespace)+len(implicit)),
						nil,
						nil,
					)
				}
				var finalSourceSpan *util.ParseSourceSpan
				if valueSpan != nil {
					finalSourceSpan = util.NewParseSourceSpan(keySpan.Start, valueSpan.End, nil, nil)
				} else {
					finalSourceSpan = util.NewParseSourceSpan(keySpan.Start, keySpan.End, nil, nil)
				}
				*context = append(*context, NewVariable(name, variableName, finalSourceSpan, keySpan, valueSpan))
			}
		}
		startSpan = startSpan.MoveBy(len(part) + 1) // add 1 to move past the comma
	}
}

// validateIfSections checks that the shape of the sections attached to an `if` block is correct
func validateIfSections(sections []*ml_parser.Block) []*util.ParseError {
	errors := []*util.ParseError{}
	hasElse := false

	for i, section := range sections {
		if section.Name == "else" {
			if hasElse {
				errors = append(errors, util.NewParseError(section.StartSourceSpan, `Conditional can only have one "else" block`))
			} else if len(sections) > 1 && i < len(sections)-1 {
				errors = append(errors, util.NewParseError(section.StartSourceSpan, `"else" block must be last inside the conditional`))
			} else if len(section.Parameters) > 0 {
				errors = append(errors, util.NewParseError(section.StartSourceSpan, `"else" block cannot have parameters`))
			}
			hasElse = true
		} else if !elseIfPattern.MatchString(section.Name) {
			errors = append(errors, util.NewParseError(section.StartSourceSpan, `Unrecognized conditional block "`+section.Name+`"`))
		}
	}

	return errors
}

// validateSwitchBlock checks that the shape of a `switch` block is valid
func validateSwitchBlock(ast *ml_parser.Block) []*util.ParseError {
	errors := []*util.ParseError{}
	hasDefault := false

	if len(ast.Parameters) != 1 {
		errors = append(errors, util.NewParseError(ast.StartSourceSpan, "Switch block must have exactly one parameter"))
		return errors
	}

	// Only comments and empty text may appear between the switch and its cases
	for _, node := range ast.Children {
		if _, ok := node.(*ml_parser.Comment); ok {
			continue
		}
		if text, ok := node.(*ml_parser.Text); ok {
			if strings.TrimSpace(text.Value) == "" {
				continue
			}
		}
		errors = append(errors, util.NewParseError(node.SourceSpan(), `Switch block can only contain "case" and "default" blocks`))
	}

	for _, section := range ast.Sections {
		if section.Name != "case" && section.Name != "default" {
			errors = append(errors, util.NewParseError(section.SourceSpan(), `Switch block can only contain "case" and "default" blocks`))
			continue
		}

		if section.Name == "default" {
			if hasDefault {
				errors = append(errors, util.NewParseError(section.StartSourceSpan, "Switch block can only have one default block"))
			} else if len(section.Parameters) > 0 {
				errors = append(errors, util.NewParseError(section.StartSourceSpan, `"default" block cannot have parameters`))
			}
			hasDefault = true
		} else if section.Name == "case" && len(section.Parameters) != 1 {
			errors = append(errors, util.NewParseError(section.StartSourceSpan, `"case" block must have exactly one parameter`))
		}
	}

	return errors
}

// parseBlockParameterToBinding parses a block parameter into a binding AST
func parseBlockParameterToBinding(
	ast *ml_parser.BlockParameter,
	bindingParser BindingParser,
	part *string,
) *expression_parser.ASTWithSource {
	var start int
	var end int

	if part != nil {
		// `LastIndex` is enough to find the start index of the expression
		start = strings.LastIndex(ast.Expression, *part)
		if start < 0 {
			start = 0
		}
		end = start + len(*part)
	} else {
		start = 0
		end = len(ast.Expression)
	}

	return bindingParser.ParseBinding(
		ast.Expression[start:end],
		ast.SourceSpan(),
		ast.SourceSpan().Start.Offset+start,
	)
}

// parseConditionalBlockParameters parses the parameters of a conditional block (`if` or `else if`)
func parseConditionalBlockParameters(
	block *ml_parser.Block,
	errors *[]*util.ParseError,
	bindingParser BindingParser,
) *ConditionalBlockParameters {
	if len(block.Parameters) == 0 {
		*errors = append(*errors, util.NewParseError(block.StartSourceSpan, "Conditional block does not have an expression"))
		return nil
	}

	expression := parseBlockParameterToBinding(block.Parameters[0], bindingParser, nil)
	var expressionAlias *Variable

	// Start from 1 since we processed the first parameter already
	for i := 1; i < len(block.Parameters); i++ {
		param := block.Parameters[i]
		aliasMatch := conditionalAliasPattern.FindStringSubmatch(param.Expression)

		// Conditionals only support an `as` parameter
		if aliasMatch == nil || len(aliasMatch) < 3 {
			*errors = append(*errors, util.NewParseError(
				param.SourceSpan(),
				`Unrecognized conditional parameter "`+param.Expression+`"`,
			))
		} else if block.Name != "if" && !elseIfPattern.MatchString(block.Name) {
			*errors = append(*errors, util.NewParseError(
				param.SourceSpan(),
				`"as" expression is only allowed on if and else if blocks`,
			))
		} else if expressionAlias != nil {
			*errors = append(*errors, util.NewParseError(param.SourceSpan(), `Conditional can only have one "as" expression`))
		} else {
			name := strings.TrimSpace(aliasMatch[2])
			if identifierPattern.MatchString(name) {
				variableStart := param.SourceSpan().Start.MoveBy(len(aliasMatch[1]))
				variableSpan := util.NewParseSourceSpan(variableStart, variableStart.MoveBy(len(name)), nil, nil)
				expressionAlias = NewVariable(name, name, variableSpan, variableSpan, nil)
			} else {
				*errors = append(*errors, util.NewParseError(param.SourceSpan(), `"as" expression must be a valid identifier`))
			}
		}
	}

	return &ConditionalBlockParameters{
		Expression:      expression.AST,
		ExpressionAlias: expressionAlias,
	}
}

// stripOptionalParentheses strips balanced outer parentheses from a control
// flow expression parameter
func stripOptionalParentheses(param *ml_parser.BlockParameter, errors *[]*util.ParseError) *string {
	expression := param.Expression
	openParens := 0
	start := 0
	end := len(expression) - 1

	for i := 0; i < len(expression); i++ {
		char := expression[i]
		if char == '(' {
			start = i + 1
			openParens++
		} else if util.IsWhitespace(int(char)) {
			continue
		} else {
			break
		}
	}

	if openParens == 0 {
		return &expression
	}

	for i := len(expression) - 1; i >= 0; i-- {
		char := expression[i]
		if char == ')' {
			end = i
			openParens--
			if openParens == 0 {
				break
			}
		} else if util.IsWhitespace(int(char)) {
			continue
		} else {
			break
		}
	}

	if openParens != 0 {
		*errors = append(*errors, util.NewParseError(param.SourceSpan(), "Unclosed parentheses in expression"))
		return nil
	}

	result := expression[start:end]
	return &result
}

// convertToR3Nodes converts visitor results back into template AST nodes
func convertToR3Nodes(results []interface{}) []Node {
	nodes := []Node{}
	for _, result := range results {
		if node, ok := result.(Node); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}
