package phases

import (
	"fmt"
	"strings"
	"unicode"

	"tplc-go/packages/compiler/template/pipeline/ir"
	"tplc-go/packages/compiler/template/pipeline/src/compilation"
	"tplc-go/packages/compiler/util"
)

// NameFunctionsAndVariables generates names for functions and variables
// across all units of a job. This includes propagating those names into any
// ir.ReadVariableExpr reads of those variables, so that the reads can be
// emitted correctly.
func NameFunctionsAndVariables(job compilation.Job) {
	state := &namingState{}
	compatibility := job.GetJob().Compatibility == ir.CompatibilityModeTemplateDefinitionBuilder
	addNamesToView(job.GetRoot(), job.GetJob().ComponentName, state, compatibility)
}

// namingState holds the counter shared by every variable named within a
// job, which is what guarantees name uniqueness across views.
type namingState struct {
	index int
}

func addNamesToView(unit compilation.CompilationUnit, baseName string, state *namingState, compatibility bool) {
	if unit.GetFnName() == nil {
		unit.SetFnName(util.SanitizeIdentifier(fmt.Sprintf("%s_%s", baseName, unit.GetJob().GetFnSuffix())))
	}

	// Track the names assigned to variables in the view. They are
	// propagated into reads of those variables afterwards.
	varNames := make(map[ir.XrefId]string)

	for op := unit.GetCreate().Head().Next(); op.GetKind() != ir.OpKindListEnd; op = op.Next() {
		processOpForNaming(op, unit, baseName, varNames, state, compatibility)
	}
	for op := unit.GetUpdate().Head().Next(); op.GetKind() != ir.OpKindListEnd; op = op.Next() {
		processOpForNaming(op, unit, baseName, varNames, state, compatibility)
	}

	// Having named all variables declared in the view, push those names
	// into the reads of those variables.
	resolveReads := func(expr ir.Expression, flags ir.VisitorContextFlag) {
		if readVar, ok := expr.(*ir.ReadVariableExpr); ok && readVar.Name == nil {
			name, exists := varNames[readVar.Xref]
			if !exists {
				panic(fmt.Sprintf("AssertionError: variable %d not yet named", readVar.Xref))
			}
			readVar.Name = &name
		}
	}
	for op := unit.GetCreate().Head().Next(); op.GetKind() != ir.OpKindListEnd; op = op.Next() {
		ir.VisitExpressionsInOp(op, resolveReads)
	}
	for op := unit.GetUpdate().Head().Next(); op.GetKind() != ir.OpKindListEnd; op = op.Next() {
		ir.VisitExpressionsInOp(op, resolveReads)
	}
}

func processOpForNaming(
	op ir.Op,
	unit compilation.CompilationUnit,
	baseName string,
	varNames map[ir.XrefId]string,
	state *namingState,
	compatibility bool,
) {
	fnName := unit.GetFnName()

	switch op.GetKind() {
	case ir.OpKindProperty:
		propertyOp := op.(*ir.PropertyOp)
		if propertyOp.BindingKind == ir.BindingKindAnimation && !strings.HasPrefix(propertyOp.Name, "@") {
			propertyOp.Name = "@" + propertyOp.Name
		}

	case ir.OpKindHostProperty:
		hostPropertyOp := op.(*ir.HostPropertyOp)
		if hostPropertyOp.BindingKind == ir.BindingKindAnimation && !strings.HasPrefix(hostPropertyOp.Name, "@") {
			hostPropertyOp.Name = "@" + hostPropertyOp.Name
		}

	case ir.OpKindListener:
		listenerOp := op.(*ir.ListenerOp)
		if listenerOp.HandlerFnName != nil {
			return
		}
		if !listenerOp.HostListener && (listenerOp.TargetSlot == nil || listenerOp.TargetSlot.Slot == nil) {
			panic("AssertionError: expected a slot to be assigned")
		}
		animation := ""
		if listenerOp.IsAnimationListener {
			listenerOp.Name = fmt.Sprintf("@%s.%s", listenerOp.Name, *listenerOp.AnimationPhase)
			animation = "animation"
		}
		var name string
		if listenerOp.HostListener {
			name = fmt.Sprintf("%s_%s%s_HostBindingHandler", baseName, animation, listenerOp.Name)
		} else {
			tag := "host"
			if listenerOp.Tag != nil {
				tag = strings.ReplaceAll(*listenerOp.Tag, "-", "_")
			}
			name = fmt.Sprintf("%s_%s_%s%s_%d_listener",
				*fnName, tag, animation, listenerOp.Name, *listenerOp.TargetSlot.Slot)
		}
		sanitized := util.SanitizeIdentifier(name)
		listenerOp.HandlerFnName = &sanitized

	case ir.OpKindVariable:
		varOp := op.(*ir.VariableOp)
		varNames[varOp.Xref] = getVariableName(varOp.Variable, state)

	case ir.OpKindRepeaterCreate:
		repeaterOp := op.(*ir.RepeaterCreateOp)
		viewUnit, ok := unit.(*compilation.ViewCompilationUnit)
		if !ok {
			panic("AssertionError: must be compiling a component template")
		}
		if repeaterOp.Handle.Slot == nil {
			panic("AssertionError: expected a slot to be assigned")
		}
		slot := *repeaterOp.Handle.Slot
		if repeaterOp.EmptyView != nil {
			if emptyView := viewUnit.Job.Views[*repeaterOp.EmptyView]; emptyView != nil {
				// The empty view function is two slots past the repeater
				// (the metadata occupies the first slot).
				addNamesToView(emptyView,
					fmt.Sprintf("%s_%sEmpty_%d", baseName, repeaterOp.FunctionNameSuffix, slot+2),
					state, compatibility)
			}
		}
		if primaryView := viewUnit.Job.Views[repeaterOp.Xref]; primaryView != nil {
			addNamesToView(primaryView,
				fmt.Sprintf("%s_%s_%d", baseName, repeaterOp.FunctionNameSuffix, slot+1),
				state, compatibility)
		}

	case ir.OpKindTemplate:
		templateOp := op.(*ir.TemplateOp)
		viewUnit, ok := unit.(*compilation.ViewCompilationUnit)
		if !ok {
			panic("AssertionError: must be compiling a component template")
		}
		childView := viewUnit.Job.Views[templateOp.Xref]
		if childView == nil {
			return
		}
		if templateOp.Handle.Slot == nil {
			panic("AssertionError: expected a slot to be assigned")
		}
		suffix := ""
		if templateOp.FunctionNameSuffix != "" {
			suffix = "_" + templateOp.FunctionNameSuffix
		}
		addNamesToView(childView,
			fmt.Sprintf("%s%s_%d", baseName, suffix, *templateOp.Handle.Slot),
			state, compatibility)

	case ir.OpKindStyleProp:
		stylePropOp := op.(*ir.StylePropOp)
		stylePropOp.Name = normalizeStylePropName(stylePropOp.Name)
		if compatibility {
			stylePropOp.Name = stripImportant(stylePropOp.Name)
		}

	case ir.OpKindClassProp:
		if compatibility {
			classPropOp := op.(*ir.ClassPropOp)
			classPropOp.Name = stripImportant(classPropOp.Name)
		}
	}
}

// getVariableName returns the name assigned to a semantic variable, naming
// it from the shared counter when it has none yet
func getVariableName(variable ir.SemanticVariable, state *namingState) string {
	if variable.GetName() == nil {
		switch variable.GetKind() {
		case ir.SemanticVariableKindContext:
			variable.SetName(fmt.Sprintf("ctx_r%d", state.index))
		case ir.SemanticVariableKindIdentifier:
			identifierVar := variable.(*ir.IdentifierVariable)
			variable.SetName(fmt.Sprintf("%s_%d", identifierVar.Identifier, state.index))
		default:
			variable.SetName(fmt.Sprintf("_r%d", state.index))
		}
		state.index++
	}
	return *variable.GetName()
}

// normalizeStylePropName hyphenates a style property name unless it is a
// CSS custom property
func normalizeStylePropName(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	return hyphenate(name)
}

// stripImportant strips `!important` out of a style or class name
func stripImportant(name string) string {
	if idx := strings.Index(name, "!important"); idx > -1 {
		return name[:idx]
	}
	return name
}

func hyphenate(value string) string {
	var result strings.Builder
	for i, r := range value {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(rune(value[i-1])) {
			result.WriteRune('-')
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}
