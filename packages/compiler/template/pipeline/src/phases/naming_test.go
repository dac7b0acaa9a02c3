package phases_test

import (
	"testing"

	"tplc-go/packages/compiler/template/pipeline/ir"
	"tplc-go/packages/compiler/template/pipeline/src/compilation"
	"tplc-go/packages/compiler/template/pipeline/src/phases"
)

func strPtr(value string) *string {
	return &value
}

func expectFnName(t *testing.T, unit compilation.CompilationUnit, expected string) {
	t.Helper()
	if unit.GetFnName() == nil {
		t.Fatalf("expected function name %q, got none", expected)
	}
	if *unit.GetFnName() != expected {
		t.Errorf("function name = %q, want %q", *unit.GetFnName(), expected)
	}
}

func expectNamingPanic(t *testing.T, expected string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %q, got none", expected)
		}
		if msg, ok := r.(string); !ok || msg != expected {
			t.Errorf("panic = %v, want %q", r, expected)
		}
	}()
	fn()
}

func TestNaming_FunctionNames(t *testing.T) {
	t.Run("should name the root template function after the component", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		phases.NameFunctionsAndVariables(job)
		expectFnName(t, job.Root, "App_Template")
	})

	t.Run("should sanitize component names into identifiers", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("my-app", ir.CompatibilityModeNormal)
		phases.NameFunctionsAndVariables(job)
		expectFnName(t, job.Root, "my_app_Template")
	})

	t.Run("should name child view functions from their declaration slot", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		conditional := job.AllocateView(job.Root.Xref)
		plain := job.AllocateView(job.Root.Xref)

		conditionalOp := ir.NewTemplateOp(conditional.Xref, nil, "Conditional", nil)
		conditionalOp.Handle.AssignSlot(2)
		job.Root.Create.Push(conditionalOp)

		plainOp := ir.NewTemplateOp(plain.Xref, nil, "", nil)
		plainOp.Handle.AssignSlot(4)
		job.Root.Create.Push(plainOp)

		phases.NameFunctionsAndVariables(job)
		expectFnName(t, conditional, "App_Conditional_2_Template")
		expectFnName(t, plain, "App_4_Template")
	})

	t.Run("should name repeater views relative to the repeater slot", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		primary := job.AllocateView(job.Root.Xref)
		empty := job.AllocateView(job.Root.Xref)

		emptyXref := empty.Xref
		repeaterOp := ir.NewRepeaterCreateOp(primary.Xref, &emptyXref, nil, ir.NewLexicalReadExpr("item"), nil)
		repeaterOp.Handle.AssignSlot(5)
		job.Root.Create.Push(repeaterOp)

		phases.NameFunctionsAndVariables(job)
		expectFnName(t, primary, "App_For_6_Template")
		expectFnName(t, empty, "App_ForEmpty_7_Template")
	})

	t.Run("should name the host binding function", func(t *testing.T) {
		job := compilation.NewHostBindingCompilationJob("MyDir", ir.CompatibilityModeNormal)
		phases.NameFunctionsAndVariables(job)
		expectFnName(t, job.Root, "MyDir_HostBindings")
	})
}

func TestNaming_Listeners(t *testing.T) {
	t.Run("should name listener handlers from the view, tag and slot", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		target := job.AllocateXrefId()
		listener := ir.NewListenerOp(
			target, ir.NewSlotHandle(), "click", strPtr("my-button"),
			ir.NewLexicalReadExpr("go"), nil, nil, false, nil)
		listener.TargetSlot.AssignSlot(3)
		job.Root.Create.Push(listener)

		phases.NameFunctionsAndVariables(job)
		if listener.HandlerFnName == nil || *listener.HandlerFnName != "App_Template_my_button_click_3_listener" {
			t.Errorf("handler name = %v, want App_Template_my_button_click_3_listener", listener.HandlerFnName)
		}
	})

	t.Run("should fall back to the host tag when the listener has none", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		listener := ir.NewListenerOp(
			job.AllocateXrefId(), ir.NewSlotHandle(), "click", nil,
			ir.NewLexicalReadExpr("go"), nil, nil, false, nil)
		listener.TargetSlot.AssignSlot(1)
		job.Root.Create.Push(listener)

		phases.NameFunctionsAndVariables(job)
		if listener.HandlerFnName == nil || *listener.HandlerFnName != "App_Template_host_click_1_listener" {
			t.Errorf("handler name = %v, want App_Template_host_click_1_listener", listener.HandlerFnName)
		}
	})

	t.Run("should fold the animation phase into the listener name", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		listener := ir.NewListenerOp(
			job.AllocateXrefId(), ir.NewSlotHandle(), "fade", strPtr("div"),
			ir.NewLexicalReadExpr("go"), strPtr("done"), nil, false, nil)
		listener.TargetSlot.AssignSlot(2)
		job.Root.Create.Push(listener)

		phases.NameFunctionsAndVariables(job)
		if listener.Name != "@fade.done" {
			t.Errorf("listener name = %q, want @fade.done", listener.Name)
		}
		if listener.HandlerFnName == nil || *listener.HandlerFnName != "App_Template_div_animation_fade_done_2_listener" {
			t.Errorf("handler name = %v, want App_Template_div_animation_fade_done_2_listener", listener.HandlerFnName)
		}
	})

	t.Run("should name host listeners after the component", func(t *testing.T) {
		job := compilation.NewHostBindingCompilationJob("MyDir", ir.CompatibilityModeNormal)
		listener := ir.NewListenerOp(
			job.Root.Xref, nil, "click", nil,
			ir.NewLexicalReadExpr("go"), nil, nil, true, nil)
		job.Root.Create.Push(listener)

		phases.NameFunctionsAndVariables(job)
		if listener.HandlerFnName == nil || *listener.HandlerFnName != "MyDir_click_HostBindingHandler" {
			t.Errorf("handler name = %v, want MyDir_click_HostBindingHandler", listener.HandlerFnName)
		}
	})

	t.Run("should panic when a listener has no slot", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		listener := ir.NewListenerOp(
			job.AllocateXrefId(), ir.NewSlotHandle(), "click", nil,
			ir.NewLexicalReadExpr("go"), nil, nil, false, nil)
		job.Root.Create.Push(listener)

		expectNamingPanic(t, "AssertionError: expected a slot to be assigned", func() {
			phases.NameFunctionsAndVariables(job)
		})
	})
}

func TestNaming_Variables(t *testing.T) {
	t.Run("should name variables from a counter shared across kinds", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		contextXref := job.AllocateXrefId()
		itemXref := job.AllocateXrefId()
		savedXref := job.AllocateXrefId()

		contextVar := ir.NewContextVariable(job.Root.Xref)
		itemVar := ir.NewIdentifierVariable("item", false)
		savedVar := ir.NewSavedViewVariable(job.Root.Xref)
		job.Root.Update.Push(ir.NewVariableOp(contextXref, contextVar, ir.NewContextExpr(job.Root.Xref)))
		job.Root.Update.Push(ir.NewVariableOp(itemXref, itemVar, ir.NewLexicalReadExpr("item")))
		job.Root.Update.Push(ir.NewVariableOp(savedXref, savedVar, ir.NewContextExpr(job.Root.Xref)))

		phases.NameFunctionsAndVariables(job)
		if contextVar.GetName() == nil || *contextVar.GetName() != "ctx_r0" {
			t.Errorf("context variable name = %v, want ctx_r0", contextVar.GetName())
		}
		if itemVar.GetName() == nil || *itemVar.GetName() != "item_1" {
			t.Errorf("identifier variable name = %v, want item_1", itemVar.GetName())
		}
		if savedVar.GetName() == nil || *savedVar.GetName() != "_r2" {
			t.Errorf("saved view variable name = %v, want _r2", savedVar.GetName())
		}
	})

	t.Run("should give context variables of different views distinct names", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		child := job.AllocateView(job.Root.Xref)

		childOp := ir.NewTemplateOp(child.Xref, nil, "", nil)
		childOp.Handle.AssignSlot(1)
		job.Root.Create.Push(childOp)

		childCtx := ir.NewContextVariable(child.Xref)
		child.Update.Push(ir.NewVariableOp(job.AllocateXrefId(), childCtx, ir.NewContextExpr(child.Xref)))

		rootCtx := ir.NewContextVariable(job.Root.Xref)
		job.Root.Update.Push(ir.NewVariableOp(job.AllocateXrefId(), rootCtx, ir.NewContextExpr(job.Root.Xref)))

		phases.NameFunctionsAndVariables(job)

		// Child views are named while walking the creation list, before the
		// root's own update operations, so the child draws from the counter
		// first.
		if childCtx.GetName() == nil || *childCtx.GetName() != "ctx_r0" {
			t.Errorf("child context variable name = %v, want ctx_r0", childCtx.GetName())
		}
		if rootCtx.GetName() == nil || *rootCtx.GetName() != "ctx_r1" {
			t.Errorf("root context variable name = %v, want ctx_r1", rootCtx.GetName())
		}
	})

	t.Run("should resolve variable reads to the assigned names", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		itemXref := job.AllocateXrefId()
		job.Root.Update.Push(ir.NewVariableOp(itemXref, ir.NewIdentifierVariable("item", false), ir.NewLexicalReadExpr("item")))

		read := ir.NewReadVariableExpr(itemXref)
		job.Root.Update.Push(ir.NewPropertyOp(job.AllocateXrefId(), "title", ir.BindingKindProperty, read, nil))

		phases.NameFunctionsAndVariables(job)
		if read.Name == nil || *read.Name != "item_0" {
			t.Errorf("read name = %v, want item_0", read.Name)
		}
	})

	t.Run("should panic on a read of an undeclared variable", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		read := ir.NewReadVariableExpr(ir.XrefId(99))
		job.Root.Update.Push(ir.NewPropertyOp(job.AllocateXrefId(), "title", ir.BindingKindProperty, read, nil))

		expectNamingPanic(t, "AssertionError: variable 99 not yet named", func() {
			phases.NameFunctionsAndVariables(job)
		})
	})
}

func TestNaming_BindingNames(t *testing.T) {
	t.Run("should prefix animation bindings", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		property := ir.NewPropertyOp(job.AllocateXrefId(), "fade", ir.BindingKindAnimation, ir.NewLexicalReadExpr("state"), nil)
		job.Root.Update.Push(property)

		phases.NameFunctionsAndVariables(job)
		if property.Name != "@fade" {
			t.Errorf("property name = %q, want @fade", property.Name)
		}
	})

	t.Run("should hyphenate style property names", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)
		styleProp := ir.NewStylePropOp(job.AllocateXrefId(), "backgroundColor", ir.NewLexicalReadExpr("c"), nil, nil)
		customProp := ir.NewStylePropOp(job.AllocateXrefId(), "--myVar", ir.NewLexicalReadExpr("v"), nil, nil)
		job.Root.Update.Push(styleProp)
		job.Root.Update.Push(customProp)

		phases.NameFunctionsAndVariables(job)
		if styleProp.Name != "background-color" {
			t.Errorf("style prop name = %q, want background-color", styleProp.Name)
		}
		if customProp.Name != "--myVar" {
			t.Errorf("custom property name = %q, want --myVar", customProp.Name)
		}
	})

	t.Run("should leave assigned names unchanged on a second pass", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeNormal)

		property := ir.NewPropertyOp(job.AllocateXrefId(), "fade", ir.BindingKindAnimation, ir.NewLexicalReadExpr("state"), nil)
		job.Root.Update.Push(property)

		listener := ir.NewListenerOp(
			job.AllocateXrefId(), ir.NewSlotHandle(), "fade", strPtr("div"),
			ir.NewLexicalReadExpr("go"), strPtr("done"), nil, false, nil)
		listener.TargetSlot.AssignSlot(2)
		job.Root.Create.Push(listener)

		contextVar := ir.NewContextVariable(job.Root.Xref)
		job.Root.Update.Push(ir.NewVariableOp(job.AllocateXrefId(), contextVar, ir.NewContextExpr(job.Root.Xref)))

		phases.NameFunctionsAndVariables(job)
		fnName := *job.Root.GetFnName()
		propertyName := property.Name
		listenerName := listener.Name
		handlerName := *listener.HandlerFnName
		contextName := *contextVar.GetName()

		phases.NameFunctionsAndVariables(job)
		if *job.Root.GetFnName() != fnName {
			t.Errorf("second pass changed function name: %q -> %q", fnName, *job.Root.GetFnName())
		}
		if property.Name != propertyName {
			t.Errorf("second pass changed property name: %q -> %q", propertyName, property.Name)
		}
		if listener.Name != listenerName {
			t.Errorf("second pass changed listener name: %q -> %q", listenerName, listener.Name)
		}
		if *listener.HandlerFnName != handlerName {
			t.Errorf("second pass changed handler name: %q -> %q", handlerName, *listener.HandlerFnName)
		}
		if *contextVar.GetName() != contextName {
			t.Errorf("second pass changed context variable name: %q -> %q", contextName, *contextVar.GetName())
		}
	})

	t.Run("should strip !important in compatibility mode", func(t *testing.T) {
		job := compilation.NewComponentCompilationJob("App", ir.CompatibilityModeTemplateDefinitionBuilder)
		styleProp := ir.NewStylePropOp(job.AllocateXrefId(), "width!important", ir.NewLexicalReadExpr("w"), nil, nil)
		classProp := ir.NewClassPropOp(job.AllocateXrefId(), "highlighted!important", ir.NewLexicalReadExpr("h"), nil)
		job.Root.Update.Push(styleProp)
		job.Root.Update.Push(classProp)

		phases.NameFunctionsAndVariables(job)
		if styleProp.Name != "width" {
			t.Errorf("style prop name = %q, want width", styleProp.Name)
		}
		if classProp.Name != "highlighted" {
			t.Errorf("class prop name = %q, want highlighted", classProp.Name)
		}
	})
}
