package compilation

import (
	"tplc-go/packages/compiler/template/pipeline/ir"
)

// CompilationJobKind represents the kind of compilation job
type CompilationJobKind int

const (
	// CompilationJobKindTmpl is a template compilation
	CompilationJobKindTmpl CompilationJobKind = iota
	// CompilationJobKindHost is a host binding compilation
	CompilationJobKindHost
	// CompilationJobKindBoth indicates logic that applies to both kinds
	CompilationJobKindBoth
)

// CompilationJob carries the state shared by every kind of compilation:
// the component being compiled, the compatibility mode and the xref id
// allocator. A job results in one or more template functions when complete.
type CompilationJob struct {
	ComponentName string
	Compatibility ir.CompatibilityMode
	Kind          CompilationJobKind
	nextXrefId    ir.XrefId
}

// NewCompilationJob creates a new CompilationJob
func NewCompilationJob(componentName string, compatibility ir.CompatibilityMode) *CompilationJob {
	return &CompilationJob{
		ComponentName: componentName,
		Compatibility: compatibility,
		Kind:          CompilationJobKindBoth,
	}
}

// AllocateXrefId generates a new unique ir.XrefId in this job
func (j *CompilationJob) AllocateXrefId() ir.XrefId {
	id := j.nextXrefId
	j.nextXrefId++
	return id
}

// GetJob returns the shared job state
func (j *CompilationJob) GetJob() *CompilationJob {
	return j
}

// GetFnSuffix returns a short string used to distinguish this kind of job
// in generated function names
func (j *CompilationJob) GetFnSuffix() string {
	if j.Kind == CompilationJobKindHost {
		return "HostBindings"
	}
	return "Template"
}

// Job is the interface shared by the concrete compilation job kinds
type Job interface {
	GetJob() *CompilationJob
	GetUnits() []CompilationUnit
	GetRoot() CompilationUnit
	// GetFnSuffix returns a short string used to distinguish this kind of
	// job in generated function names
	GetFnSuffix() string
}

// CompilationUnit is a single unit compiled into a template function, such
// as a view or a host binding
type CompilationUnit interface {
	GetXref() ir.XrefId
	GetJob() *CompilationJob
	GetCreate() *ir.OpList
	GetUpdate() *ir.OpList
	GetFnName() *string
	SetFnName(name string)
}

// ComponentCompilationJob is compilation-in-progress of a whole component's
// template, including the root view and any embedded views
type ComponentCompilationJob struct {
	*CompilationJob
	Root  *ViewCompilationUnit
	Views map[ir.XrefId]*ViewCompilationUnit
	// ContentSelectors lists the selector of every projection slot in the
	// template, in document order
	ContentSelectors []string
}

// NewComponentCompilationJob creates a new ComponentCompilationJob with its
// root view allocated
func NewComponentCompilationJob(componentName string, compatibility ir.CompatibilityMode) *ComponentCompilationJob {
	job := &ComponentCompilationJob{
		CompilationJob: NewCompilationJob(componentName, compatibility),
		Views:          make(map[ir.XrefId]*ViewCompilationUnit),
	}
	job.Kind = CompilationJobKindTmpl
	root := NewViewCompilationUnit(job, job.AllocateXrefId(), nil)
	job.Root = root
	job.Views[root.Xref] = root
	return job
}

// AllocateView adds a ViewCompilationUnit for a new embedded view
func (j *ComponentCompilationJob) AllocateView(parent ir.XrefId) *ViewCompilationUnit {
	unit := NewViewCompilationUnit(j, j.AllocateXrefId(), &parent)
	j.Views[unit.Xref] = unit
	return unit
}

// GetUnits returns all view compilation units in this job
func (j *ComponentCompilationJob) GetUnits() []CompilationUnit {
	units := make([]CompilationUnit, 0, len(j.Views))
	for _, unit := range j.Views {
		units = append(units, unit)
	}
	return units
}

// GetRoot returns the root view compilation unit
func (j *ComponentCompilationJob) GetRoot() CompilationUnit {
	return j.Root
}

// ViewCompilationUnit is compilation-in-progress of an individual view
// within a template
type ViewCompilationUnit struct {
	Job    *ComponentCompilationJob
	Xref   ir.XrefId
	Parent *ir.XrefId
	Create *ir.OpList
	Update *ir.OpList
	FnName *string
	// ContextVariables maps context variable names available in this view
	// to the field of the context object they read
	ContextVariables map[string]string
	Decls            *int
	Vars             *int
}

// NewViewCompilationUnit creates a new ViewCompilationUnit
func NewViewCompilationUnit(job *ComponentCompilationJob, xref ir.XrefId, parent *ir.XrefId) *ViewCompilationUnit {
	return &ViewCompilationUnit{
		Job:              job,
		Xref:             xref,
		Parent:           parent,
		Create:           ir.NewOpList(),
		Update:           ir.NewOpList(),
		ContextVariables: make(map[string]string),
	}
}

// GetXref returns the xref id of this view
func (v *ViewCompilationUnit) GetXref() ir.XrefId {
	return v.Xref
}

// GetJob returns the shared job state
func (v *ViewCompilationUnit) GetJob() *CompilationJob {
	return v.Job.CompilationJob
}

// GetCreate returns the creation operations list
func (v *ViewCompilationUnit) GetCreate() *ir.OpList {
	return v.Create
}

// GetUpdate returns the update operations list
func (v *ViewCompilationUnit) GetUpdate() *ir.OpList {
	return v.Update
}

// GetFnName returns the assigned function name, or nil before naming
func (v *ViewCompilationUnit) GetFnName() *string {
	return v.FnName
}

// SetFnName sets the function name
func (v *ViewCompilationUnit) SetFnName(name string) {
	v.FnName = &name
}

// HostBindingCompilationJob is compilation-in-progress of a host binding,
// with a single unit for the host element
type HostBindingCompilationJob struct {
	*CompilationJob
	Root *HostBindingCompilationUnit
}

// NewHostBindingCompilationJob creates a new HostBindingCompilationJob
func NewHostBindingCompilationJob(componentName string, compatibility ir.CompatibilityMode) *HostBindingCompilationJob {
	job := &HostBindingCompilationJob{
		CompilationJob: NewCompilationJob(componentName, compatibility),
	}
	job.Kind = CompilationJobKindHost
	job.Root = NewHostBindingCompilationUnit(job)
	return job
}

// GetUnits returns the single host binding unit
func (j *HostBindingCompilationJob) GetUnits() []CompilationUnit {
	return []CompilationUnit{j.Root}
}

// GetRoot returns the host binding unit
func (j *HostBindingCompilationJob) GetRoot() CompilationUnit {
	return j.Root
}

// HostBindingCompilationUnit is the compilation unit for host bindings
type HostBindingCompilationUnit struct {
	Job    *HostBindingCompilationJob
	Xref   ir.XrefId
	Create *ir.OpList
	Update *ir.OpList
	FnName *string
}

// NewHostBindingCompilationUnit creates a new HostBindingCompilationUnit
func NewHostBindingCompilationUnit(job *HostBindingCompilationJob) *HostBindingCompilationUnit {
	return &HostBindingCompilationUnit{
		Job:    job,
		Xref:   job.AllocateXrefId(),
		Create: ir.NewOpList(),
		Update: ir.NewOpList(),
	}
}

// GetXref returns the xref id of this unit
func (h *HostBindingCompilationUnit) GetXref() ir.XrefId {
	return h.Xref
}

// GetJob returns the shared job state
func (h *HostBindingCompilationUnit) GetJob() *CompilationJob {
	return h.Job.CompilationJob
}

// GetCreate returns the creation operations list
func (h *HostBindingCompilationUnit) GetCreate() *ir.OpList {
	return h.Create
}

// GetUpdate returns the update operations list
func (h *HostBindingCompilationUnit) GetUpdate() *ir.OpList {
	return h.Update
}

// GetFnName returns the assigned function name, or nil before naming
func (h *HostBindingCompilationUnit) GetFnName() *string {
	return h.FnName
}

// SetFnName sets the function name
func (h *HostBindingCompilationUnit) SetFnName(name string) {
	h.FnName = &name
}
