package rt

// ClassDescriptor is the data shape cmd/genclasses compiles a YAML class
// manifest into. It carries three class-metadata bits: the Class interface
// exposes ForbidsAssociatedObjects and UsesCustomRR, while
// HasAllowsWeakReference is read directly off the descriptor.
type ClassDescriptor struct {
	Name                     string
	ForbidsAssociatedObjects bool
	UsesCustomRR             bool
	HasAllowsWeakReference   bool
}

// StaticClass adapts a ClassDescriptor to the Class interface, so generated
// manifest data can be handed directly to code that expects a Class.
type StaticClass struct {
	Descriptor ClassDescriptor
}

// NewStaticClass wraps a ClassDescriptor as a Class.
func NewStaticClass(d ClassDescriptor) *StaticClass {
	return &StaticClass{Descriptor: d}
}

// Name implements Class.
func (c *StaticClass) Name() string { return c.Descriptor.Name }

// ForbidsAssociatedObjects implements Class.
func (c *StaticClass) ForbidsAssociatedObjects() bool { return c.Descriptor.ForbidsAssociatedObjects }

// UsesCustomRR implements Class.
func (c *StaticClass) UsesCustomRR() bool { return c.Descriptor.UsesCustomRR }
