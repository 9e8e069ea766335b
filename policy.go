package rt

// SetterPolicy is the storage-ownership mode of an association, packed into
// the low byte of a Policy.
type SetterPolicy uint8

// Setter policies. The value 3 is deliberate: both Retain and Copy set bit
// 0, so "the setter owns a reference" is a single bit test.
const (
	SetAssign SetterPolicy = 0
	SetRetain SetterPolicy = 1
	SetCopy   SetterPolicy = 3
)

// GetterPolicy is the return-value mode of an association, packed into the
// high byte of a Policy.
type GetterPolicy uint8

// Getter policies.
const (
	// GetRaw returns the stored value with no extra retain.
	GetRaw GetterPolicy = 0
	// GetRetain retains the value under the table lock before returning it;
	// the caller owns the extra reference.
	GetRetain GetterPolicy = 1
	// GetAutorelease retains the value and enqueues the retain on the
	// caller's autorelease pool, so the caller can use the result without
	// owning a reference outright.
	GetAutorelease GetterPolicy = 2
)

// Policy packs a SetterPolicy into bits 0..7 and a GetterPolicy into bits
// 8..15 of a single machine word, mirroring how a real object runtime packs
// association behavior into one argument.
type Policy uint16

// MakePolicy packs a setter and getter mode into a Policy.
func MakePolicy(setter SetterPolicy, getter GetterPolicy) Policy {
	return Policy(setter) | Policy(getter)<<8
}

// Setter returns the policy's storage-ownership mode.
func (p Policy) Setter() SetterPolicy {
	return SetterPolicy(p & 0xFF)
}

// Getter returns the policy's return-value mode.
func (p Policy) Getter() GetterPolicy {
	return GetterPolicy(p >> 8)
}

// SetterRetains reports whether the setter holds a strong reference to the
// stored value, i.e. whether bit 0 of the policy is set.
func (p Policy) SetterRetains() bool {
	return p&1 != 0
}

// Common policy combinations, named after their usual host-runtime
// counterparts.
const (
	PolicyAssign          = Policy(SetAssign) | Policy(GetRaw)<<8
	PolicyRetainNonatomic = Policy(SetRetain) | Policy(GetRaw)<<8
	PolicyCopyNonatomic   = Policy(SetCopy) | Policy(GetRaw)<<8
	PolicyRetain          = Policy(SetRetain) | Policy(GetAutorelease)<<8
	PolicyCopy            = Policy(SetCopy) | Policy(GetAutorelease)<<8
)
