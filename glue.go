package rt

// DefaultAssociations is the process-wide associative-reference table. Like
// the table it backs, it has no teardown; AssociationsInit exists only for
// API parity with a host runtime's bootstrap sequence; DefaultAssociations
// is already statically constructed and ready to use without it.
var DefaultAssociations = NewAssociationTable()

// DefaultWeakTable is the process-wide zeroing weak-reference table. Unlike
// DefaultAssociations it carries no lock of its own; whatever the host
// passes as its Host implementation is responsible for serializing access
// exactly as WeakTable's doc comment describes.
var DefaultWeakTable = NewWeakTable()

// AssociationsInit performs one-shot initialization of the global
// association table storage. DefaultAssociations is already safe to use at
// package init time; this call exists so a host's bootstrap sequence has an
// explicit step to call, matching spec §6's provided interface list.
func AssociationsInit() {}

// SetAssociated stores value under key on object per policy in
// DefaultAssociations, or removes the association if value is zero.
func SetAssociated(h Host, object Addr, key Key, value Addr, policy Policy) {
	DefaultAssociations.Set(h, object, key, value, policy)
}

// GetAssociated returns the value associated with key on object in
// DefaultAssociations, or zero if there is none.
func GetAssociated(h Host, object Addr, key Key) Addr {
	return DefaultAssociations.Get(h, object, key)
}

// RemoveAllAssociations erases every association on object in
// DefaultAssociations. The object-header machinery calls this from dealloc
// for any object whose header bit indicates it may have associations.
func RemoveAllAssociations(h Host, object Addr) {
	DefaultAssociations.RemoveAll(h, object)
}
