// Package rt implements the two bookkeeping tables a dynamic object runtime
// needs beyond its object header: the associative-reference table, which
// attaches arbitrary side-data to an object under a retain/copy/assign
// policy, and the zeroing weak-reference table, which tracks weak pointer
// slots and nulls them out when their referent dies.
//
// Both tables are pointer-keyed open-addressed hash tables tuned for the
// access patterns of a retain-count runtime: rare, low-contention writes,
// and a requirement that the retain, copy and release calls made when a
// value is stored or dropped never run while a table lock is held. Package rt does not implement an object
// model, a garbage collector, or method dispatch; it is a library consumed
// by a host runtime through the Host and Class interfaces in host.go.
package rt
