// Package hir lowers a syntax.Node CST into Nova's item tree and per-method
// bodies (spec §4.6, §4.7): a shallow, stable-id-addressed view of a
// compilation unit's declarations, plus arena-indexed statement/expression
// graphs for method and initializer bodies. This is the layer resolve,
// types, flow and typeck all query instead of re-walking the CST.
package hir

import "nova/syntax"

// Arena is an append-only store indexed by the position values were
// allocated at, mirroring original_source's nova-hir Arena<T> (itself
// grounded on the same shape rust-analyzer uses for its HIR bodies).
type Arena[T any] struct {
	items []T
}

// Alloc appends v and returns the index it was stored at.
func (a *Arena[T]) Alloc(v T) uint32 {
	a.items = append(a.items, v)
	return uint32(len(a.items) - 1)
}

// Get returns the value stored at id. id must have come from Alloc on this
// same arena.
func (a *Arena[T]) Get(id uint32) T { return a.items[id] }

// Len reports how many values have been allocated.
func (a *Arena[T]) Len() int { return len(a.items) }

// All returns every allocated value in allocation order.
func (a *Arena[T]) All() []T { return a.items }

// ExprId, StmtId and LocalId index into a Body's arenas.
type ExprId uint32
type StmtId uint32
type LocalId uint32

// ClassId, InterfaceId, EnumId, RecordId, AnnotationId index into an
// ItemTree's per-kind declaration slices. MethodId and FieldId do the same
// for members, which may belong to any of the declaration kinds above.
type ClassId uint32
type InterfaceId uint32
type EnumId uint32
type RecordId uint32
type AnnotationId uint32
type MethodId uint32
type FieldId uint32

// AstId anchors a HIR item back to the CST node it was lowered from, so
// diagnostics can recover a precise span and the IDE-facing layers can map
// an item back to source without re-walking the tree.
type AstId struct {
	Node *syntax.Node
}
