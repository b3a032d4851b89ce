// Copyright Tinkerlang Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package bindery

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/tinkerlang/bindery/pkg/bindery/types"
	"github.com/tinkerlang/bindery/pkg/util"
)

// Variable is the capability shared by the two kinds of binding site: a
// declaration (Value) and a use (Reference).  Either kind has a display name,
// a type expression and a position in the block tree.
type Variable interface {
	// Name returns the display name.  For an unresolved reference this is a
	// temporary label; for anything bound it matches the declaration.
	Name() string
	// Type returns the type expression attached to this site.
	Type() types.Expr
	// Node returns the owning node.
	Node() Node
	// Field returns the owning input slot on that node.
	Field() string
	// IsDeclaration distinguishes declarations from references.
	IsDeclaration() bool
	// AllBoundVariables returns the full connected group reachable from this
	// site: a declaration together with every reference bound to it.  For an
	// unbound reference the group is just the reference itself.
	AllBoundVariables() []Variable
}

// ============================================================================
// Value
// ============================================================================

// Value is a declaration site: a named binding introduced by a let, let-rec or
// lambda-parameter block.  A value exclusively owns its reference set, which
// contains exactly those references whose bound value is this one.  All
// mutation of that set goes through Reference.BindTo and Reference.Release;
// nothing else may touch it.
type Value struct {
	// Display name of the declared variable.
	name string
	// Node declaring this value.
	node Node
	// Input slot (on the declaring node) which owns this value.
	field string
	// Type expression of the declaration.
	typ types.Expr
	// References currently bound to this value, in binding order.
	refs []*Reference
	// Indicates whether this declaration's own scope includes itself (i.e.
	// let-rec).
	recursive bool
	// Generalised type scheme, once finalised.
	scheme util.Option[types.Scheme]
}

// NewValue constructs a declaration with a given display name, owning
// node/slot and type expression.
func NewValue(name string, node Node, field string, typ types.Expr) *Value {
	return &Value{name, node, field, typ, nil, false, util.None[types.Scheme]()}
}

// Name returns the display name of this declaration.
func (p *Value) Name() string {
	return p.name
}

// Node returns the declaring node.
func (p *Value) Node() Node {
	return p.node
}

// Field returns the input slot owning this declaration.
func (p *Value) Field() string {
	return p.field
}

// Type returns the type expression of this declaration.
func (p *Value) Type() types.Expr {
	return p.typ
}

// IsDeclaration implementation for the Variable interface.
func (p *Value) IsDeclaration() bool {
	return true
}

// IsRecursive checks whether this declaration is visible within its own value
// subtree (i.e. was declared let-rec).
func (p *Value) IsRecursive() bool {
	return p.recursive
}

// SetRecursive updates the recursive flag of this declaration.
func (p *Value) SetRecursive(recursive bool) {
	p.recursive = recursive
}

// ReferenceCount returns the number of references currently bound to this
// value.
func (p *Value) ReferenceCount() uint {
	return uint(len(p.refs))
}

// References returns the references currently bound to this value, in binding
// order.  The returned slice must not be mutated.
func (p *Value) References() []*Reference {
	return p.refs
}

// Scheme returns this declaration's generalised type scheme, if it has been
// finalised.
func (p *Value) Scheme() util.Option[types.Scheme] {
	return p.scheme
}

// Finalise generalises this declaration's type at its boundary, producing the
// scheme which subsequent bindings instantiate afresh per use site.  The
// boundary holds the identifiers of type variables already constrained outside
// this declaration (and hence not quantifiable); it may be nil.
func (p *Value) Finalise(boundary *bitset.BitSet) {
	p.scheme = util.Some(types.Generalize(p.typ, boundary))
}

// AllBoundVariables returns this value together with every reference bound to
// it.
func (p *Value) AllBoundVariables() []Variable {
	group := make([]Variable, 0, len(p.refs)+1)
	group = append(group, p)
	//
	for _, ref := range p.refs {
		group = append(group, ref)
	}
	//
	return group
}

// Dispose forcibly releases every reference currently holding this value.
// This must be called before the declaring node itself is disposed, such that
// no reference survives pointing at a dead declaration.
func (p *Value) Dispose(arena *types.Arena) {
	for len(p.refs) > 0 {
		p.refs[len(p.refs)-1].Release(arena)
	}
}

// Rename this declaration (without any safety checking, which is the
// responsibility of Environment.Rename).  Every bound reference is renamed
// with it, keeping the bind-time name invariant intact.
func (p *Value) rename(name string) {
	p.name = name
	//
	for _, ref := range p.refs {
		ref.name = name
	}
}

func (p *Value) String() string {
	return fmt.Sprintf("%s : %s", p.name, p.typ)
}

// ============================================================================
// Reference
// ============================================================================

// Reference is a use site: a named occurrence of a variable which is either
// unresolved (displaying its temporary label) or bound to exactly one value.
// A reference holds a non-owning pointer to its value; the value holds the
// back-reference.  Both sides are kept consistent by routing every change
// through BindTo and Release.
type Reference struct {
	// Display name; a temporary label until bound.
	name string
	// Node holding this reference.
	node Node
	// Input slot (on the holding node) which owns this reference.
	field string
	// Type expression of the use site.
	typ types.Expr
	// Bound value, or nil when unresolved.
	value *Value
	// Exact operand against which typ was unified at bind time.  Retained so
	// that Release can reverse precisely that edge.
	unified types.Expr
}

// NewReference constructs an unresolved use site with a given temporary name,
// owning node/slot and type expression.
func NewReference(name string, node Node, field string, typ types.Expr) *Reference {
	return &Reference{name, node, field, typ, nil, nil}
}

// Name returns the display name of this reference.
func (p *Reference) Name() string {
	return p.name
}

// Node returns the node holding this reference.
func (p *Reference) Node() Node {
	return p.node
}

// Field returns the input slot owning this reference.
func (p *Reference) Field() string {
	return p.field
}

// Type returns the type expression of this use site.
func (p *Reference) Type() types.Expr {
	return p.typ
}

// IsDeclaration implementation for the Variable interface.
func (p *Reference) IsDeclaration() bool {
	return false
}

// IsBound checks whether this reference currently holds a value.
func (p *Reference) IsBound() bool {
	return p.value != nil
}

// BoundValue returns the value this reference is bound to, or nil when
// unresolved.
func (p *Reference) BoundValue() *Value {
	return p.value
}

// AllBoundVariables returns the full connected group reachable from this
// reference.
func (p *Reference) AllBoundVariables() []Variable {
	if p.value != nil {
		return p.value.AllBoundVariables()
	}
	//
	return []Variable{p}
}

// BindTo binds this reference to the given value.  The name check, the
// reference-set insertion and the type unification happen as one unit: if
// unification fails the insertion is rolled back and the reference is left
// exactly as it was.  Binding a reference which is already bound to a
// different value indicates broken editor sequencing, and panics.  Binding to
// the value already held is a no-op.
func (p *Reference) BindTo(value *Value, arena *types.Arena) error {
	if p.value == value {
		return nil
	} else if p.value != nil {
		panic(fmt.Sprintf("reference \"%s\" already bound", p.name))
	}
	// Name check.
	if p.name != value.name {
		return errors.Wrapf(ErrNameMismatch, "\"%s\" vs \"%s\"", p.name, value.name)
	}
	// Declarations carrying a scheme are instantiated afresh per use site;
	// anything else (e.g. a lambda parameter) is unified against directly.
	target := value.typ
	if value.scheme.HasValue() {
		target = value.scheme.Unwrap().Instantiate(arena)
	}
	// Insert into the reference set, then unify.  A failed unification must
	// not leave dangling membership behind.
	value.refs = append(value.refs, p)
	//
	if err := arena.Unify(p.typ, target); err != nil {
		value.refs = value.refs[:len(value.refs)-1]
		return err
	}
	//
	p.value = value
	p.unified = target
	//
	return nil
}

// Release reverts this reference to its unresolved state: the reference-set
// entry is removed and the bind-time unification edge is reversed, as one
// unit.  Releasing an unresolved reference is a no-op.  The display name is
// retained as the temporary label.
func (p *Reference) Release(arena *types.Arena) {
	if p.value == nil {
		return
	}
	// Remove the back-reference.
	refs := p.value.refs
	index := -1
	//
	for i, ref := range refs {
		if ref == p {
			index = i
			break
		}
	}
	// Missing membership means the two sides of the binding have diverged.
	if index < 0 {
		panic(fmt.Sprintf("reference \"%s\" missing from its value's reference set", p.name))
	}
	//
	p.value.refs = append(refs[:index], refs[index+1:]...)
	// Reverse exactly the edge created at bind time.
	arena.Disconnect(p.typ, p.unified)
	//
	p.value = nil
	p.unified = nil
}

func (p *Reference) String() string {
	if p.value == nil {
		return fmt.Sprintf("%s?", p.name)
	}
	//
	return fmt.Sprintf("%s : %s", p.name, p.typ)
}
