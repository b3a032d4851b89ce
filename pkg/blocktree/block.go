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
package blocktree

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	log "github.com/sirupsen/logrus"

	"github.com/tinkerlang/bindery/pkg/bindery"
	"github.com/tinkerlang/bindery/pkg/bindery/types"
)

// Common base types of the block language.
var (
	// NumType is the concrete number type.
	NumType = types.NewBase("Num")
	// TextType is the concrete text type.
	TextType = types.NewBase("Text")
	// BoolType is the concrete boolean type.
	BoolType = types.NewBase("Bool")
)

// Kind distinguishes the block shapes understood by this tree.
type Kind uint8

const (
	// KindLet declares a variable over a body (slots: value, body).
	KindLet Kind = iota
	// KindLambda abstracts over a parameter (slot: body).
	KindLambda
	// KindApply applies a function to an argument (slots: fn, arg).
	KindApply
	// KindVar is a use site of a variable.
	KindVar
	// KindLiteral is a constant of some concrete base type.
	KindLiteral
)

// Slot names used by the block shapes above.
const (
	// SlotValue holds a let-declaration's bound expression.
	SlotValue = "value"
	// SlotBody holds the subtree a declaration scopes over.
	SlotBody = "body"
	// SlotFn holds the function position of an application.
	SlotFn = "fn"
	// SlotArg holds the argument position of an application.
	SlotArg = "arg"
)

// Block is an in-memory element of the editor's tree: it has zero or more
// typed input slots and one typed output.  Structural edits (Connect,
// Disconnect, Dispose) drive the binding core's notification points exactly
// as a real editor must: re-resolving affected references, clearing cyclic
// references ahead of a detach, and releasing everything on disposal.
type Block struct {
	kind Kind
	env  *bindery.Environment
	// Tree adjacency.
	parent      *Block
	parentField string
	// Input slot names, in slot order.
	slots []string
	// Expected type per input slot.
	slotTypes map[string]types.Expr
	// Connected children, keyed by slot.
	conns map[string]*Block
	// Output type of this block.
	out types.Expr
	// Declarations carried by this block (let and lambda shapes).
	values []*bindery.Value
	// References carried by this block (var shape).
	refs []*bindery.Reference
}

func newBlock(env *bindery.Environment, kind Kind, slots ...string) *Block {
	return &Block{
		kind:      kind,
		env:       env,
		slots:     slots,
		slotTypes: make(map[string]types.Expr),
		conns:     make(map[string]*Block),
	}
}

// NewLet constructs a let (or let-rec) block declaring a variable of the
// given name.  The declared variable scopes over the body slot and, when
// recursive, over the value slot as well.  The block's output is its body.
func NewLet(env *bindery.Environment, name string, recursive bool) *Block {
	block := newBlock(env, KindLet, SlotValue, SlotBody)
	vartype := env.Arena().Fresh()
	value := bindery.NewValue(name, block, SlotValue, vartype)
	value.SetRecursive(recursive)
	//
	block.values = []*bindery.Value{value}
	block.slotTypes[SlotValue] = vartype
	block.slotTypes[SlotBody] = env.Arena().Fresh()
	block.out = block.slotTypes[SlotBody]
	//
	return block
}

// NewLambda constructs a lambda block declaring a parameter of the given
// name, scoping over the body slot.  The block's output is a function type
// from the parameter to the body.
func NewLambda(env *bindery.Environment, param string) *Block {
	block := newBlock(env, KindLambda, SlotBody)
	paramtype := env.Arena().Fresh()
	bodytype := env.Arena().Fresh()
	//
	block.values = []*bindery.Value{bindery.NewValue(param, block, SlotBody, paramtype)}
	block.slotTypes[SlotBody] = bodytype
	block.out = types.NewFun(paramtype, bodytype)
	//
	return block
}

// NewApply constructs an application block whose fn slot expects a function
// from the arg slot's type to the block's output type.
func NewApply(env *bindery.Environment) *Block {
	block := newBlock(env, KindApply, SlotFn, SlotArg)
	argtype := env.Arena().Fresh()
	rettype := env.Arena().Fresh()
	//
	block.slotTypes[SlotFn] = types.NewFun(argtype, rettype)
	block.slotTypes[SlotArg] = argtype
	block.out = rettype
	//
	return block
}

// NewVar constructs a variable use site with the given (temporary) name.
func NewVar(env *bindery.Environment, name string) *Block {
	block := newBlock(env, KindVar)
	block.out = env.Arena().Fresh()
	block.refs = []*bindery.Reference{bindery.NewReference(name, block, "", block.out)}
	//
	return block
}

// NewLiteral constructs a constant block of the given concrete base type.
func NewLiteral(env *bindery.Environment, datatype *types.Base) *Block {
	block := newBlock(env, KindLiteral)
	block.out = datatype
	//
	return block
}

// Kind returns the shape of this block.
func (p *Block) Kind() Kind {
	return p.kind
}

// Parent implementation for the bindery.Node interface.
func (p *Block) Parent() bindery.Node {
	if p.parent == nil {
		return nil
	}
	//
	return p.parent
}

// ParentField implementation for the bindery.Node interface.
func (p *Block) ParentField() string {
	return p.parentField
}

// Children implementation for the bindery.Node interface.
func (p *Block) Children() []bindery.Node {
	var children []bindery.Node
	//
	for _, slot := range p.slots {
		if child, ok := p.conns[slot]; ok {
			children = append(children, child)
		}
	}
	//
	return children
}

// Declarations implementation for the bindery.VariableSource interface.
func (p *Block) Declarations() []*bindery.Value {
	return p.values
}

// ScopesOver implementation for the bindery.VariableSource interface.  A let
// scopes its variable over its body and, when recursive, its value subtree; a
// lambda scopes its parameter over its body.
func (p *Block) ScopesOver(value *bindery.Value, field string) bool {
	switch p.kind {
	case KindLet:
		return field == SlotBody || (field == SlotValue && value.IsRecursive())
	case KindLambda:
		return field == SlotBody
	default:
		return false
	}
}

// References implementation for the bindery.VariableUser interface.
func (p *Block) References() []*bindery.Reference {
	return p.refs
}

// Reference returns the use site carried by a var block, or nil for any other
// shape.
func (p *Block) Reference() *bindery.Reference {
	if len(p.refs) == 0 {
		return nil
	}
	//
	return p.refs[0]
}

// Declaration returns the value declared by a let or lambda block, or nil for
// any other shape.
func (p *Block) Declaration() *bindery.Value {
	if len(p.values) == 0 {
		return nil
	}
	//
	return p.values[0]
}

// Type returns this block's output type.
func (p *Block) Type() types.Expr {
	return p.out
}

// Connection returns the block connected into the given slot, or nil.
func (p *Block) Connection(field string) *Block {
	return p.conns[field]
}

// Connect plugs a root block into the given input slot of this block.  The
// slot's expected type is unified with the child's output; on a mismatch the
// connection is refused and nothing changes.  On success every reference in
// the attached subtree is re-resolved against its new surroundings.
func (p *Block) Connect(field string, child *Block) error {
	slotType, ok := p.slotTypes[field]
	//
	if !ok {
		panic(fmt.Sprintf("block has no slot \"%s\"", field))
	} else if p.conns[field] != nil {
		panic(fmt.Sprintf("slot \"%s\" already connected", field))
	} else if child.parent != nil {
		panic("cannot connect a block which is already connected")
	}
	//
	if err := p.env.Arena().Unify(slotType, child.out); err != nil {
		log.Debugf("connection into \"%s\" refused: %v", field, err)
		return err
	}
	//
	p.conns[field] = child
	child.parent = p
	child.parentField = field
	// Newly visible declarations may now capture references in the attached
	// subtree.
	p.env.ResolveAll(child)
	//
	return nil
}

// Disconnect detaches the block connected into the given slot, returning it
// as a free-standing tree.  Bindings which would dangle across the new
// boundary are cleared on both sides, and surviving references in the
// detached subtree are re-resolved.
func (p *Block) Disconnect(field string) *Block {
	child := p.conns[field]
	//
	if child == nil {
		return nil
	}
	// Clear bindings from outside the subtree onto declarations within it.
	for _, value := range bindery.BlockContext(child).Entries() {
		releaseForeign(value, child, p.env)
	}
	// Clear bindings within the subtree onto declarations within it; those
	// still valid once detached are restored by the re-resolution below.
	p.env.ClearCyclicReferencesOnBlock(child)
	// Structural detach.
	delete(p.conns, field)
	child.parent = nil
	child.parentField = ""
	// Reverse the connection-time type edge.
	p.env.Arena().Disconnect(p.slotTypes[field], child.out)
	// Bindings from within the subtree onto outside declarations are no
	// longer visible; re-resolving clears them.
	p.env.ResolveAll(child)
	//
	return child
}

// Dispose releases every binding site in this block's subtree and detaches it
// from its parent.  Declarations are disposed first, which forces all their
// holders (inside the subtree or not) to release.
func (p *Block) Dispose() {
	if p.parent != nil {
		p.parent.Disconnect(p.parentField)
	}
	//
	bindery.Visit(p, func(node bindery.Node) {
		block := node.(*Block)
		//
		for _, value := range block.values {
			value.Dispose(p.env.Arena())
		}
		//
		for _, ref := range block.refs {
			ref.Release(p.env.Arena())
		}
	})
}

// Finalise generalises the declaration carried by a let block, quantifying
// every type variable not already constrained by an enclosing declaration.
// This is what gives references bound afterwards their own instantiations
// (i.e. let-polymorphism); call it once the value subtree is in place.
func (p *Block) Finalise() {
	value := p.Declaration()
	//
	if value == nil || p.kind != KindLet {
		panic("only let blocks carry a generalisable declaration")
	}
	// Boundary: variables already constrained by enclosing declarations.
	boundary := bitset.New(64)
	//
	for _, outer := range p.env.AllVisibleVariables(bindery.PositionOf(p)).Entries() {
		if outer != value {
			boundary.InPlaceUnion(types.FreeVars(outer.Type()))
		}
	}
	//
	value.Finalise(boundary)
	log.Debugf("finalised \"%s\" as %s", value.Name(), value.Scheme().Unwrap())
}

// releaseForeign releases every reference to a value which lies outside the
// subtree being detached.
func releaseForeign(value *bindery.Value, root bindery.Node, env *bindery.Environment) {
	// Snapshot, since releasing mutates the reference set.
	refs := make([]*bindery.Reference, len(value.References()))
	copy(refs, value.References())
	//
	for _, ref := range refs {
		if !bindery.IsWithin(ref.Node(), root) {
			ref.Release(env.Arena())
		}
	}
}

func (p *Block) String() string {
	switch p.kind {
	case KindLet:
		return fmt.Sprintf("(let %s)", p.Declaration().Name())
	case KindLambda:
		return fmt.Sprintf("(lambda %s)", p.Declaration().Name())
	case KindApply:
		return "(apply)"
	case KindVar:
		return fmt.Sprintf("(var %s)", p.Reference().Name())
	default:
		return p.out.String()
	}
}
