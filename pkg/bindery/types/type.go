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
package types

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Expr represents a type expression attached to a declaration or use site
// within the block tree.  A type expression is either a type variable, a
// concrete base type, or a function type.  Type variables are unified by
// substitution: once a variable has been instantiated, dereferencing the
// expression follows the substitution chain to its current best-known form.
type Expr interface {
	// Deref resolves this expression to its current best-known top-level
	// form by following the substitution chain.  This is pure (i.e. performs
	// no mutation whatsoever).
	Deref() Expr
	// DeepDeref resolves this expression through its entire structure.  For
	// example, deeply dereferencing a function type dereferences both its
	// argument and return positions.  Again, this is pure.
	DeepDeref() Expr
	// Produce a string representation of this type expression.
	String() string
	// Collect the identifiers of all uninstantiated type variables reachable
	// from this expression.
	free(vars *bitset.BitSet)
}

// FreeVars returns the set of uninstantiated type variables reachable from the
// given expression, keyed by variable identifier.
func FreeVars(expr Expr) *bitset.BitSet {
	vars := bitset.New(64)
	expr.free(vars)
	//
	return vars
}

// ============================================================================
// Var
// ============================================================================

// Var is a type variable.  Variables have identity (a unique identifier
// allocated by their owning arena) and are unified by substitution: an
// uninstantiated variable stands for an as-yet unknown type, whilst an
// instantiated variable is indistinguishable (under dereferencing) from its
// substitution target.
type Var struct {
	// Unique identifier of this variable within its arena.
	id uint
	// Substitution target, or nil if this variable is uninstantiated.
	inst Expr
}

// Id returns the unique identifier of this type variable.
func (p *Var) Id() uint {
	return p.id
}

// IsInstantiated checks whether or not this variable currently has a
// substitution target.
func (p *Var) IsInstantiated() bool {
	return p.inst != nil
}

// Deref resolves this variable to its current best-known top-level form.
func (p *Var) Deref() Expr {
	if p.inst == nil {
		return p
	}
	//
	return p.inst.Deref()
}

// DeepDeref resolves this variable through its entire structure.
func (p *Var) DeepDeref() Expr {
	if p.inst == nil {
		return p
	}
	//
	return p.inst.DeepDeref()
}

func (p *Var) free(vars *bitset.BitSet) {
	if p.inst != nil {
		p.inst.free(vars)
		return
	}
	//
	vars.Set(p.id)
}

func (p *Var) String() string {
	if p.inst != nil {
		return p.inst.String()
	}
	//
	return fmt.Sprintf("'%s", VarName(p.id))
}

// VarName returns the conventional source-level name for a type variable with
// the given identifier (i.e. 'a, 'b, ..., 'z, 'a1, 'b1, etc).
func VarName(id uint) string {
	letter := rune('a' + (id % 26))
	//
	if id < 26 {
		return string(letter)
	}
	//
	return fmt.Sprintf("%c%d", letter, id/26)
}

// ============================================================================
// Base
// ============================================================================

// Base is a concrete base type, such as a number or text type.  Base types
// have no internal structure and unify only with themselves (or with type
// variables).
type Base struct {
	name string
}

// NewBase constructs a concrete base type with the given name.
func NewBase(name string) *Base {
	return &Base{name}
}

// Name returns the name of this base type.
func (p *Base) Name() string {
	return p.name
}

// Deref resolves this expression to its current best-known top-level form
// which, for a base type, is always itself.
func (p *Base) Deref() Expr {
	return p
}

// DeepDeref resolves this expression through its entire structure which, for a
// base type, is always itself.
func (p *Base) DeepDeref() Expr {
	return p
}

func (p *Base) free(*bitset.BitSet) {
	// Base types contain no variables.
}

func (p *Base) String() string {
	return p.name
}

// ============================================================================
// Fun
// ============================================================================

// Fun is a function type with a single argument position and a single return
// position.  Functions of higher arity are expressed by currying.
type Fun struct {
	arg Expr
	ret Expr
}

// NewFun constructs a function type with the given argument and return
// positions.
func NewFun(arg Expr, ret Expr) *Fun {
	return &Fun{arg, ret}
}

// Arg returns the argument position of this function type.
func (p *Fun) Arg() Expr {
	return p.arg
}

// Ret returns the return position of this function type.
func (p *Fun) Ret() Expr {
	return p.ret
}

// Deref resolves this expression to its current best-known top-level form
// which, for a function type, is always itself.
func (p *Fun) Deref() Expr {
	return p
}

// DeepDeref resolves this expression through its entire structure, producing a
// function type whose argument and return positions are fully dereferenced.
func (p *Fun) DeepDeref() Expr {
	return &Fun{p.arg.DeepDeref(), p.ret.DeepDeref()}
}

func (p *Fun) free(vars *bitset.BitSet) {
	p.arg.free(vars)
	p.ret.free(vars)
}

func (p *Fun) String() string {
	// Bracket the argument when it is itself a function type.
	if _, ok := p.arg.Deref().(*Fun); ok {
		return fmt.Sprintf("(%s) -> %s", p.arg, p.ret)
	}
	//
	return fmt.Sprintf("%s -> %s", p.arg, p.ret)
}
