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

	"github.com/pkg/errors"
)

// ErrMismatch signals an attempt to unify two type expressions which have
// conflicting concrete assignments (e.g. a number type against a text type, or
// a base type against a function type).  This is an expected, recoverable
// condition: the caller simply refuses whatever edit triggered the
// unification.
var ErrMismatch = errors.New("type mismatch")

// IsMismatch checks whether a given error arose from a unification mismatch.
func IsMismatch(err error) bool {
	return errors.Cause(err) == ErrMismatch
}

// Arena allocates type variables and tracks every unification performed over
// them.  Each successful call to Unify is recorded as a single reversible
// edge, such that Disconnect can later reverse exactly that edge (and nothing
// else).  This is what allows a reference to release its binding without
// disturbing type constraints contributed by unrelated connections.
//
// Note that substitution chains are deliberately not path-compressed: exact
// reversal requires that a variable instantiated by one edge is returned to
// precisely its prior (uninstantiated) state when that edge is removed.
type Arena struct {
	// Identifier for the next fresh variable.
	counter uint
	// Edges recorded against their operand pair.  Unifying the same pair
	// twice stacks two edges, which are then reversed in LIFO order.
	edges map[edge][]*episode
}

// edge identifies a unification by its original operand pair.
type edge struct {
	a Expr
	b Expr
}

// episode records the variables instantiated by one unification, in the order
// they were instantiated.  Since only uninstantiated variables are ever given
// a substitution target, reversal simply clears them again.
type episode struct {
	vars []*Var
}

func (p *episode) undo() {
	for i := len(p.vars) - 1; i >= 0; i-- {
		p.vars[i].inst = nil
	}
	//
	p.vars = nil
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{0, make(map[edge][]*episode)}
}

// Fresh allocates a fresh (uninstantiated) type variable.
func (p *Arena) Fresh() *Var {
	v := &Var{p.counter, nil}
	p.counter++
	//
	return v
}

// Unify merges the constraints of two type expressions.  Variable-to-anything
// instantiates the variable; base-against-base requires equal names;
// function-against-function recurses over argument and return positions.  On
// failure all instantiations made by this call are undone before returning,
// leaving the substitution state exactly as it was.  On success the edge is
// recorded so that it can subsequently be reversed via Disconnect.
func (p *Arena) Unify(a Expr, b Expr) error {
	ep := &episode{}
	//
	if err := p.unify(a, b, ep); err != nil {
		ep.undo()
		return err
	}
	//
	key := edge{a, b}
	p.edges[key] = append(p.edges[key], ep)
	//
	return nil
}

// Disconnect reverses exactly one prior Unify(a, b) edge.  Where the same
// operand pair was unified more than once, the most recent edge is reversed.
// Calling this without a matching prior unification indicates corrupted
// bookkeeping on the caller's part, and panics.
func (p *Arena) Disconnect(a Expr, b Expr) {
	key := edge{a, b}
	eps := p.edges[key]
	//
	if len(eps) == 0 {
		panic(fmt.Sprintf("disconnect of %s / %s without matching unification", a, b))
	}
	// Pop most recent edge
	ep := eps[len(eps)-1]
	//
	if len(eps) == 1 {
		delete(p.edges, key)
	} else {
		p.edges[key] = eps[:len(eps)-1]
	}
	//
	ep.undo()
}

func (p *Arena) unify(a Expr, b Expr, ep *episode) error {
	a = a.Deref()
	b = b.Deref()
	// Identical expressions always unify.
	if a == b {
		return nil
	}
	// Variable on either side instantiates that variable.
	if v, ok := a.(*Var); ok {
		return p.instantiate(v, b, ep)
	} else if v, ok := b.(*Var); ok {
		return p.instantiate(v, a, ep)
	}
	//
	switch at := a.(type) {
	case *Base:
		if bt, ok := b.(*Base); ok && at.name == bt.name {
			return nil
		}
	case *Fun:
		if bt, ok := b.(*Fun); ok {
			if err := p.unify(at.arg, bt.arg, ep); err != nil {
				return err
			}
			//
			return p.unify(at.ret, bt.ret, ep)
		}
	}
	//
	return errors.Wrapf(ErrMismatch, "%s vs %s", a, b)
}

// Instantiate a variable with a given (dereferenced) target, having first
// checked the variable does not occur within the target.  Permitting such a
// cycle would make dereferencing diverge.
func (p *Arena) instantiate(v *Var, target Expr, ep *episode) error {
	if occurs(v, target) {
		return errors.Wrapf(ErrMismatch, "'%s occurs in %s", VarName(v.id), target)
	}
	//
	v.inst = target
	ep.vars = append(ep.vars, v)
	//
	return nil
}

func occurs(v *Var, expr Expr) bool {
	switch t := expr.Deref().(type) {
	case *Var:
		return t == v
	case *Fun:
		return occurs(v, t.arg) || occurs(v, t.ret)
	}
	//
	return false
}
