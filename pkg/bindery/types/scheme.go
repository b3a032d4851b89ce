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
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Scheme is a type expression generalised over a set of type variables.  A
// scheme arises from a let (or let-rec) declaration: the variables left
// unconstrained once the declaration's own subtree has been typed are
// quantified, such that every use site can instantiate them afresh.  This is
// what gives let-polymorphism, since two use sites of the same declaration can
// then take unrelated concrete types.
type Scheme struct {
	// Identifiers of the quantified variables.
	vars *bitset.BitSet
	// Body over which those variables are quantified.
	body Expr
}

// Generalize computes the scheme of a given type expression at a declaration
// boundary.  The quantified variables are those free in the expression but not
// free outside the boundary (i.e. not mentioned by any enclosing declaration's
// type).
func Generalize(expr Expr, boundary *bitset.BitSet) Scheme {
	free := FreeVars(expr)
	//
	if boundary != nil {
		free.InPlaceDifference(boundary)
	}
	//
	return Scheme{free, expr}
}

// MonoScheme wraps a type expression as a scheme with no quantified variables.
// Instantiating such a scheme always yields the underlying expression itself.
func MonoScheme(expr Expr) Scheme {
	return Scheme{bitset.New(0), expr}
}

// Count returns the number of quantified variables in this scheme.
func (p Scheme) Count() uint {
	return p.vars.Count()
}

// Generalized checks whether the variable with the given identifier is
// quantified by this scheme.
func (p Scheme) Generalized(id uint) bool {
	return p.vars.Test(id)
}

// Body returns the (shared, ungeneralised) body of this scheme.
func (p Scheme) Body() Expr {
	return p.body
}

// Instantiate produces a fresh copy of this scheme's body in which every
// quantified variable has been replaced by a fresh variable drawn from the
// given arena.  Unquantified structure is shared with the body, such that
// constraints on it continue to apply across all use sites.
func (p Scheme) Instantiate(arena *Arena) Expr {
	if p.vars.Count() == 0 {
		return p.body
	}
	//
	return p.instantiate(p.body, make(map[uint]*Var), arena)
}

func (p Scheme) instantiate(expr Expr, fresh map[uint]*Var, arena *Arena) Expr {
	switch t := expr.Deref().(type) {
	case *Var:
		if !p.vars.Test(t.id) {
			return t
		}
		// Quantified variable, so replace with its fresh counterpart.
		if v, ok := fresh[t.id]; ok {
			return v
		}
		//
		v := arena.Fresh()
		fresh[t.id] = v
		//
		return v
	case *Fun:
		return NewFun(p.instantiate(t.arg, fresh, arena), p.instantiate(t.ret, fresh, arena))
	default:
		return t
	}
}

func (p Scheme) String() string {
	var builder strings.Builder
	//
	for id, ok := p.vars.NextSet(0); ok; id, ok = p.vars.NextSet(id + 1) {
		builder.WriteString("'")
		builder.WriteString(VarName(id))
		builder.WriteString(" . ")
	}
	//
	builder.WriteString(p.body.String())
	//
	return builder.String()
}
