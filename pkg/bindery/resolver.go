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
	log "github.com/sirupsen/logrus"
)

// ResolveReference determines whether some declaration visible at the given
// position can legally capture the given reference.  Eligibility requires a
// matching display name; self-reference through a non-recursive declaration is
// excluded by construction, since such a declaration does not scope over its
// own value subtree, and a detached subtree inherits nothing beyond its own
// root.  When several eligible declarations share the name, the innermost in
// scope order wins.
//
// When bind is set and an eligible declaration exists, the binding is
// performed as a side effect (reference-set insertion plus type unification);
// a unification failure leaves the reference unresolved and returns false, so
// the caller can refuse the triggering edit.  When bind is clear this is a
// pure visibility check.
//
// The core never self-triggers on tree mutation: the editor must call this for
// every reference potentially affected by a structural edit.
func (p *Environment) ResolveReference(ref *Reference, pos Position, bind bool) bool {
	value := p.AllVisibleVariables(pos).LookupFirst(ref.Name())
	//
	if value == nil {
		return false
	}
	//
	if !bind || ref.BoundValue() == value {
		return true
	}
	//
	if err := ref.BindTo(value, p.arena); err != nil {
		// Under a matching name, only unification can fail here.
		log.Debugf("binding \"%s\" failed: %v", ref.Name(), err)
		//
		return false
	}
	//
	log.Debugf("bound \"%s\" (%d references)", value.Name(), value.ReferenceCount())
	//
	return true
}

// Rebind re-evaluates an already-placed reference after a structural edit,
// rebinding or unbinding as needed.  If the innermost eligible declaration at
// the given position is the one already held, the binding is kept untouched.
// Otherwise any existing binding is released and, where possible, a new one is
// made.  Returns true if the reference ends up bound.
func (p *Environment) Rebind(ref *Reference, pos Position) bool {
	value := p.AllVisibleVariables(pos).LookupFirst(ref.Name())
	//
	if value != nil && ref.BoundValue() == value {
		return true
	}
	//
	ref.Release(p.arena)
	//
	if value == nil {
		return false
	}
	//
	if err := ref.BindTo(value, p.arena); err != nil {
		log.Debugf("rebinding \"%s\" failed: %v", ref.Name(), err)
		//
		return false
	}
	//
	return true
}

// ResolveAll re-evaluates every reference within the subtree rooted at the
// given node, as required after that subtree is attached, detached or moved.
// Each reference is resolved against its own position.  Returns the number of
// references left unresolved.
func (p *Environment) ResolveAll(root Node) uint {
	var unresolved uint
	//
	Visit(root, func(node Node) {
		if user, ok := node.(VariableUser); ok {
			for _, ref := range user.References() {
				if !p.Rebind(ref, PositionOf(ref.Node())) {
					unresolved++
				}
			}
		}
	})
	//
	return unresolved
}
