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

// IsCyclicReference checks whether a reference's binding is cyclic with
// respect to the subtree rooted at the given node: that is, whether its bound
// declaration's declaring node lies within that subtree's ownership chain.
// Detaching or duplicating such a subtree would leave the binding dangling (or
// duplicated incorrectly), so it must be cleared first.  An unresolved
// reference is never cyclic.
func IsCyclicReference(ref *Reference, root Node) bool {
	value := ref.BoundValue()
	//
	if value == nil {
		return false
	}
	//
	return IsWithin(value.Node(), root)
}

// ClearCyclicReferencesOnBlock forcibly releases every reference within the
// subtree rooted at the given node whose binding is cyclic with respect to
// that subtree.  The editor must call this before detaching or duplicating
// the subtree.  References outside the subtree are left untouched, as are
// references within it whose declarations live elsewhere.  Returns the number
// of bindings released.
func (p *Environment) ClearCyclicReferencesOnBlock(root Node) uint {
	var cleared uint
	//
	Visit(root, func(node Node) {
		user, ok := node.(VariableUser)
		//
		if !ok {
			return
		}
		//
		for _, ref := range user.References() {
			if IsCyclicReference(ref, root) {
				ref.Release(p.arena)
				cleared++
			}
		}
	})
	//
	if cleared > 0 {
		log.Debugf("cleared %d cyclic references", cleared)
	}
	//
	return cleared
}
