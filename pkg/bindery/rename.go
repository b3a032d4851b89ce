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

// CanRenameTo checks whether renaming the given variable would leave every
// affected resolution point unambiguous.  The check is recomputed from the
// current tree structure on every call, since structure may well have changed
// since the last one.
//
// For a declaration, the rename is refused if any of its current references
// would then see a second declaration under the new name, or if any reference
// bound to a different declaration of that name can see this one (either way,
// two distinct same-named declarations would become indistinguishable at a
// shared resolution point; this deliberately includes visibility through any
// workbench-inheritance path).
//
// For a reference, this is a pure name-availability check: some declaration
// with the new name must be visible from the reference's position.
func (p *Environment) CanRenameTo(variable Variable, newName string) bool {
	switch v := variable.(type) {
	case *Value:
		return p.canRenameValue(v, newName)
	case *Reference:
		ctx := p.AllVisibleVariables(PositionOf(v.Node()))
		return ctx.LookupFirst(newName) != nil
	default:
		panic("unknown variable kind")
	}
}

func (p *Environment) canRenameValue(value *Value, newName string) bool {
	if newName == value.Name() {
		return true
	}
	// First check: no reference of this declaration may see another
	// declaration under the new name.
	for _, ref := range value.References() {
		ctx := p.AllVisibleVariables(PositionOf(ref.Node()))
		//
		for _, other := range ctx.Lookup(newName) {
			if other != value {
				return false
			}
		}
	}
	// Second check: no reference bound to another declaration of the new name
	// may see this declaration.
	ambiguous := false
	//
	p.forEachReference(func(ref *Reference) {
		other := ref.BoundValue()
		//
		if other == nil || other == value || other.Name() != newName {
			return
		}
		//
		if p.AllVisibleVariables(PositionOf(ref.Node())).Has(value) {
			ambiguous = true
		}
	})
	//
	return !ambiguous
}

// Rename renames a variable, provided doing so is safe.  Renaming a
// declaration renames its entire bound group with it.  Renaming a bound
// reference releases the existing binding first and then resolves afresh
// under the new name.  Returns false (before any mutation) if the rename was
// refused.
func (p *Environment) Rename(variable Variable, newName string) bool {
	if !p.CanRenameTo(variable, newName) {
		return false
	}
	//
	switch v := variable.(type) {
	case *Value:
		log.Debugf("renaming \"%s\" to \"%s\" (%d references)", v.Name(), newName, v.ReferenceCount())
		v.rename(newName)
	case *Reference:
		v.Release(p.arena)
		v.name = newName
		p.ResolveReference(v, PositionOf(v.Node()), true)
	}
	//
	return true
}
