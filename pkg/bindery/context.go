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
	"strings"
)

// Context is an ordered mapping from declaration identity to declaration,
// representing the set of declarations visible at some tree position or scope
// boundary.  Insertion order is significant: when two visible declarations
// share a display name, the earlier entry takes display precedence, but both
// remain distinct entries (same-named declarations are never merged).
type Context struct {
	// Map declaration identities to indices within the entries array.
	ids map[*Value]uint
	// The visible declarations, in insertion order.
	entries []*Value
}

// NewContext constructs an initially empty context.
func NewContext() *Context {
	return &Context{make(map[*Value]uint), nil}
}

// Declare appends a declaration to this context, unless the identical
// declaration is already present (e.g. because it is visible through more than
// one scope-inheritance path).  Returns true if the context changed.
func (p *Context) Declare(value *Value) bool {
	if _, ok := p.ids[value]; ok {
		return false
	}
	//
	p.ids[value] = uint(len(p.entries))
	p.entries = append(p.entries, value)
	//
	return true
}

// Has checks whether the given declaration is visible in this context.
func (p *Context) Has(value *Value) bool {
	_, ok := p.ids[value]
	return ok
}

// Len returns the number of visible declarations.
func (p *Context) Len() uint {
	return uint(len(p.entries))
}

// Entries returns all visible declarations, in precedence order.  The
// returned slice must not be mutated.
func (p *Context) Entries() []*Value {
	return p.entries
}

// Lookup returns all visible declarations with the given display name, in
// precedence order.
func (p *Context) Lookup(name string) []*Value {
	var matches []*Value
	//
	for _, value := range p.entries {
		if value.Name() == name {
			matches = append(matches, value)
		}
	}
	//
	return matches
}

// LookupFirst returns the visible declaration with display precedence for the
// given name, or nil if no declaration with that name is visible.
func (p *Context) LookupFirst(name string) *Value {
	for _, value := range p.entries {
		if value.Name() == name {
			return value
		}
	}
	//
	return nil
}

func (p *Context) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, value := range p.entries {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(value.Name())
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
