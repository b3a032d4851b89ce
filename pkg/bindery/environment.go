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

	"github.com/tinkerlang/bindery/pkg/bindery/types"
)

// Environment ties together the shared type-variable arena, the top-level
// trees registered by the editor, and any workbenches opened over them.  The
// editor owns its trees; the environment merely holds read-only registrations
// so that visibility queries and whole-workspace scans (e.g. for rename
// safety) know where to look.
type Environment struct {
	// Shared substitution state for every type expression in this workspace.
	arena *types.Arena
	// Top-level trees of the main editor, in registration order.
	roots []Node
	// Workbench-private tree roots, mapped to their owning workbench.
	benches map[Node]*Workbench
}

// NewEnvironment constructs an empty environment with a fresh arena.
func NewEnvironment() *Environment {
	return &Environment{types.NewArena(), nil, make(map[Node]*Workbench)}
}

// Arena returns the shared type-variable arena of this environment.
func (p *Environment) Arena() *types.Arena {
	return p.arena
}

// AddRoot registers a top-level tree of the main editor.
func (p *Environment) AddRoot(root Node) {
	p.roots = append(p.roots, root)
}

// RemoveRoot unregisters a top-level tree of the main editor.
func (p *Environment) RemoveRoot(root Node) {
	for i, r := range p.roots {
		if r == root {
			p.roots = append(p.roots[:i], p.roots[i+1:]...)
			return
		}
	}
}

// Roots returns the top-level trees of the main editor.
func (p *Environment) Roots() []Node {
	return p.roots
}

// AllVisibleVariables computes the set of declarations visible from a given
// tree position.  The walk proceeds from the position up through enclosing
// declaring nodes (collecting nearer declarations first), and then across the
// scope chain whenever the enclosing tree turns out to be a workbench-private
// tree.  Callers resolving a name must prefer the first-seen entry; same-named
// declarations remain distinct entries.
func (p *Environment) AllVisibleVariables(pos Position) *Context {
	ctx := NewContext()
	p.collectVisible(pos, ctx)
	//
	return ctx
}

func (p *Environment) collectVisible(pos Position, ctx *Context) {
	var (
		node  Node   = pos.Node
		field string = pos.Field
	)
	//
	for node != nil {
		if source, ok := node.(VariableSource); ok {
			for _, value := range source.Declarations() {
				if source.ScopesOver(value, field) {
					ctx.Declare(value)
				}
			}
		}
		// Crossing a scope boundary continues the walk at the workbench's
		// host position within its enclosing scope.
		if node.Parent() == nil {
			if bench, ok := p.benches[node]; ok {
				p.collectVisible(bench.host, ctx)
			}
			//
			return
		}
		//
		field = node.ParentField()
		node = node.Parent()
	}
}

// BlockContext returns only the declarations local to the given node's own
// nested subtree, irrespective of anything inherited from enclosing scopes.
func BlockContext(root Node) *Context {
	ctx := NewContext()
	//
	Visit(root, func(node Node) {
		if source, ok := node.(VariableSource); ok {
			for _, value := range source.Declarations() {
				ctx.Declare(value)
			}
		}
	})
	//
	return ctx
}

// forEachReference applies a function to every reference held anywhere in
// this environment: the main trees and all workbench-private trees.
func (p *Environment) forEachReference(fn func(*Reference)) {
	visit := func(root Node) {
		Visit(root, func(node Node) {
			if user, ok := node.(VariableUser); ok {
				for _, ref := range user.References() {
					fn(ref)
				}
			}
		})
	}
	//
	for _, root := range p.roots {
		visit(root)
	}
	//
	for root := range p.benches {
		visit(root)
	}
}

// ============================================================================
// Workbench
// ============================================================================

// Workbench is a nested scoped context: a zoomed sub-editor opened on a node,
// whose private trees can see both their own declarations and everything
// visible at the host position in the enclosing scope.  Workbenches nest, and
// the inherited contexts chain outwards up to the main editor.
type Workbench struct {
	env *Environment
	// Position in the enclosing scope whose visibility this workbench
	// inherits.
	host Position
	// Private tree roots of this workbench.
	roots []Node
	open  bool
}

// OpenWorkbench registers a nested scoped context inheriting visibility from
// the given host position.  The editor must close the workbench again once its
// UI goes away.
func (p *Environment) OpenWorkbench(host Position) *Workbench {
	bench := &Workbench{p, host, nil, true}
	log.Debugf("opened workbench on %v", host.Node)
	//
	return bench
}

// Close unregisters this workbench and all its private trees.  Visibility
// queries against those trees subsequently see no inherited context.
func (p *Workbench) Close() {
	for _, root := range p.roots {
		delete(p.env.benches, root)
	}
	//
	p.roots = nil
	p.open = false
	//
	log.Debugf("closed workbench on %v", p.host.Node)
}

// IsOpen checks whether this workbench is still registered.
func (p *Workbench) IsOpen() bool {
	return p.open
}

// Host returns the position in the enclosing scope from which this workbench
// inherits visibility.
func (p *Workbench) Host() Position {
	return p.host
}

// AddRoot registers a private tree with this workbench.
func (p *Workbench) AddRoot(root Node) {
	p.roots = append(p.roots, root)
	p.env.benches[root] = p
}

// RemoveRoot unregisters a private tree from this workbench.
func (p *Workbench) RemoveRoot(root Node) {
	for i, r := range p.roots {
		if r == root {
			p.roots = append(p.roots[:i], p.roots[i+1:]...)
			delete(p.env.benches, root)
			//
			return
		}
	}
}

// ImplicitContext returns the context available at this scope boundary
// itself: everything inherited from the enclosing scopes, and nothing local.
// Entries appear in inner-to-outer order.
func (p *Workbench) ImplicitContext() *Context {
	return p.env.AllVisibleVariables(p.host)
}

// ContextEx returns only the declarations declared directly within this
// workbench's private trees.
func (p *Workbench) ContextEx() *Context {
	ctx := NewContext()
	//
	for _, root := range p.roots {
		for _, value := range BlockContext(root).Entries() {
			ctx.Declare(value)
		}
	}
	//
	return ctx
}

// Context returns all declarations visible within this workbench: the
// inherited contexts (outer-most first) followed by the workbench's own.
func (p *Workbench) Context() *Context {
	var (
		ctx       = NewContext()
		inherited = p.ImplicitContext().Entries()
	)
	// Inherited entries arrive inner-first; reverse for outer-most first.
	for i := len(inherited) - 1; i >= 0; i-- {
		ctx.Declare(inherited[i])
	}
	//
	for _, value := range p.ContextEx().Entries() {
		ctx.Declare(value)
	}
	//
	return ctx
}
