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
	"github.com/tinkerlang/bindery/pkg/bindery/types"
)

var (
	numType  = types.NewBase("Num")
	textType = types.NewBase("Text")
)

// testNode is a minimal tree node for exercising visibility and resolution
// without pulling in a full block editor.  Declarations are scoped over
// explicitly named input slots.
type testNode struct {
	label       string
	parent      *testNode
	parentField string
	children    []Node
	decls       []*Value
	scoped      map[*Value]map[string]bool
	refs        []*Reference
}

func tnode(label string) *testNode {
	return &testNode{label: label, scoped: make(map[*Value]map[string]bool)}
}

func (p *testNode) Parent() Node {
	if p.parent == nil {
		return nil
	}
	//
	return p.parent
}

func (p *testNode) ParentField() string {
	return p.parentField
}

func (p *testNode) Children() []Node {
	return p.children
}

func (p *testNode) Declarations() []*Value {
	return p.decls
}

func (p *testNode) ScopesOver(value *Value, field string) bool {
	return p.scoped[value][field]
}

func (p *testNode) References() []*Reference {
	return p.refs
}

func (p *testNode) String() string {
	return p.label
}

// attach connects a child into the named input slot.
func (p *testNode) attach(field string, child *testNode) *testNode {
	child.parent = p
	child.parentField = field
	p.children = append(p.children, child)
	//
	return p
}

// detach disconnects a child again, leaving it the root of its own subtree.
func (p *testNode) detach(child *testNode) {
	for i, c := range p.children {
		if c == Node(child) {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	//
	child.parent = nil
	child.parentField = ""
}

// declare introduces a named declaration on this node, scoping over the given
// input slots.
func (p *testNode) declare(name string, typ types.Expr, fields ...string) *Value {
	value := NewValue(name, p, "value", typ)
	p.decls = append(p.decls, value)
	//
	set := make(map[string]bool)
	for _, field := range fields {
		set[field] = true
	}
	//
	p.scoped[value] = set
	//
	return value
}

// refer places a named reference on this node.
func (p *testNode) refer(name string, typ types.Expr) *Reference {
	ref := NewReference(name, p, "", typ)
	p.refs = append(p.refs, ref)
	//
	return ref
}
