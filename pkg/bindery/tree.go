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

// Node abstracts one element of the block tree.  The tree itself is owned by
// the editor; this package only ever reads adjacency (parent links, slot
// connections) and never mutates it.  Structural edits flow the other way: the
// editor mutates its tree and then calls back into the resolver for every
// reference potentially affected.
type Node interface {
	// Parent returns the node this node is connected beneath, or nil when
	// this node is the root of its tree (either the main tree, a detached
	// subtree, or a workbench-private tree).
	Parent() Node
	// ParentField returns the name of the input slot of the parent which this
	// node occupies, or "" when this node has no parent.
	ParentField() string
	// Children returns the nodes connected into this node's input slots, in
	// slot order.  Empty slots are skipped.
	Children() []Node
}

// VariableSource is implemented by nodes which declare variables, such as let,
// let-rec and lambda blocks.  A declaring node decides, per input slot, which
// of its declarations are visible within the subtree connected there.  In
// particular, a non-recursive let scopes its variable over its body slot only,
// whereas a recursive one also scopes it over its value slot.
type VariableSource interface {
	Node
	// Declarations returns the values declared by this node, in declaration
	// order.
	Declarations() []*Value
	// ScopesOver checks whether the given declared value is visible within
	// the subtree connected at the given input slot.
	ScopesOver(value *Value, field string) bool
}

// VariableUser is implemented by nodes which hold variable references (i.e.
// use sites).
type VariableUser interface {
	Node
	// References returns the references held by this node.
	References() []*Reference
}

// Position identifies a connection point within the block tree: an input slot
// on a given node.  An empty field identifies the node itself (i.e. the point
// at which the node connects to its parent).
type Position struct {
	// Node on which the position sits.
	Node Node
	// Input slot name, or "" for the node itself.
	Field string
}

// PositionOf returns the position of a node itself within its tree.
func PositionOf(node Node) Position {
	return Position{node, ""}
}

// RootOf walks the parent chain of a node to the root of its tree.
func RootOf(node Node) Node {
	for node.Parent() != nil {
		node = node.Parent()
	}
	//
	return node
}

// IsWithin checks whether a node lies within the subtree rooted at root (a
// node is considered to lie within its own subtree).
func IsWithin(node Node, root Node) bool {
	for n := node; n != nil; n = n.Parent() {
		if n == root {
			return true
		}
	}
	//
	return false
}

// Visit applies a function to every node in the subtree rooted at the given
// node, in depth-first order.
func Visit(node Node, fn func(Node)) {
	fn(node)
	//
	for _, child := range node.Children() {
		Visit(child, fn)
	}
}
