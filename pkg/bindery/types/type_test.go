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
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	numType  = NewBase("Num")
	textType = NewBase("Text")
)

func TestUnifyVarWithBase(t *testing.T) {
	arena := NewArena()
	v := arena.Fresh()
	//
	require.NoError(t, arena.Unify(v, numType))
	assert.True(t, v.IsInstantiated())
	assert.Equal(t, numType, v.Deref())
}

func TestUnifyVarWithVar(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	//
	require.NoError(t, arena.Unify(a, b))
	require.NoError(t, arena.Unify(b, numType))
	// Constraint flows through the chain
	assert.Equal(t, numType, a.Deref())
}

func TestUnifyBaseConflict(t *testing.T) {
	arena := NewArena()
	err := arena.Unify(numType, textType)
	//
	require.Error(t, err)
	assert.True(t, IsMismatch(err))
}

func TestUnifyFunRecurses(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	lhs := NewFun(a, b)
	rhs := NewFun(numType, textType)
	//
	require.NoError(t, arena.Unify(lhs, rhs))
	assert.Equal(t, numType, a.Deref())
	assert.Equal(t, textType, b.Deref())
}

func TestUnifyFunConflictRollsBack(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	lhs := NewFun(a, numType)
	rhs := NewFun(textType, textType)
	// Fails in the return position, after the argument position already
	// instantiated a.
	err := arena.Unify(lhs, rhs)
	require.Error(t, err)
	assert.True(t, IsMismatch(err))
	// Partial instantiation must have been undone.
	assert.False(t, a.IsInstantiated())
}

func TestUnifyOccursCheck(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	err := arena.Unify(a, NewFun(a, numType))
	//
	require.Error(t, err)
	assert.True(t, IsMismatch(err))
	assert.False(t, a.IsInstantiated())
}

func TestDisconnectReversesUnify(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	//
	require.NoError(t, arena.Unify(a, numType))
	require.True(t, a.IsInstantiated())
	//
	arena.Disconnect(a, numType)
	assert.False(t, a.IsInstantiated())
}

func TestDisconnectOnlyReversesOwnEdge(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	// Two independent edges
	require.NoError(t, arena.Unify(a, b))
	require.NoError(t, arena.Unify(b, numType))
	// Reversing the first edge must leave the second intact.
	arena.Disconnect(a, b)
	assert.False(t, a.IsInstantiated())
	assert.Equal(t, numType, b.Deref())
}

func TestDisconnectStackedEdges(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	lhs := NewFun(a, b)
	rhs := NewFun(numType, numType)
	// Unify the same pair twice: the first edge does all the work, the second
	// is a no-op to be reversed first.
	require.NoError(t, arena.Unify(lhs, rhs))
	require.NoError(t, arena.Unify(lhs, rhs))
	//
	arena.Disconnect(lhs, rhs)
	assert.Equal(t, numType, a.Deref())
	//
	arena.Disconnect(lhs, rhs)
	assert.False(t, a.IsInstantiated())
}

func TestDisconnectWithoutUnifyPanics(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	//
	assert.Panics(t, func() { arena.Disconnect(a, numType) })
}

func TestDeepDeref(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	fn := NewFun(a, b)
	//
	require.NoError(t, arena.Unify(a, numType))
	require.NoError(t, arena.Unify(b, textType))
	//
	deep := fn.DeepDeref().(*Fun)
	assert.Equal(t, numType, deep.Arg())
	assert.Equal(t, textType, deep.Ret())
	assert.Equal(t, "Num -> Text", deep.String())
}

func TestGeneralizeIdentity(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	// The classic identity shape: 'a -> 'a
	scheme := Generalize(NewFun(a, a), nil)
	// Exactly one quantified variable, shared across both positions.
	assert.Equal(t, uint(1), scheme.Count())
	assert.True(t, scheme.Generalized(a.Id()))
}

func TestGeneralizeRespectsBoundary(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	// b is already bound outside the declaration boundary.
	boundary := bitset.New(8)
	boundary.Set(b.Id())
	//
	scheme := Generalize(NewFun(a, b), boundary)
	assert.Equal(t, uint(1), scheme.Count())
	assert.True(t, scheme.Generalized(a.Id()))
	assert.False(t, scheme.Generalized(b.Id()))
}

func TestInstantiateIndependentUses(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	scheme := Generalize(NewFun(a, a), nil)
	// Two independent use sites
	first := scheme.Instantiate(arena).(*Fun)
	second := scheme.Instantiate(arena).(*Fun)
	// Within one instantiation the quantified variable stays shared.
	require.NoError(t, arena.Unify(first.Arg(), numType))
	assert.Equal(t, numType, first.Ret().Deref())
	// Across instantiations it does not.
	require.NoError(t, arena.Unify(second.Arg(), textType))
	assert.Equal(t, textType, second.Ret().Deref())
	assert.Equal(t, numType, first.Ret().Deref())
	// The scheme body itself remains untouched.
	assert.False(t, a.IsInstantiated())
}

func TestInstantiateSharesUnquantified(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	b := arena.Fresh()
	boundary := bitset.New(8)
	boundary.Set(b.Id())
	//
	scheme := Generalize(NewFun(a, b), boundary)
	first := scheme.Instantiate(arena).(*Fun)
	second := scheme.Instantiate(arena).(*Fun)
	// Constraining the shared (unquantified) position constrains every use.
	require.NoError(t, arena.Unify(first.Ret(), numType))
	assert.Equal(t, numType, second.Ret().Deref())
}

func TestMonoScheme(t *testing.T) {
	arena := NewArena()
	a := arena.Fresh()
	scheme := MonoScheme(a)
	//
	assert.Equal(t, uint(0), scheme.Count())
	// Instantiation of a monomorphic scheme is always the body itself.
	assert.Equal(t, Expr(a), scheme.Instantiate(arena))
}

func TestVarName(t *testing.T) {
	assert.Equal(t, "a", VarName(0))
	assert.Equal(t, "z", VarName(25))
	assert.Equal(t, "a1", VarName(26))
	assert.Equal(t, "b1", VarName(27))
}
