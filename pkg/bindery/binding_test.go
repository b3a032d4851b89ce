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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerlang/bindery/pkg/bindery/types"
)

func TestBindPropagatesType(t *testing.T) {
	arena := types.NewArena()
	node := tnode("let")
	value := node.declare("x", numType, "body")
	ref := tnode("use").refer("x", arena.Fresh())
	//
	require.NoError(t, ref.BindTo(value, arena))
	assert.True(t, ref.IsBound())
	assert.Same(t, value, ref.BoundValue())
	assert.Equal(t, uint(1), value.ReferenceCount())
	// Use site picked up the declared type
	assert.Equal(t, numType, ref.Type().DeepDeref())
}

func TestBindNameMismatch(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	ref := tnode("use").refer("y", arena.Fresh())
	//
	err := ref.BindTo(value, arena)
	require.Error(t, err)
	assert.True(t, IsNameMismatch(err))
	assert.False(t, ref.IsBound())
	assert.Equal(t, uint(0), value.ReferenceCount())
}

func TestBindUnifyFailureRollsBack(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	ref := tnode("use").refer("x", textType)
	//
	err := ref.BindTo(value, arena)
	require.Error(t, err)
	assert.True(t, types.IsMismatch(err))
	// Failed binding leaves no trace on either side
	assert.False(t, ref.IsBound())
	assert.Equal(t, uint(0), value.ReferenceCount())
}

func TestBindSameValueTwice(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	ref := tnode("use").refer("x", arena.Fresh())
	//
	require.NoError(t, ref.BindTo(value, arena))
	require.NoError(t, ref.BindTo(value, arena))
	assert.Equal(t, uint(1), value.ReferenceCount())
}

func TestBindAlreadyBoundPanics(t *testing.T) {
	arena := types.NewArena()
	first := tnode("let1").declare("x", numType, "body")
	second := tnode("let2").declare("x", numType, "body")
	ref := tnode("use").refer("x", arena.Fresh())
	//
	require.NoError(t, ref.BindTo(first, arena))
	assert.Panics(t, func() { _ = ref.BindTo(second, arena) })
}

func TestReleaseRevertsBinding(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	typ := arena.Fresh()
	ref := tnode("use").refer("x", typ)
	//
	require.NoError(t, ref.BindTo(value, arena))
	ref.Release(arena)
	//
	assert.False(t, ref.IsBound())
	assert.Equal(t, uint(0), value.ReferenceCount())
	// Type constraint was reversed along with the binding
	assert.False(t, typ.IsInstantiated())
	// Temporary label survives for display
	assert.Equal(t, "x", ref.Name())
}

func TestReleaseUnboundIsNoop(t *testing.T) {
	arena := types.NewArena()
	ref := tnode("use").refer("x", arena.Fresh())
	//
	ref.Release(arena)
	assert.False(t, ref.IsBound())
}

func TestBindReleaseRepeatable(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	typ := arena.Fresh()
	ref := tnode("use").refer("x", typ)
	//
	for i := 0; i < 3; i++ {
		require.NoError(t, ref.BindTo(value, arena))
		assert.Equal(t, numType, typ.DeepDeref())
		ref.Release(arena)
		assert.False(t, typ.IsInstantiated())
	}
}

func TestAllBoundVariablesGroup(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	ref1 := tnode("use1").refer("x", arena.Fresh())
	ref2 := tnode("use2").refer("x", arena.Fresh())
	//
	require.NoError(t, ref1.BindTo(value, arena))
	require.NoError(t, ref2.BindTo(value, arena))
	// Same group from every member
	group := []Variable{value, ref1, ref2}
	assert.Equal(t, group, value.AllBoundVariables())
	assert.Equal(t, group, ref1.AllBoundVariables())
	assert.Equal(t, group, ref2.AllBoundVariables())
}

func TestAllBoundVariablesUnbound(t *testing.T) {
	arena := types.NewArena()
	ref := tnode("use").refer("x", arena.Fresh())
	//
	assert.Equal(t, []Variable{ref}, ref.AllBoundVariables())
}

func TestValueDispose(t *testing.T) {
	arena := types.NewArena()
	value := tnode("let").declare("x", numType, "body")
	ref1 := tnode("use1").refer("x", arena.Fresh())
	ref2 := tnode("use2").refer("x", arena.Fresh())
	//
	require.NoError(t, ref1.BindTo(value, arena))
	require.NoError(t, ref2.BindTo(value, arena))
	//
	value.Dispose(arena)
	assert.Equal(t, uint(0), value.ReferenceCount())
	assert.False(t, ref1.IsBound())
	assert.False(t, ref2.IsBound())
}

func TestBindInstantiatesScheme(t *testing.T) {
	arena := types.NewArena()
	a := arena.Fresh()
	// id : forall a. a -> a
	value := tnode("let").declare("id", types.NewFun(a, a), "body")
	value.Finalise(nil)
	//
	ref1 := tnode("use1").refer("id", arena.Fresh())
	ref2 := tnode("use2").refer("id", arena.Fresh())
	require.NoError(t, ref1.BindTo(value, arena))
	require.NoError(t, ref2.BindTo(value, arena))
	// Each use site got an independent instantiation
	require.NoError(t, arena.Unify(ref1.Type(), types.NewFun(numType, numType)))
	require.NoError(t, arena.Unify(ref2.Type(), types.NewFun(textType, textType)))
	// The declaration itself stays polymorphic
	assert.False(t, a.IsInstantiated())
}

func TestReleaseReversesSchemeInstantiation(t *testing.T) {
	arena := types.NewArena()
	a := arena.Fresh()
	value := tnode("let").declare("id", types.NewFun(a, a), "body")
	value.Finalise(nil)
	//
	typ := arena.Fresh()
	fun := types.NewFun(numType, numType)
	ref := tnode("use").refer("id", typ)
	require.NoError(t, ref.BindTo(value, arena))
	require.NoError(t, arena.Unify(typ, fun))
	//
	arena.Disconnect(typ, fun)
	ref.Release(arena)
	//
	assert.False(t, typ.IsInstantiated())
}
