/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package orderedmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys[K comparable, V any](om *OrderedMap[K, V]) []K {
	var result []K
	om.Foreach(func(key K, _ V) {
		result = append(result, key)
	})
	return result
}

func TestOrderedMapSet(t *testing.T) {

	t.Parallel()

	om := &OrderedMap[string, int]{}

	_, present := om.Set("b", 1)
	assert.False(t, present)
	om.Set("a", 2)
	om.Set("c", 3)

	old, present := om.Set("b", 4)
	assert.True(t, present)
	assert.Equal(t, 1, old)

	assert.Equal(t, []string{"b", "a", "c"}, keys(om))
	assert.Equal(t, 3, om.Len())

	value, present := om.Get("b")
	require.True(t, present)
	assert.Equal(t, 4, value)

	assert.Equal(t, "a", om.At(1).Key)
}

func TestOrderedMapZeroValue(t *testing.T) {

	t.Parallel()

	var om OrderedMap[string, int]

	_, present := om.Get("a")
	assert.False(t, present)

	_, present = om.Delete("a")
	assert.False(t, present)

	om.Set("a", 1)
	value, present := om.Get("a")
	require.True(t, present)
	assert.Equal(t, 1, value)
}

func TestOrderedMapDelete(t *testing.T) {

	t.Parallel()

	om := &OrderedMap[string, int]{}
	om.Set("a", 1)
	om.Set("b", 2)
	om.Set("c", 3)

	old, present := om.Delete("a")
	require.True(t, present)
	assert.Equal(t, 1, old)

	assert.Equal(t, []string{"b", "c"}, keys(om))
	assert.Equal(t, "c", om.At(1).Key)

	value, present := om.Get("c")
	require.True(t, present)
	assert.Equal(t, 3, value)

	_, present = om.Get("a")
	assert.False(t, present)
}
