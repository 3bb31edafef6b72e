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

// OrderedMap is a map which remembers the insertion order of its keys.
//
// Pairs are kept in a slice, so two maps built by the same sequence
// of Set calls are structurally identical.
type OrderedMap[K comparable, V any] struct {
	index map[K]int
	pairs []*Pair[K, V]
}

func (om *OrderedMap[K, V]) ensureInitialized() {
	if om.index != nil {
		return
	}
	om.index = make(map[K]int)
}

// Get returns the value associated with the given key.
// Returns the zero value if not found.
// The second return value indicates if the key is present in the map.
func (om OrderedMap[K, V]) Get(key K) (result V, present bool) {
	if om.index == nil {
		return
	}

	var i int
	if i, present = om.index[key]; present {
		return om.pairs[i].Value, present
	}
	return
}

// Set sets the key-value pair, and returns what `Get` would have returned
// on that key prior to the call to `Set`.
// Updating an existing key keeps its original position.
func (om *OrderedMap[K, V]) Set(key K, value V) (oldValue V, present bool) {
	om.ensureInitialized()

	var i int
	if i, present = om.index[key]; present {
		pair := om.pairs[i]
		oldValue = pair.Value
		pair.Value = value
		return
	}

	om.index[key] = len(om.pairs)
	om.pairs = append(om.pairs, &Pair[K, V]{
		Key:   key,
		Value: value,
	})

	return
}

// Delete removes the key-value pair, and returns what `Get` would have returned
// on that key prior to the call to `Delete`.
func (om *OrderedMap[K, V]) Delete(key K) (oldValue V, present bool) {
	if om.index == nil {
		return
	}

	var i int
	i, present = om.index[key]
	if !present {
		return
	}

	oldValue = om.pairs[i].Value
	delete(om.index, key)

	copy(om.pairs[i:], om.pairs[i+1:])
	om.pairs[len(om.pairs)-1] = nil
	om.pairs = om.pairs[:len(om.pairs)-1]

	for j := i; j < len(om.pairs); j++ {
		om.index[om.pairs[j].Key] = j
	}

	return
}

// Len returns the length of the ordered map.
func (om OrderedMap[K, V]) Len() int {
	return len(om.pairs)
}

// At returns the pair at the given insertion position.
func (om OrderedMap[K, V]) At(i int) *Pair[K, V] {
	return om.pairs[i]
}

// Foreach iterates over the entries of the map in the insertion order, and invokes
// the provided function for each key-value pair.
func (om OrderedMap[K, V]) Foreach(f func(key K, value V)) {
	for _, pair := range om.pairs {
		f(pair.Key, pair.Value)
	}
}

// Pair is an entry in an OrderedMap
type Pair[K any, V any] struct {
	Key   K
	Value V
}
