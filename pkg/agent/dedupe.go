/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package agent

import (
	"container/list"
	"sync"
)

const defaultSeenCalls = 10000

// callSet remembers which call ids have been dispatched in this session so a
// redelivered call is never executed twice. The oldest ids are forgotten
// once the set is full.
type callSet struct {
	mu    sync.Mutex
	seen  map[string]*list.Element
	order *list.List
	max   int
}

func newCallSet(max int) *callSet {
	if max <= 0 {
		max = defaultSeenCalls
	}

	return &callSet{
		seen:  make(map[string]*list.Element),
		order: list.New(),
		max:   max,
	}
}

// CheckAndMark returns true if id was already dispatched, otherwise marks it.
func (s *callSet) CheckAndMark(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return true
	}

	if len(s.seen) >= s.max {
		if front := s.order.Front(); front != nil {
			key, _ := front.Value.(string)
			s.order.Remove(front)
			delete(s.seen, key)
		}
	}

	s.seen[id] = s.order.PushBack(id)

	return false
}
