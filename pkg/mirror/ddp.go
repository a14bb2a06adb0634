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

package mirror

import "github.com/carverauto/gafo/pkg/ddp"

// FromDDP converts a DDP data frame into a store event. movedBefore frames
// and non-data messages are reported as not ok; the store keeps no order.
func FromDDP(m *ddp.Message) (Event, bool) {
	ev := Event{
		Collection: m.Collection,
		ID:         m.ID,
		Fields:     Document(m.Fields),
	}

	switch m.Msg {
	case ddp.MsgAdded, ddp.MsgAddedBefore:
		ev.Kind = Added
	case ddp.MsgChanged:
		ev.Kind = Changed
		ev.Cleared = m.Cleared
	case ddp.MsgRemoved:
		ev.Kind = Removed
	default:
		return Event{}, false
	}

	if ev.Fields == nil {
		ev.Fields = make(Document)
	}

	return ev, true
}

// ApplyDDP applies a DDP data frame. It can be used directly as a
// ddp.DataHandler.
func (s *Store) ApplyDDP(m *ddp.Message) {
	if ev, ok := FromDDP(m); ok {
		s.Apply(ev)
	}
}
