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

// Package mirror keeps an in-memory copy of remote collections, fed by
// added/changed/removed events from the coordinator transport.
package mirror

import (
	"encoding/json"
	"fmt"
)

// EventKind identifies the change carried by an Event.
type EventKind int

const (
	Added EventKind = iota + 1
	Changed
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Document is a mirrored record. Field values are kept as raw JSON until a
// consumer decodes them.
type Document map[string]json.RawMessage

// Decode unmarshals the document into v.
func (d Document) Decode(v interface{}) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, v)
}

// String returns the string value of a field, or "" if it is absent or not a string.
func (d Document) String(field string) string {
	var s string

	if raw, ok := d[field]; ok {
		_ = json.Unmarshal(raw, &s)
	}

	return s
}

func (d Document) clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}

	return out
}

// Event is a single change to one record of one collection.
type Event struct {
	Kind       EventKind
	Collection string
	ID         string
	Fields     Document
	Cleared    []string
}

// Handler receives the changes applied to a collection. Calls for one
// collection are serialized and arrive in the order the events were applied.
type Handler interface {
	OnAdded(id string, doc Document)
	OnChanged(id string, changed Document, cleared []string)
	OnRemoved(id string, last Document)
}

// HandlerFuncs adapts plain functions to Handler. Nil functions are skipped.
type HandlerFuncs struct {
	Added   func(id string, doc Document)
	Changed func(id string, changed Document, cleared []string)
	Removed func(id string, last Document)
}

func (h HandlerFuncs) OnAdded(id string, doc Document) {
	if h.Added != nil {
		h.Added(id, doc)
	}
}

func (h HandlerFuncs) OnChanged(id string, changed Document, cleared []string) {
	if h.Changed != nil {
		h.Changed(id, changed, cleared)
	}
}

func (h HandlerFuncs) OnRemoved(id string, last Document) {
	if h.Removed != nil {
		h.Removed(id, last)
	}
}
