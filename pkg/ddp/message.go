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

package ddp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DDP message types.
const (
	MsgConnect     = "connect"
	MsgConnected   = "connected"
	MsgFailed      = "failed"
	MsgPing        = "ping"
	MsgPong        = "pong"
	MsgMethod      = "method"
	MsgResult      = "result"
	MsgUpdated     = "updated"
	MsgSub         = "sub"
	MsgUnsub       = "unsub"
	MsgReady       = "ready"
	MsgNoSub       = "nosub"
	MsgAdded       = "added"
	MsgAddedBefore = "addedBefore"
	MsgChanged     = "changed"
	MsgMovedBefore = "movedBefore"
	MsgRemoved     = "removed"
	MsgError       = "error"
)

// ProtocolVersion is the only DDP version this client speaks.
const ProtocolVersion = "1"

// Message is the union of every DDP frame the client sends or receives.
type Message struct {
	Msg        string                     `json:"msg"`
	ID         string                     `json:"id,omitempty"`
	Session    string                     `json:"session,omitempty"`
	Version    string                     `json:"version,omitempty"`
	Support    []string                   `json:"support,omitempty"`
	Method     string                     `json:"method,omitempty"`
	Name       string                     `json:"name,omitempty"`
	Params     []interface{}              `json:"params,omitempty"`
	Result     json.RawMessage            `json:"result,omitempty"`
	Error      *Error                     `json:"error,omitempty"`
	Subs       []string                   `json:"subs,omitempty"`
	Methods    []string                   `json:"methods,omitempty"`
	Collection string                     `json:"collection,omitempty"`
	Fields     map[string]json.RawMessage `json:"fields,omitempty"`
	Cleared    []string                   `json:"cleared,omitempty"`
	Reason     string                     `json:"reason,omitempty"`
}

// IsData reports whether m mutates a client-side collection.
func (m *Message) IsData() bool {
	switch m.Msg {
	case MsgAdded, MsgAddedBefore, MsgChanged, MsgMovedBefore, MsgRemoved:
		return true
	default:
		return false
	}
}

// Error is a Meteor.Error as carried in result and nosub frames.
type Error struct {
	Code      json.RawMessage `json:"error,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Message   string          `json:"message,omitempty"`
	ErrorType string          `json:"errorType,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	code := strings.Trim(string(e.Code), `"`)

	switch {
	case e.Reason != "" && code != "":
		return fmt.Sprintf("%s [%s]", e.Reason, code)
	case e.Reason != "":
		return e.Reason
	case code != "":
		return "ddp error " + code
	default:
		return "ddp error"
	}
}
