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

package models

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

var errInvalidDate = errors.New(`expected EJSON date object {"$date": <ms>}`)

// RegisteredAgent is the coordinator's answer to registerSlave. It maps the
// coordinator's document ids back to the names used in local configuration.
type RegisteredAgent struct {
	Scripts     map[string]string `json:"scripts"`
	Peripherals map[string]string `json:"peripherals"`
}

// ScriptName resolves a remote script id to a configured script name.
func (r *RegisteredAgent) ScriptName(scriptID string) (string, bool) {
	if r == nil {
		return "", false
	}

	name, ok := r.Scripts[scriptID]

	return name, ok && name != ""
}

// PeripheralUUID resolves a remote peripheral id to a hardware UUID.
func (r *RegisteredAgent) PeripheralUUID(peripheralID string) (string, bool) {
	if r == nil {
		return "", false
	}

	uuid, ok := r.Peripherals[peripheralID]

	return uuid, ok && uuid != ""
}

// RemotePeripheralID is the reverse of PeripheralUUID. If the coordinator
// registered the same hardware twice the lowest id wins.
func (r *RegisteredAgent) RemotePeripheralID(hardwareUUID string) (string, bool) {
	if r == nil {
		return "", false
	}

	ids := make([]string, 0, 1)

	for id, uuid := range r.Peripherals {
		if uuid == hardwareUUID {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return "", false
	}

	sort.Strings(ids)

	return ids[0], true
}

// CallRecord is a unit of remote-issued work from the calls collection.
type CallRecord struct {
	ID           string          `json:"-"`
	ScriptID     string          `json:"scriptId,omitempty"`
	PeripheralID string          `json:"peripheralId,omitempty"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
	Message      json.RawMessage `json:"message,omitempty"`
}

// HasParameters reports whether parameters carry a value. JSON null, false,
// 0 and "" count as absent.
func (c *CallRecord) HasParameters() bool {
	switch string(c.Parameters) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}

// MessageBytes returns the payload for a peripheral write. String messages
// are unquoted, anything else is passed through as its JSON text.
func (c *CallRecord) MessageBytes() []byte {
	if len(c.Message) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(c.Message, &s); err == nil {
		return []byte(s)
	}

	return []byte(c.Message)
}

// CallResult is reported back per call id through addToCallResult.
type CallResult struct {
	Stdout *string `json:"stdout,omitempty"`
	Stderr *string `json:"stderr,omitempty"`
	Date   *Date   `json:"date,omitempty"`
}

// NewErrorResult builds a result that only carries stderr.
func NewErrorResult(statement string) CallResult {
	return CallResult{Stderr: &statement}
}

// NewExecResult builds the result of a finished script.
func NewExecResult(stdout, stderr string, at time.Time) CallResult {
	return CallResult{Stdout: &stdout, Stderr: &stderr, Date: &Date{Time: at}}
}

// Date serializes as an EJSON date so the coordinator stores a real Date.
type Date struct {
	time.Time
}

type ejsonDate struct {
	Date *int64 `json:"$date"`
}

func (d Date) MarshalJSON() ([]byte, error) {
	ms := d.UnixMilli()
	return json.Marshal(ejsonDate{Date: &ms})
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var v ejsonDate
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	if v.Date == nil {
		return errInvalidDate
	}

	d.Time = time.UnixMilli(*v.Date)

	return nil
}
