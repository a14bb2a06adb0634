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

import "time"

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// CallResultEventData is published after a script call has been reported.
type CallResultEventData struct {
	CallID    string    `json:"call_id"`
	ScriptID  string    `json:"script_id,omitempty"`
	Script    string    `json:"script,omitempty"`
	Stdout    string    `json:"stdout,omitempty"`
	Stderr    string    `json:"stderr,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PeripheralReadEventData is published for every characteristic notification.
type PeripheralReadEventData struct {
	PeripheralID string    `json:"peripheral_id,omitempty"`
	HardwareUUID string    `json:"hardware_uuid"`
	Name         string    `json:"name"`
	Payload      string    `json:"payload"`
	Timestamp    time.Time `json:"timestamp"`
}
