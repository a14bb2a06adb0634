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

// Package agent runs a coordinator session: it registers this device,
// mirrors its collections, executes incoming calls and keeps the session
// alive with a periodic pulse.
package agent

import (
	"context"
	"encoding/json"

	"github.com/carverauto/gafo/pkg/models"
)

//go:generate mockgen -destination=mock_agent.go -package=agent github.com/carverauto/gafo/pkg/agent Caller,ScriptRunner,PeripheralWriter,EventPublisher

// Caller issues coordinator methods.
type Caller interface {
	Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
}

// ScriptRunner executes a shell command and captures its output. A non-zero
// exit status is reported in ExecOutput, not as an error.
type ScriptRunner interface {
	Run(ctx context.Context, command string) (ExecOutput, error)
}

// PeripheralWriter delivers a message to a peripheral's write characteristic.
type PeripheralWriter interface {
	Write(ctx context.Context, hardwareUUID string, p []byte) error
}

// EventPublisher forwards agent activity to the local event bus.
type EventPublisher interface {
	PublishCallResult(ctx context.Context, data *models.CallResultEventData) error
	PublishPeripheralRead(ctx context.Context, data *models.PeripheralReadEventData) error
}
