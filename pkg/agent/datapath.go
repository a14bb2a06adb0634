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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/gafo/pkg/ble"
	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/models"
)

const (
	peripheralTimeFormat = "02/Jan/06:15:04:05"
	notificationQueue    = 64
)

type notification struct {
	hardwareUUID string
	name         string
	payload      []byte
	at           time.Time
}

// DataPath moves data between peripherals and the coordinator: inbound
// notifications become logPeripheralRead calls, outbound call messages
// become characteristic writes.
type DataPath struct {
	caller       Caller
	writer       PeripheralWriter
	registration *Registration
	events       EventPublisher
	logger       logger.Logger
	now          func() time.Time

	notifications chan notification
}

// NewDataPath creates a data path. writer and events may be nil.
func NewDataPath(caller Caller, writer PeripheralWriter, registration *Registration, events EventPublisher, log logger.Logger) *DataPath {
	return &DataPath{
		caller:        caller,
		writer:        writer,
		registration:  registration,
		events:        events,
		logger:        log,
		now:           time.Now,
		notifications: make(chan notification, notificationQueue),
	}
}

// OnNotification queues a characteristic notification for delivery. It never
// blocks the hardware callback; when the queue is full the payload is dropped.
func (p *DataPath) OnNotification(hardwareUUID, name string, payload []byte) {
	n := notification{hardwareUUID: hardwareUUID, name: name, payload: payload, at: p.now()}

	select {
	case p.notifications <- n:
	default:
		p.logger.Warn().Str("peripheral", hardwareUUID).Msg("Notification queue full, dropping payload")
	}
}

// Run delivers queued notifications in arrival order until ctx is done.
func (p *DataPath) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-p.notifications:
			p.deliver(ctx, n)
		}
	}
}

func (p *DataPath) deliver(ctx context.Context, n notification) {
	p.logger.Info().Str("peripheral", n.hardwareUUID).Msg(FormatPeripheralMessage(n.name, n.at, n.payload))

	remoteID, ok := p.registration.RemotePeripheralID(n.hardwareUUID)
	if !ok {
		p.logger.Warn().Str("peripheral", n.hardwareUUID).Msg("Registered id not found, dropping notification")
		return
	}

	raw, err := p.caller.Call(ctx, "logPeripheralRead", remoteID, string(n.payload))
	if err != nil {
		p.logger.Error().Err(err).Str("peripheral_id", remoteID).Msg("Failed to report peripheral read")
	} else if !truthy(raw) {
		p.logger.Warn().Str("peripheral_id", remoteID).Msg("Coordinator rejected peripheral read")
	}

	if p.events == nil {
		return
	}

	if err := p.events.PublishPeripheralRead(ctx, &models.PeripheralReadEventData{
		PeripheralID: remoteID,
		HardwareUUID: n.hardwareUUID,
		Name:         n.name,
		Payload:      string(n.payload),
		Timestamp:    n.at,
	}); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to publish peripheral read event")
	}
}

// Write sends message to the peripheral. Writes are not queued: if the
// peripheral is not ready the message is dropped.
func (p *DataPath) Write(ctx context.Context, hardwareUUID string, message []byte) {
	if p.writer == nil {
		p.logger.Warn().Str("peripheral", hardwareUUID).Msg("Peripheral not connected")
		return
	}

	err := p.writer.Write(ctx, hardwareUUID, message)

	switch {
	case err == nil:
		p.logger.Debug().Str("peripheral", hardwareUUID).Int("bytes", len(message)).Msg("Wrote to peripheral")
	case errors.Is(err, ble.ErrNotConnected):
		p.logger.Warn().Str("peripheral", hardwareUUID).Msg("Peripheral not connected")
	default:
		p.logger.Error().Err(err).Str("peripheral", hardwareUUID).Msg("Failed to write to peripheral")
	}
}

// FormatPeripheralMessage renders a notification as `name [02/Jan/06:15:04:05] "payload"`.
func FormatPeripheralMessage(name string, at time.Time, payload []byte) string {
	return fmt.Sprintf("%s [%s] %q", name, at.Format(peripheralTimeFormat), payload)
}
