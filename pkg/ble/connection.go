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

package ble

import "github.com/carverauto/gafo/pkg/models"

// Connection is the record kept for one configured peripheral. It is created
// on first discovery and lives for the rest of the process; a disconnect
// resets it and starts a new epoch.
type Connection struct {
	UUID   string
	Config models.PeripheralConfig

	Device Device
	State  State
	// Epoch increments on every disconnect. Completions issued in an older
	// epoch are discarded.
	Epoch uint64

	Connected                 bool
	ServicesDiscovered        bool
	CharacteristicsDiscovered bool

	Service             Service
	ReadCharacteristic  Characteristic
	WriteCharacteristic Characteristic
	// Subscribed is set once the notification subscription has been issued
	// for the current epoch.
	Subscribed bool
}

// NewConnection creates the record for a freshly discovered peripheral.
func NewConnection(uuid string, cfg models.PeripheralConfig) *Connection {
	return &Connection{
		UUID:   uuid,
		Config: cfg,
		State:  StateDiscovered,
	}
}

// Writable reports whether the write characteristic may be used.
func (c *Connection) Writable() bool {
	return c.CharacteristicsDiscovered && c.WriteCharacteristic != nil
}

// reset drops everything learned during the current epoch.
func (c *Connection) reset() {
	c.Device = nil
	c.Connected = false
	c.ServicesDiscovered = false
	c.CharacteristicsDiscovered = false
	c.Service = nil
	c.ReadCharacteristic = nil
	c.WriteCharacteristic = nil
	c.Subscribed = false
	c.Epoch++
	c.State = StateDisconnected
}
