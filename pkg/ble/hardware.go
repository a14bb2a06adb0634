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

// Package ble drives the lifecycle of the BLE peripherals the agent manages:
// scan, connect, service and characteristic discovery, notifications and writes.
package ble

import "context"

//go:generate mockgen -destination=mock_ble.go -package=ble github.com/carverauto/gafo/pkg/ble Adapter,Device,Service,Characteristic

// Adapter is the local Bluetooth radio.
type Adapter interface {
	Enable() error
	// Scan reports the hardware id of every advertisement it sees. It blocks
	// until StopScan is called or ctx is done.
	Scan(ctx context.Context, found func(hardwareID string)) error
	StopScan() error
	Connect(ctx context.Context, hardwareID string) (Device, error)
	// SetDisconnectHandler registers a callback for devices dropping their link.
	SetDisconnectHandler(handler func(hardwareID string))
}

// Device is a connected peripheral.
type Device interface {
	UUID() string
	DiscoverServices() ([]Service, error)
	Disconnect() error
}

// Service is a GATT service on a connected peripheral.
type Service interface {
	UUID() string
	DiscoverCharacteristics() ([]Characteristic, error)
}

// Characteristic is a GATT characteristic.
type Characteristic interface {
	UUID() string
	Subscribe(onData func(payload []byte)) error
	Write(p []byte, withoutResponse bool) error
}
