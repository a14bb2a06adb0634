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

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"
)

var errAddressNotSeen = errors.New("device has not been seen in a scan")

// TinyGoAdapter implements Adapter on top of tinygo.org/x/bluetooth.
type TinyGoAdapter struct {
	adapter *bluetooth.Adapter

	mu   sync.Mutex
	seen map[string]bluetooth.Address
}

// NewTinyGoAdapter wraps the system's default Bluetooth adapter.
func NewTinyGoAdapter() *TinyGoAdapter {
	return &TinyGoAdapter{
		adapter: bluetooth.DefaultAdapter,
		seen:    make(map[string]bluetooth.Address),
	}
}

func (a *TinyGoAdapter) Enable() error {
	return a.adapter.Enable()
}

func (a *TinyGoAdapter) Scan(ctx context.Context, found func(hardwareID string)) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			id := result.Address.String()

			a.mu.Lock()
			a.seen[normalizeID(id)] = result.Address
			a.mu.Unlock()

			found(id)
		})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		_ = a.adapter.StopScan()
		return <-errCh
	}
}

func (a *TinyGoAdapter) StopScan() error {
	return a.adapter.StopScan()
}

func (a *TinyGoAdapter) Connect(ctx context.Context, hardwareID string) (Device, error) {
	a.mu.Lock()
	addr, ok := a.seen[normalizeID(hardwareID)]
	a.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errAddressNotSeen, hardwareID)
	}

	dev, err := a.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		_ = dev.Disconnect()
		return nil, ctx.Err()
	}

	return &tinyGoDevice{dev: dev, id: hardwareID}, nil
}

func (a *TinyGoAdapter) SetDisconnectHandler(handler func(hardwareID string)) {
	a.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if !connected {
			handler(device.Address.String())
		}
	})
}

type tinyGoDevice struct {
	dev bluetooth.Device
	id  string
}

func (d *tinyGoDevice) UUID() string { return d.id }

func (d *tinyGoDevice) DiscoverServices() ([]Service, error) {
	svcs, err := d.dev.DiscoverServices(nil)
	if err != nil {
		return nil, err
	}

	out := make([]Service, 0, len(svcs))
	for i := range svcs {
		out = append(out, &tinyGoService{svc: svcs[i]})
	}

	return out, nil
}

func (d *tinyGoDevice) Disconnect() error {
	return d.dev.Disconnect()
}

type tinyGoService struct {
	svc bluetooth.DeviceService
}

func (s *tinyGoService) UUID() string { return s.svc.UUID().String() }

func (s *tinyGoService) DiscoverCharacteristics() ([]Characteristic, error) {
	chars, err := s.svc.DiscoverCharacteristics(nil)
	if err != nil {
		return nil, err
	}

	out := make([]Characteristic, 0, len(chars))
	for i := range chars {
		out = append(out, &tinyGoCharacteristic{char: chars[i]})
	}

	return out, nil
}

type tinyGoCharacteristic struct {
	char bluetooth.DeviceCharacteristic
}

func (c *tinyGoCharacteristic) UUID() string { return c.char.UUID().String() }

func (c *tinyGoCharacteristic) Subscribe(onData func(payload []byte)) error {
	return c.char.EnableNotifications(onData)
}

// Write sends p as a write request when the platform stack supports one,
// otherwise as a write command.
func (c *tinyGoCharacteristic) Write(p []byte, withoutResponse bool) error {
	var err error

	if writeAsCommand(withoutResponse) {
		_, err = c.char.WriteWithoutResponse(p)
	} else {
		_, err = writeRequest(c.char, p)
	}

	return err
}

// writeAsCommand reports whether a write goes out without response.
func writeAsCommand(withoutResponse bool) bool {
	return withoutResponse || !writeRequestSupported
}
