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
	"time"

	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/models"
)

var (
	// ErrNotConnected is returned by Write when the peripheral has no usable
	// write characteristic.
	ErrNotConnected = errors.New("peripheral not connected")
	// ErrUnknownPeripheral is returned for hardware ids that are not configured.
	ErrUnknownPeripheral = errors.New("peripheral not configured")
	// ErrStopped is returned once the manager's loop has exited.
	ErrStopped = errors.New("ble manager stopped")
)

const defaultScanWindow = 6 * time.Second

// NotificationFunc receives data pushed by a peripheral's read characteristic.
type NotificationFunc func(hardwareUUID, name string, payload []byte)

// Options configures a Manager.
type Options struct {
	ScanWindow     time.Duration
	OnNotification NotificationFunc
	Logger         logger.Logger
}

type loopEvent struct {
	uuid string
	ev   Event
}

// Manager runs the scan cycle and owns every Connection. All connection
// state is touched from a single goroutine; hardware calls run on their own
// goroutines and report back as events.
type Manager struct {
	adapter  Adapter
	machine  *Machine
	logger   logger.Logger
	window   time.Duration
	onNotify NotificationFunc

	// configured maps normalized hardware ids to configuration keys.
	configured  map[string]string
	peripherals map[string]models.PeripheralConfig

	events   chan loopEvent
	requests chan func()
	done     chan struct{}
	wg       sync.WaitGroup

	// owned by the loop
	conns map[string]*Connection

	stateMu sync.RWMutex
	states  map[string]State
}

// NewManager creates a manager for the given peripherals, keyed by hardware UUID.
func NewManager(adapter Adapter, peripherals map[string]models.PeripheralConfig, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	if opts.ScanWindow <= 0 {
		opts.ScanWindow = defaultScanWindow
	}

	m := &Manager{
		adapter:     adapter,
		machine:     NewMachine(opts.Logger),
		logger:      opts.Logger,
		window:      opts.ScanWindow,
		onNotify:    opts.OnNotification,
		configured:  make(map[string]string, len(peripherals)),
		peripherals: make(map[string]models.PeripheralConfig, len(peripherals)),
		events:      make(chan loopEvent, 64),
		requests:    make(chan func()),
		done:        make(chan struct{}),
		conns:       make(map[string]*Connection),
		states:      make(map[string]State),
	}

	for id, cfg := range peripherals {
		m.configured[normalizeID(id)] = id
		m.peripherals[id] = cfg
	}

	return m
}

// Run enables the adapter and drives the scan cycle until ctx is done.
// Connected peripherals are disconnected before it returns.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.adapter.Enable(); err != nil {
		close(m.done)
		return fmt.Errorf("failed to enable bluetooth adapter: %w", err)
	}

	m.adapter.SetDisconnectHandler(func(hardwareID string) {
		if id, ok := m.resolve(hardwareID); ok {
			m.post(id, Event{Type: EventLost})
		}
	})

	m.logger.Info().Int("peripherals", len(m.peripherals)).Dur("scan_window", m.window).Msg("Starting BLE manager")

	m.wg.Add(1)

	go m.scanLoop(ctx)

	m.loop(ctx)

	close(m.done)
	m.disconnectAll()
	m.wg.Wait()

	return nil
}

// Write sends p to the peripheral's write characteristic with response. It
// fails with ErrNotConnected unless characteristic discovery has completed
// for the current connection, and also when that connection is lost before
// the write is confirmed.
func (m *Manager) Write(ctx context.Context, hardwareUUID string, p []byte) error {
	id, ok := m.resolve(hardwareUUID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeripheral, hardwareUUID)
	}

	var (
		ch    Characteristic
		epoch uint64
	)

	if err := m.inLoop(ctx, func() {
		if c, ok := m.conns[id]; ok && c.Writable() {
			ch, epoch = c.WriteCharacteristic, c.Epoch
		}
	}); err != nil {
		return err
	}

	if ch == nil {
		return ErrNotConnected
	}

	writeErr := ch.Write(p, false)

	var current uint64

	if err := m.inLoop(ctx, func() {
		current = m.conns[id].Epoch
	}); err != nil {
		return err
	}

	if current != epoch {
		return fmt.Errorf("%w: link to %s dropped during write", ErrNotConnected, id)
	}

	if writeErr != nil {
		return fmt.Errorf("failed to write to %s: %w", id, writeErr)
	}

	return nil
}

// inLoop runs fn on the loop goroutine and waits for it to finish.
func (m *Manager) inLoop(ctx context.Context, fn func()) error {
	finished := make(chan struct{})

	select {
	case m.requests <- func() { fn(); close(finished) }:
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished

	return nil
}

// State returns the lifecycle state of a peripheral seen at least once.
func (m *Manager) State(hardwareUUID string) (State, bool) {
	id, ok := m.resolve(hardwareUUID)
	if !ok {
		return 0, false
	}

	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	s, ok := m.states[id]

	return s, ok
}

// Snapshot returns the state of every peripheral seen so far.
func (m *Manager) Snapshot() map[string]State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	out := make(map[string]State, len(m.states))
	for id, s := range m.states {
		out[id] = s
	}

	return out
}

func (m *Manager) resolve(hardwareID string) (string, bool) {
	id, ok := m.configured[normalizeID(hardwareID)]
	return id, ok
}

func (m *Manager) post(id string, ev Event) bool {
	select {
	case m.events <- loopEvent{uuid: id, ev: ev}:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case le := <-m.events:
			m.handle(ctx, le)
		case fn := <-m.requests:
			fn()
		}
	}
}

func (m *Manager) handle(ctx context.Context, le loopEvent) {
	c, ok := m.conns[le.uuid]
	if !ok {
		if le.ev.Type != EventFound {
			return
		}

		c = NewConnection(le.uuid, m.peripherals[le.uuid])
		m.conns[le.uuid] = c
	}

	cmds := m.machine.Step(c, le.ev)

	m.stateMu.Lock()
	m.states[le.uuid] = c.State
	m.stateMu.Unlock()

	for _, cmd := range cmds {
		m.execute(ctx, c.UUID, cmd)
	}
}

func (m *Manager) execute(ctx context.Context, id string, cmd Command) {
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		switch cmd.Type {
		case CmdConnect:
			dev, err := m.adapter.Connect(ctx, id)
			if err != nil {
				m.post(id, Event{Type: EventConnectFailed, Epoch: cmd.Epoch, Err: err})
				return
			}

			if !m.post(id, Event{Type: EventConnectSucceeded, Epoch: cmd.Epoch, Device: dev}) {
				_ = dev.Disconnect()
			}
		case CmdDiscoverServices:
			svcs, err := cmd.Device.DiscoverServices()
			if err != nil {
				m.post(id, Event{Type: EventServiceDiscoveryFailed, Epoch: cmd.Epoch, Err: err})
				return
			}

			m.post(id, Event{Type: EventServicesFound, Epoch: cmd.Epoch, Services: svcs})
		case CmdDiscoverCharacteristics:
			chars, err := cmd.Service.DiscoverCharacteristics()
			if err != nil {
				m.post(id, Event{Type: EventCharacteristicDiscoveryFailed, Epoch: cmd.Epoch, Err: err})
				return
			}

			m.post(id, Event{Type: EventCharacteristicsFound, Epoch: cmd.Epoch, Characteristics: chars})
		case CmdSubscribe:
			if err := cmd.Characteristic.Subscribe(m.notifier(id)); err != nil {
				m.post(id, Event{Type: EventSubscribeFailed, Epoch: cmd.Epoch, Err: err})
				return
			}

			m.post(id, Event{Type: EventSubscribeSucceeded, Epoch: cmd.Epoch})
		case CmdDisconnect:
			if err := cmd.Device.Disconnect(); err != nil {
				m.logger.Warn().Err(err).Str("peripheral", id).Msg("Failed to disconnect peripheral")
			}
		}
	}()
}

func (m *Manager) notifier(id string) func([]byte) {
	name := m.peripherals[id].Name

	return func(payload []byte) {
		if m.onNotify == nil {
			return
		}

		data := make([]byte, len(payload))
		copy(data, payload)

		m.onNotify(id, name, data)
	}
}

func (m *Manager) scanLoop(ctx context.Context) {
	defer m.wg.Done()

	found := func(hardwareID string) {
		if id, ok := m.resolve(hardwareID); ok {
			m.post(id, Event{Type: EventFound})
		}
	}

	for ctx.Err() == nil {
		m.scanWindow(ctx, found)
	}
}

func (m *Manager) scanWindow(ctx context.Context, found func(string)) {
	windowCtx, cancel := context.WithTimeout(ctx, m.window)
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- m.adapter.Scan(windowCtx, found)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to start scanning, Bluetooth may be off")
		}

		<-windowCtx.Done()
	case <-windowCtx.Done():
		if err := m.adapter.StopScan(); err != nil {
			m.logger.Debug().Err(err).Msg("Failed to stop scanning")
		}

		<-errCh
	}
}

// disconnectAll runs after the loop has exited, so it owns conns.
func (m *Manager) disconnectAll() {
	for id, c := range m.conns {
		if c.Device == nil {
			continue
		}

		if err := c.Device.Disconnect(); err != nil {
			m.logger.Warn().Err(err).Str("peripheral", id).Msg("Failed to disconnect peripheral on shutdown")
		}
	}
}
