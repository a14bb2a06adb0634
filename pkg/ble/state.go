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
	"fmt"

	"github.com/carverauto/gafo/pkg/logger"
)

// State is the lifecycle position of a peripheral connection.
type State int

const (
	StateDiscovered State = iota
	StateConnecting
	StateConnected
	StateServicesDiscovering
	StateServicesDiscovered
	StateCharacteristicsDiscovering
	StateReady
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateServicesDiscovering:
		return "services_discovering"
	case StateServicesDiscovered:
		return "services_discovered"
	case StateCharacteristicsDiscovering:
		return "characteristics_discovering"
	case StateReady:
		return "ready"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventType identifies what happened to a peripheral.
type EventType int

const (
	EventFound EventType = iota + 1
	EventConnectSucceeded
	EventConnectFailed
	EventServicesFound
	EventServiceDiscoveryFailed
	EventCharacteristicsFound
	EventCharacteristicDiscoveryFailed
	EventSubscribeSucceeded
	EventSubscribeFailed
	EventLost
)

func (t EventType) String() string {
	switch t {
	case EventFound:
		return "found"
	case EventConnectSucceeded:
		return "connect_succeeded"
	case EventConnectFailed:
		return "connect_failed"
	case EventServicesFound:
		return "services_found"
	case EventServiceDiscoveryFailed:
		return "service_discovery_failed"
	case EventCharacteristicsFound:
		return "characteristics_found"
	case EventCharacteristicDiscoveryFailed:
		return "characteristic_discovery_failed"
	case EventSubscribeSucceeded:
		return "subscribe_succeeded"
	case EventSubscribeFailed:
		return "subscribe_failed"
	case EventLost:
		return "lost"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is an input to the state machine. Completion events carry the epoch
// of the command that produced them.
type Event struct {
	Type            EventType
	Epoch           uint64
	Device          Device
	Services        []Service
	Characteristics []Characteristic
	Err             error
}

func (e Event) isCompletion() bool {
	return e.Type != EventFound && e.Type != EventLost
}

// CommandType identifies a hardware operation requested by the state machine.
type CommandType int

const (
	CmdConnect CommandType = iota + 1
	CmdDiscoverServices
	CmdDiscoverCharacteristics
	CmdSubscribe
	CmdDisconnect
)

func (t CommandType) String() string {
	switch t {
	case CmdConnect:
		return "connect"
	case CmdDiscoverServices:
		return "discover_services"
	case CmdDiscoverCharacteristics:
		return "discover_characteristics"
	case CmdSubscribe:
		return "subscribe"
	case CmdDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("CommandType(%d)", int(t))
	}
}

// Command is a side effect for the runtime to carry out.
type Command struct {
	Type           CommandType
	Epoch          uint64
	Device         Device
	Service        Service
	Characteristic Characteristic
}

// Machine holds the transition rules. Step touches nothing but the
// connection it is given; hardware is only reached through the returned
// commands.
type Machine struct {
	logger logger.Logger
}

func NewMachine(log logger.Logger) *Machine {
	return &Machine{logger: log}
}

// Step applies ev to c and returns the commands it implies.
func (m *Machine) Step(c *Connection, ev Event) []Command {
	if ev.isCompletion() && ev.Epoch != c.Epoch {
		return m.stale(c, ev)
	}

	switch ev.Type {
	case EventFound:
		return m.found(c)
	case EventConnectSucceeded:
		return m.connected(c, ev)
	case EventConnectFailed:
		m.logger.Warn().Err(ev.Err).Str("peripheral", c.UUID).Msg("Failed to connect to peripheral")

		c.reset()
		c.State = StateDiscovered

		return nil
	case EventServicesFound:
		return m.servicesFound(c, ev)
	case EventCharacteristicsFound:
		return m.characteristicsFound(c, ev)
	case EventServiceDiscoveryFailed, EventCharacteristicDiscoveryFailed:
		m.logger.Warn().Err(ev.Err).Str("peripheral", c.UUID).Stringer("event", ev.Type).Msg("Discovery failed")

		return m.drop(c)
	case EventSubscribeSucceeded:
		m.logger.Info().Str("peripheral", c.UUID).Msg("Subscribed to read characteristic")

		return nil
	case EventSubscribeFailed:
		m.logger.Warn().Err(ev.Err).Str("peripheral", c.UUID).Msg("Failed to subscribe to read characteristic")

		return nil
	case EventLost:
		return m.lost(c)
	default:
		m.logger.Warn().Stringer("event", ev.Type).Str("peripheral", c.UUID).Msg("Unknown peripheral event")

		return nil
	}
}

func (m *Machine) stale(c *Connection, ev Event) []Command {
	m.logger.Debug().
		Str("peripheral", c.UUID).
		Stringer("event", ev.Type).
		Uint64("event_epoch", ev.Epoch).
		Uint64("epoch", c.Epoch).
		Msg("Discarding completion from an earlier connection")

	// A link that came up after we gave up on it is nobody's; release it.
	if ev.Type == EventConnectSucceeded && ev.Device != nil {
		return []Command{{Type: CmdDisconnect, Epoch: ev.Epoch, Device: ev.Device}}
	}

	return nil
}

func (m *Machine) found(c *Connection) []Command {
	if c.State != StateDiscovered && c.State != StateDisconnected {
		return nil
	}

	m.logger.Info().Str("peripheral", c.UUID).Str("name", c.Config.Name).Msg("Discovered peripheral, connecting")

	c.State = StateConnecting

	return []Command{{Type: CmdConnect, Epoch: c.Epoch}}
}

func (m *Machine) connected(c *Connection, ev Event) []Command {
	if c.State != StateConnecting {
		return nil
	}

	c.Device = ev.Device
	c.Connected = true
	c.State = StateConnected

	m.logger.Info().Str("peripheral", c.UUID).Msg("Connected to peripheral")

	c.State = StateServicesDiscovering

	return []Command{{Type: CmdDiscoverServices, Epoch: c.Epoch, Device: c.Device}}
}

func (m *Machine) servicesFound(c *Connection, ev Event) []Command {
	if c.ServicesDiscovered {
		m.logger.Debug().Str("peripheral", c.UUID).Msg("Ignoring duplicate service discovery")
		return nil
	}

	c.ServicesDiscovered = true
	c.State = StateServicesDiscovered

	for _, svc := range ev.Services {
		if SameUUID(svc.UUID(), c.Config.ServiceUUID) {
			c.Service = svc
			c.State = StateCharacteristicsDiscovering

			return []Command{{Type: CmdDiscoverCharacteristics, Epoch: c.Epoch, Service: svc}}
		}
	}

	m.logger.Warn().
		Str("peripheral", c.UUID).
		Str("service_uuid", c.Config.ServiceUUID).
		Int("services", len(ev.Services)).
		Msg("Configured service not found on peripheral")

	return m.drop(c)
}

func (m *Machine) characteristicsFound(c *Connection, ev Event) []Command {
	if c.CharacteristicsDiscovered {
		m.logger.Debug().Str("peripheral", c.UUID).Msg("Ignoring duplicate characteristic discovery")
		return nil
	}

	c.CharacteristicsDiscovered = true

	read, readOK := m.pick(c, ev.Characteristics, c.Config.ReadCharacteristicUUID, "read")
	write, writeOK := m.pick(c, ev.Characteristics, c.Config.WriteCharacteristicUUID, "write")

	if !readOK || !writeOK {
		return m.drop(c)
	}

	c.ReadCharacteristic = read
	c.WriteCharacteristic = write
	c.State = StateReady

	m.logger.Info().
		Str("peripheral", c.UUID).
		Bool("readable", read != nil).
		Bool("writable", write != nil).
		Msg("Peripheral ready")

	if read == nil || c.Subscribed {
		return nil
	}

	c.Subscribed = true

	return []Command{{Type: CmdSubscribe, Epoch: c.Epoch, Characteristic: read}}
}

// pick finds the characteristic configured under want. An empty want is
// not an error; a configured characteristic missing from the device is.
func (m *Machine) pick(c *Connection, chars []Characteristic, want, role string) (Characteristic, bool) {
	if want == "" {
		m.logger.Debug().Str("peripheral", c.UUID).Str("role", role).Msg("No characteristic configured")
		return nil, true
	}

	for _, ch := range chars {
		if SameUUID(ch.UUID(), want) {
			return ch, true
		}
	}

	m.logger.Warn().
		Str("peripheral", c.UUID).
		Str("role", role).
		Str("characteristic_uuid", want).
		Msg("Configured characteristic not found on peripheral")

	return nil, false
}

// drop tears the current link down and makes the peripheral discoverable again.
func (m *Machine) drop(c *Connection) []Command {
	var cmds []Command

	if c.Device != nil {
		cmds = append(cmds, Command{Type: CmdDisconnect, Epoch: c.Epoch, Device: c.Device})
	}

	c.reset()
	c.State = StateDiscovered

	return cmds
}

// lost handles a disconnect callback. The callback does not name a link, so
// it only applies while one is up; an in-flight connect reports through
// ConnectFailed.
func (m *Machine) lost(c *Connection) []Command {
	if !c.Connected {
		m.logger.Debug().Str("peripheral", c.UUID).Stringer("state", c.State).Msg("Ignoring disconnect with no link up")
		return nil
	}

	m.logger.Info().Str("peripheral", c.UUID).Stringer("state", c.State).Msg("Peripheral disconnected")

	c.reset()
	c.State = StateDiscovered

	return nil
}
