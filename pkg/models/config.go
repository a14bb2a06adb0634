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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/gafo/pkg/logger"
)

const (
	defaultCoordinatorURL = "ws://localhost:3000/websocket"
	defaultPulseInterval  = 10 * time.Second
	defaultScanWindow     = 6 * time.Second
	defaultEventStream    = "gafo-events"
)

var (
	errCoordinatorURLRequired = errors.New("coordinator.url is required")
	errScriptExecuteRequired  = errors.New("execute is required")
	errServiceUUIDRequired    = errors.New("service_uuid is required")
	errNegativeInterval       = errors.New("interval must be non-negative")
)

// Duration accepts "10s" style strings or nanoseconds in config files.
type Duration = logger.Duration

// ScriptConfig is a locally registered script. Execute is the shell command
// template; call parameters are appended to it as a single quoted argument.
type ScriptConfig struct {
	Execute string `json:"execute"`
}

// PeripheralConfig describes a BLE peripheral the agent should manage, keyed
// by hardware UUID in AgentConfiguration.Peripherals.
type PeripheralConfig struct {
	Name                    string `json:"name"`
	ServiceUUID             string `json:"service_uuid"`
	ReadCharacteristicUUID  string `json:"read_characteristic_uuid,omitempty"`
	WriteCharacteristicUUID string `json:"write_characteristic_uuid,omitempty"`
}

// AgentConfiguration is the part of the configuration the coordinator knows
// about. It is sent verbatim in registerSlave.
type AgentConfiguration struct {
	Scripts     map[string]ScriptConfig     `json:"scripts"`
	Peripherals map[string]PeripheralConfig `json:"peripherals"`
}

// Script returns the script registered under name.
func (a *AgentConfiguration) Script(name string) (ScriptConfig, bool) {
	s, ok := a.Scripts[name]
	return s, ok
}

// Peripheral returns the peripheral configured for a hardware UUID. Hardware
// UUIDs are matched case-insensitively since adapters disagree on casing.
func (a *AgentConfiguration) Peripheral(hardwareUUID string) (PeripheralConfig, bool) {
	if p, ok := a.Peripherals[hardwareUUID]; ok {
		return p, true
	}

	for key, p := range a.Peripherals {
		if strings.EqualFold(key, hardwareUUID) {
			return p, true
		}
	}

	return PeripheralConfig{}, false
}

// CoordinatorConfig points the agent at the coordinator's DDP endpoint.
type CoordinatorConfig struct {
	URL    string `json:"url"`
	Origin string `json:"origin,omitempty"`
}

// BluetoothConfig controls the BLE scan cycle.
type BluetoothConfig struct {
	Disabled   bool     `json:"disabled"`
	ScanWindow Duration `json:"scan_window,omitempty"`
}

// TLSConfig holds the client certificate used for mTLS connections.
type TLSConfig struct {
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	CAFile     string `json:"ca_file"`
	ServerName string `json:"server_name,omitempty"`
}

// NATSConfig configures the optional local event bus.
type NATSConfig struct {
	URL      string     `json:"url"`
	Domain   string     `json:"domain,omitempty"`
	Stream   string     `json:"stream,omitempty"`
	Subjects []string   `json:"subjects,omitempty"`
	TLS      *TLSConfig `json:"tls,omitempty"`
}

// Enabled reports whether events should be published at all.
func (c *NATSConfig) Enabled() bool {
	return c != nil && c.URL != ""
}

// Config is the agent's configuration file.
type Config struct {
	AgentConfiguration

	Coordinator   CoordinatorConfig `json:"coordinator"`
	Logging       *logger.Config    `json:"logging,omitempty"`
	PulseInterval Duration          `json:"pulse_interval,omitempty"`
	ScriptTimeout Duration          `json:"script_timeout,omitempty"`
	Bluetooth     BluetoothConfig   `json:"bluetooth"`
	Events        *NATSConfig       `json:"events,omitempty"`
}

// ApplyDefaults fills in every optional field that was left empty.
func (c *Config) ApplyDefaults() {
	if c.Coordinator.URL == "" {
		c.Coordinator.URL = defaultCoordinatorURL
	}

	if c.PulseInterval == 0 {
		c.PulseInterval = Duration(defaultPulseInterval)
	}

	if c.Bluetooth.ScanWindow == 0 {
		c.Bluetooth.ScanWindow = Duration(defaultScanWindow)
	}

	if c.Scripts == nil {
		c.Scripts = make(map[string]ScriptConfig)
	}

	if c.Peripherals == nil {
		c.Peripherals = make(map[string]PeripheralConfig)
	}

	if c.Events.Enabled() && c.Events.Stream == "" {
		c.Events.Stream = defaultEventStream
	}
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.Coordinator.URL == "" {
		return errCoordinatorURLRequired
	}

	if c.PulseInterval < 0 || c.ScriptTimeout < 0 || c.Bluetooth.ScanWindow < 0 {
		return errNegativeInterval
	}

	for name, script := range c.Scripts {
		if strings.TrimSpace(script.Execute) == "" {
			return fmt.Errorf("scripts.%s: %w", name, errScriptExecuteRequired)
		}
	}

	for id, p := range c.Peripherals {
		if p.ServiceUUID == "" {
			return fmt.Errorf("peripherals.%s: %w", id, errServiceUUIDRequired)
		}
	}

	return nil
}
