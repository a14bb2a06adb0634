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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateOriginalConfigShape(t *testing.T) {
	path := writeConfig(t, `{
		"scripts": {"ping": {"execute": "echo hi"}},
		"peripherals": {
			"AA:BB": {
				"name": "thermo",
				"service_uuid": "S1",
				"read_characteristic_uuid": "R1"
			}
		}
	}`)

	var cfg models.Config

	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "echo hi", cfg.Scripts["ping"].Execute)
	assert.Equal(t, "S1", cfg.Peripherals["AA:BB"].ServiceUUID)
	assert.Equal(t, "R1", cfg.Peripherals["AA:BB"].ReadCharacteristicUUID)
	assert.Empty(t, cfg.Peripherals["AA:BB"].WriteCharacteristicUUID)

	// defaults
	assert.Equal(t, "ws://localhost:3000/websocket", cfg.Coordinator.URL)
	assert.Equal(t, models.Duration(10*time.Second), cfg.PulseInterval)
	assert.Equal(t, models.Duration(6*time.Second), cfg.Bluetooth.ScanWindow)
	assert.Nil(t, cfg.Logging)
	assert.False(t, cfg.Events.Enabled())
}

func TestLoadAndValidateEnvOverrides(t *testing.T) {
	t.Setenv("GAFO_COORDINATOR_URL", "wss://g.gafo.us/websocket")
	t.Setenv("GAFO_PULSE_INTERVAL", "3s")
	t.Setenv("GAFO_BLUETOOTH_DISABLED", "true")
	t.Setenv("GAFO_EVENTS_URL", "nats://127.0.0.1:4222")

	path := writeConfig(t, `{"scripts": {}, "peripherals": {}}`)

	var cfg models.Config

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "wss://g.gafo.us/websocket", cfg.Coordinator.URL)
	assert.Equal(t, models.Duration(3*time.Second), cfg.PulseInterval)
	assert.True(t, cfg.Bluetooth.Disabled)
	require.True(t, cfg.Events.Enabled())
	assert.Equal(t, "gafo-events", cfg.Events.Stream)
}

func TestLoadAndValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unparseable", body: `{"scripts": `},
		{name: "script without execute", body: `{"scripts": {"ping": {"execute": " "}}}`},
		{name: "peripheral without service", body: `{"peripherals": {"AA:BB": {"name": "x"}}}`},
		{name: "bad duration", body: `{"pulse_interval": "soon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg models.Config

			err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), writeConfig(t, tt.body), &cfg)
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg models.Config

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "/nonexistent/agent.json", &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvConfigLoaderRejectsNonPointer(t *testing.T) {
	loader := NewEnvConfigLoader(logger.NewTestLogger(), DefaultEnvPrefix)

	assert.ErrorIs(t, loader.Load(context.Background(), "", models.Config{}), ErrDstMustBeNonNilPointer)

	n := 3
	assert.ErrorIs(t, loader.Load(context.Background(), "", &n), ErrDstMustBePointerToStruct)
}

func TestFileConfigLoaderErrors(t *testing.T) {
	loader := &FileConfigLoader{}

	var cfg models.Config

	err := loader.Load(context.Background(), writeConfig(t, "  \n"), &cfg)
	require.ErrorIs(t, err, ErrEmptyConfigFile)

	err = loader.Load(context.Background(), writeConfig(t, "{\n  \"scripts\": {\n    \"ping\": oops\n  }\n}"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent.json' at line 3")

	err = loader.Load(context.Background(), writeConfig(t, "{\n  \"peripherals\": []\n}"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at line 2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, loader.Load(ctx, writeConfig(t, "{}"), &cfg), context.Canceled)
}
