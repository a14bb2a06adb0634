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
	"sync"

	"github.com/carverauto/gafo/pkg/models"
)

// Registration holds the coordinator's current RegisteredAgent. It is
// replaced wholesale; every lookup is a single read under the lock.
type Registration struct {
	mu      sync.RWMutex
	current *models.RegisteredAgent
}

// Set replaces the registration.
func (r *Registration) Set(ra *models.RegisteredAgent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = ra
}

// ScriptName resolves a remote script id to a configured script name.
func (r *Registration) ScriptName(scriptID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.ScriptName(scriptID)
}

// PeripheralUUID resolves a remote peripheral id to a hardware UUID.
func (r *Registration) PeripheralUUID(peripheralID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.PeripheralUUID(peripheralID)
}

// RemotePeripheralID resolves a hardware UUID to the coordinator's id for it.
func (r *Registration) RemotePeripheralID(hardwareUUID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.RemotePeripheralID(hardwareUUID)
}
