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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	path, creds, err := parseArgs([]string{"-u", "alice", "--password", "secret", "/etc/gafo/agent.json"})
	require.NoError(t, err)

	assert.Equal(t, "/etc/gafo/agent.json", path)
	assert.Equal(t, "alice", creds.username)
	assert.Equal(t, "secret", creds.password)
}

func TestParseArgsRequiresConfigFile(t *testing.T) {
	_, _, err := parseArgs([]string{"-u", "alice"})
	assert.ErrorIs(t, err, errUsage)

	_, _, err = parseArgs([]string{"a.json", "b.json"})
	assert.ErrorIs(t, err, errUsage)
}

func TestParseArgsVersion(t *testing.T) {
	_, _, err := parseArgs([]string{"--version"})
	assert.ErrorIs(t, err, errVersionRequested)
}
