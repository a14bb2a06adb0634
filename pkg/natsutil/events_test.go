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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/models"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:     "adds subject when list empty",
			subjects: nil,
			subject:  SubjectCallResult,
			want:     []string{SubjectCallResult},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"gafo.calls.*"},
			subject:  SubjectCallResult,
			want:     []string{"gafo.calls.*"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"gafo.>"},
			subject:  SubjectPeripheralRead,
			want:     []string{"gafo.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"gafo.calls.*"},
			subject:  SubjectPeripheralRead,
			want:     []string{"gafo.calls.*", SubjectPeripheralRead},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "gafo.calls.result", "gafo.calls.result", true},
		{"single wildcard", "gafo.*.result", "gafo.calls.result", true},
		{"greater wildcard", "gafo.>", "gafo.calls.result", true},
		{"greater wildcard needs a token", "gafo.calls.result.>", "gafo.calls.result", false},
		{"no match length", "gafo.*", "gafo.calls.result", false},
		{"no match tokens", "events.syslog.*", "gafo.calls.result", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := matchesSubject(tc.pattern, tc.subject); got != tc.expected {
				t.Fatalf("matchesSubject(%q, %q) = %t, want %t", tc.pattern, tc.subject, got, tc.expected)
			}
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats no stream response", nats.ErrNoStreamResponse, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := isStreamMissingErr(tc.err); got != tc.expected {
				t.Fatalf("isStreamMissingErr(%v) = %t, want %t", tc.err, got, tc.expected)
			}
		})
	}
}

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	t.Cleanup(srv.Shutdown)

	return srv
}

func TestPublishEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := runJetStreamServer(t)

	nc, err := Connect(srv.ClientURL(), nil, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	pub, err := CreateEventPublisherWithDomain(ctx, nc, "", "gafo-events", "gafo/edge-1", nil, logger.NewTestLogger())
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, pub.PublishCallResult(ctx, &models.CallResultEventData{
		CallID:    "c1",
		ScriptID:  "s1",
		Script:    "ping",
		Stdout:    "hi\n",
		Timestamp: at,
	}))
	require.NoError(t, pub.PublishPeripheralRead(ctx, &models.PeripheralReadEventData{
		PeripheralID: "p1",
		HardwareUUID: "AA:BB",
		Name:         "thermo",
		Payload:      "42",
		Timestamp:    at,
	}))

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "gafo-events")
	require.NoError(t, err)

	msg, err := stream.GetLastMsgForSubject(ctx, SubjectCallResult)
	require.NoError(t, err)

	var event struct {
		models.CloudEvent
		Data models.CallResultEventData `json:"data"`
	}

	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, "gafo/edge-1", event.Source)
	assert.Equal(t, eventTypeCallResult, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "c1", event.Data.CallID)
	assert.Equal(t, "hi\n", event.Data.Stdout)

	msg, err = stream.GetLastMsgForSubject(ctx, SubjectPeripheralRead)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Data), `"payload":"42"`)
}

func TestCreateEventPublisherExtendsExistingStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := runJetStreamServer(t)

	nc, err := Connect(srv.ClientURL(), nil, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{Name: "shared", Subjects: []string{"events.>"}})
	require.NoError(t, err)

	_, err = CreateEventPublisherWithDomain(ctx, nc, "", "shared", "gafo/edge-1", []string{"gafo.calls.*"}, nil)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "shared")
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"events.>", "gafo.calls.*", SubjectPeripheralRead}, info.Config.Subjects)
}

func TestTLSConfigErrors(t *testing.T) {
	_, err := TLSConfig(nil)
	require.ErrorIs(t, err, ErrTLSFilesRequired)

	_, err = TLSConfig(&models.TLSConfig{CertFile: "c.pem"})
	require.ErrorIs(t, err, ErrTLSFilesRequired)

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.pem")

	_, err = TLSConfig(&models.TLSConfig{CertFile: missing, KeyFile: missing, CAFile: missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load client certificate")

	_, err = Connect("nats://127.0.0.1:1", &models.TLSConfig{CertFile: missing, KeyFile: missing, CAFile: missing}, logger.NewTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build NATS TLS config")
}
