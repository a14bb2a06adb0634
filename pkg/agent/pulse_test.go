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
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/gafo/pkg/logger"
)

func newTestPulse(caller Caller) *Pulse {
	p := NewPulse(caller, "user-1", "sess-1", 5*time.Millisecond, logger.NewTestLogger())
	p.InitialBackoff = time.Millisecond

	return p
}

func waitStopped(t *testing.T, p *Pulse) {
	t.Helper()

	select {
	case <-p.Stopped():
	case <-time.After(2 * time.Second):
		t.Fatal("pulse did not stop")
	}
}

func TestPulseStopsWhenUnrecognized(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(json.RawMessage(`false`), nil).Times(1)

	p := newTestPulse(caller)

	go p.Run(context.Background())

	waitStopped(t, p)
	assert.Equal(t, StopUnrecognized, p.Reason())

	// several intervals later there has been no further beat
	time.Sleep(20 * time.Millisecond)
}

func TestPulseReschedulesWhileAlive(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	gomock.InOrder(
		caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(json.RawMessage(`true`), nil).Times(3),
		caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(json.RawMessage(`null`), nil),
	)

	p := newTestPulse(caller)

	go p.Run(context.Background())

	waitStopped(t, p)
	assert.Equal(t, StopUnrecognized, p.Reason())
}

func TestPulseRetriesTransportErrors(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	gomock.InOrder(
		caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(nil, errors.New("write: broken pipe")).Times(2),
		caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(json.RawMessage(`true`), nil),
		caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(json.RawMessage(`false`), nil),
	)

	p := newTestPulse(caller)

	go p.Run(context.Background())

	waitStopped(t, p)
	assert.Equal(t, StopUnrecognized, p.Reason())
}

func TestPulseGivesUpAfterMaxAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(nil, errors.New("timeout")).Times(3)

	p := newTestPulse(caller)
	p.MaxAttempts = 3

	go p.Run(context.Background())

	waitStopped(t, p)
	assert.Equal(t, StopTransport, p.Reason())
}

func TestPulseCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	caller.EXPECT().Call(gomock.Any(), "pulse", "user-1", "sess-1").Return(json.RawMessage(`true`), nil).MinTimes(1)

	p := NewPulse(caller, "user-1", "sess-1", time.Hour, logger.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())

	go p.Run(ctx)

	require.Eventually(t, func() bool { return ctrl.Satisfied() }, time.Second, time.Millisecond)
	assert.Empty(t, p.Reason())

	cancel()

	waitStopped(t, p)
	assert.Equal(t, StopCancelled, p.Reason())
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`0`, false},
		{`1`, true},
		{`""`, false},
		{`"x"`, true},
		{`{}`, true},
		{`[]`, true},
		{``, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, truthy(json.RawMessage(tt.raw)))
		})
	}
}
