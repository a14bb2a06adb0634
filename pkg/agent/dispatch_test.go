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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/gafo/pkg/ble"
	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/mirror"
	"github.com/carverauto/gafo/pkg/models"
)

type reported struct {
	id     string
	result models.CallResult
}

// captureResults records every addToCallResult issued through caller.
func captureResults(caller *MockCaller) *resultLog {
	log := &resultLog{}

	caller.EXPECT().Call(gomock.Any(), "addToCallResult", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, params ...interface{}) (json.RawMessage, error) {
			id, _ := params[0].(string)
			result, _ := params[1].(models.CallResult)

			log.add(reported{id: id, result: result})

			return json.RawMessage(`1`), nil
		}).AnyTimes()

	return log
}

type resultLog struct {
	mu      sync.Mutex
	results []reported
}

func (l *resultLog) add(r reported) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results = append(l.results, r)
}

func (l *resultLog) all() []reported {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]reported(nil), l.results...)
}

func testAgentConfig() *models.AgentConfiguration {
	return &models.AgentConfiguration{
		Scripts: map[string]models.ScriptConfig{
			"ping": {Execute: "echo hi"},
			"run":  {Execute: "run.sh"},
		},
		Peripherals: map[string]models.PeripheralConfig{
			"AA:BB": {Name: "relay", ServiceUUID: "S1", WriteCharacteristicUUID: "W1"},
		},
	}
}

func testRegistration() *Registration {
	r := &Registration{}
	r.Set(&models.RegisteredAgent{
		Scripts:     map[string]string{"s1": "ping", "s2": "run", "s3": "gone"},
		Peripherals: map[string]string{"p1": "AA:BB", "p9": "FF:FF"},
	})

	return r
}

func newTestDispatcher(caller Caller, runner ScriptRunner, writer PeripheralWriter, events EventPublisher) *Dispatcher {
	log := logger.NewTestLogger()
	reg := testRegistration()

	return NewDispatcher(context.Background(), DispatcherOptions{
		Caller:       caller,
		Runner:       runner,
		DataPath:     NewDataPath(caller, writer, reg, nil, log),
		Events:       events,
		Config:       testAgentConfig(),
		Registration: reg,
		Logger:       log,
	})
}

func callDoc(kv ...string) mirror.Document {
	doc := make(mirror.Document)

	for i := 0; i+1 < len(kv); i += 2 {
		doc[kv[i]] = json.RawMessage(kv[i+1])
	}

	return doc
}

func TestDispatchScriptReportsOutput(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)

	d := newTestDispatcher(caller, NewExecutor(0), nil, nil)

	d.OnCallAdded("c1", callDoc("scriptId", `"s1"`))
	d.Wait()

	got := results.all()
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].id)
	require.NotNil(t, got[0].result.Stdout)
	require.NotNil(t, got[0].result.Stderr)
	require.NotNil(t, got[0].result.Date)
	assert.Equal(t, "hi\n", *got[0].result.Stdout)
	assert.Empty(t, *got[0].result.Stderr)
	assert.WithinDuration(t, time.Now(), got[0].result.Date.Time, 5*time.Second)
}

func TestDispatchUnknownScript(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)
	runner := NewMockScriptRunner(ctrl)

	d := newTestDispatcher(caller, runner, nil, nil)

	d.OnCallAdded("c2", callDoc("scriptId", `"unknown"`))
	// registered remotely but missing from local configuration
	d.OnCallAdded("c3", callDoc("scriptId", `"s3"`))
	d.Wait()

	got := results.all()
	require.Len(t, got, 2)

	byID := map[string]models.CallResult{}
	for _, r := range got {
		byID[r.id] = r.result
	}

	require.NotNil(t, byID["c2"].Stderr)
	assert.Equal(t, "ERROR: script unknown not found.", *byID["c2"].Stderr)
	assert.Nil(t, byID["c2"].Stdout)
	assert.Nil(t, byID["c2"].Date)

	require.NotNil(t, byID["c3"].Stderr)
	assert.Equal(t, "ERROR: script gone not found.", *byID["c3"].Stderr)
}

func TestDispatchAppendsParameters(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)
	runner := NewMockScriptRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), `run.sh '{"level":3,"note":"it'\''s"}'`).
		Return(ExecOutput{Stdout: "ok\n"}, nil)
	runner.EXPECT().Run(gomock.Any(), "run.sh").
		Return(ExecOutput{Stdout: "bare\n"}, nil)

	d := newTestDispatcher(caller, runner, nil, nil)

	d.OnCallAdded("c1", callDoc("scriptId", `"s2"`, "parameters", `{ "level": 3, "note": "it's" }`))
	d.OnCallAdded("c2", callDoc("scriptId", `"s2"`, "parameters", `null`))
	d.Wait()

	assert.Len(t, results.all(), 2)
}

func TestDispatchRedeliveryIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)
	runner := NewMockScriptRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), "echo hi").Return(ExecOutput{Stdout: "hi\n"}, nil).Times(1)

	d := newTestDispatcher(caller, runner, nil, nil)

	d.OnCallAdded("c1", callDoc("scriptId", `"s1"`))
	d.OnCallAdded("c1", callDoc("scriptId", `"s1"`))
	d.Wait()

	assert.Len(t, results.all(), 1)
}

func TestDispatchMalformedCalls(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)

	d := newTestDispatcher(caller, NewMockScriptRunner(ctrl), NewMockPeripheralWriter(ctrl), nil)

	d.OnCallAdded("both", callDoc("scriptId", `"s1"`, "peripheralId", `"p1"`))
	d.OnCallAdded("neither", callDoc("parameters", `{"a":1}`))
	d.OnCallAdded("garbled", callDoc("scriptId", `42`))
	d.Wait()

	byID := map[string]string{}
	for _, r := range results.all() {
		require.NotNil(t, r.result.Stderr)
		byID[r.id] = *r.result.Stderr
	}

	assert.Equal(t, "ERROR: call both targets both a script and a peripheral.", byID["both"])
	assert.Equal(t, "ERROR: call neither has no script or peripheral.", byID["neither"])
	assert.Equal(t, "ERROR: call garbled is malformed.", byID["garbled"])
}

func TestDispatchPeripheralWrite(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)
	writer := NewMockPeripheralWriter(ctrl)

	writer.EXPECT().Write(gomock.Any(), "AA:BB", []byte("on")).Return(nil)
	writer.EXPECT().Write(gomock.Any(), "AA:BB", []byte(`{"duty":50}`)).Return(ble.ErrNotConnected)

	d := newTestDispatcher(caller, NewMockScriptRunner(ctrl), writer, nil)

	d.OnCallAdded("c1", callDoc("peripheralId", `"p1"`, "message", `"on"`))
	d.OnCallAdded("c2", callDoc("peripheralId", `"p1"`, "message", `{"duty":50}`))
	d.Wait()

	assert.Empty(t, results.all(), "peripheral writes report nothing")
}

func TestDispatchUnknownPeripheral(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)

	d := newTestDispatcher(caller, NewMockScriptRunner(ctrl), NewMockPeripheralWriter(ctrl), nil)

	d.OnCallAdded("c1", callDoc("peripheralId", `"nope"`, "message", `"on"`))
	// registered remotely but not configured on this device
	d.OnCallAdded("c2", callDoc("peripheralId", `"p9"`, "message", `"on"`))
	d.Wait()

	byID := map[string]string{}
	for _, r := range results.all() {
		byID[r.id] = *r.result.Stderr
	}

	assert.Equal(t, "ERROR: peripheral nope not found.", byID["c1"])
	assert.Equal(t, "ERROR: peripheral p9 not found.", byID["c2"])
}

func TestDispatchRunnerFailureAppendsToStderr(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	results := captureResults(caller)
	runner := NewMockScriptRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), "echo hi").
		Return(ExecOutput{Stdout: "partial", Stderr: "warming up"}, errors.New("script terminated: context deadline exceeded"))

	d := newTestDispatcher(caller, runner, nil, nil)

	d.OnCallAdded("c1", callDoc("scriptId", `"s1"`))
	d.Wait()

	got := results.all()
	require.Len(t, got, 1)
	assert.Equal(t, "partial", *got[0].result.Stdout)
	assert.Equal(t, "warming up\nscript terminated: context deadline exceeded", *got[0].result.Stderr)
}

func TestDispatchPublishesCallResult(t *testing.T) {
	ctrl := gomock.NewController(t)

	caller := NewMockCaller(ctrl)
	captureResults(caller)
	runner := NewMockScriptRunner(ctrl)
	events := NewMockEventPublisher(ctrl)

	runner.EXPECT().Run(gomock.Any(), "echo hi").Return(ExecOutput{Stdout: "hi\n"}, nil)
	events.EXPECT().PublishCallResult(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, data *models.CallResultEventData) error {
			assert.Equal(t, "c1", data.CallID)
			assert.Equal(t, "s1", data.ScriptID)
			assert.Equal(t, "ping", data.Script)
			assert.Equal(t, "hi\n", data.Stdout)

			return nil
		})

	d := newTestDispatcher(caller, runner, nil, events)

	d.OnCallAdded("c1", callDoc("scriptId", `"s1"`))
	d.Wait()
}

func TestExecutorCapturesExitStatus(t *testing.T) {
	e := NewExecutor(0)

	out, err := e.Run(context.Background(), "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
	assert.Equal(t, 3, out.ExitCode)
}

func TestExecutorTimeout(t *testing.T) {
	e := NewExecutor(50 * time.Millisecond)

	start := time.Now()
	out, err := e.Run(context.Background(), "echo started; sleep 5")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "started\n", out.Stdout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCallSetEvictsOldest(t *testing.T) {
	s := newCallSet(2)

	assert.False(t, s.CheckAndMark("a"))
	assert.False(t, s.CheckAndMark("b"))
	assert.True(t, s.CheckAndMark("a"))
	assert.False(t, s.CheckAndMark("c"))
	assert.False(t, s.CheckAndMark("a"), "oldest id is forgotten once the set is full")
}
