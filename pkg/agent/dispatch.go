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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/mirror"
	"github.com/carverauto/gafo/pkg/models"
)

// DispatcherOptions wires a Dispatcher to its collaborators.
type DispatcherOptions struct {
	Caller       Caller
	Runner       ScriptRunner
	DataPath     *DataPath
	Events       EventPublisher
	Config       *models.AgentConfiguration
	Registration *Registration
	Logger       logger.Logger
}

// Dispatcher turns call records into script runs or peripheral writes. Each
// call runs on its own goroutine so the mirror is never held up by a slow
// script.
type Dispatcher struct {
	ctx          context.Context
	caller       Caller
	runner       ScriptRunner
	datapath     *DataPath
	events       EventPublisher
	config       *models.AgentConfiguration
	registration *Registration
	logger       logger.Logger
	now          func() time.Time

	seen *callSet
	wg   sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose calls run under ctx.
func NewDispatcher(ctx context.Context, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		ctx:          ctx,
		caller:       opts.Caller,
		runner:       opts.Runner,
		datapath:     opts.DataPath,
		events:       opts.Events,
		config:       opts.Config,
		registration: opts.Registration,
		logger:       opts.Logger,
		now:          time.Now,
		seen:         newCallSet(0),
	}
}

// Handler observes the calls collection.
func (d *Dispatcher) Handler() mirror.Handler {
	return mirror.HandlerFuncs{Added: d.OnCallAdded}
}

// OnCallAdded dispatches a newly observed call. A call id seen before in this
// session is ignored.
func (d *Dispatcher) OnCallAdded(id string, doc mirror.Document) {
	if d.seen.CheckAndMark(id) {
		d.logger.Debug().Str("call_id", id).Msg("Ignoring redelivered call")
		return
	}

	call := &models.CallRecord{}
	if err := doc.Decode(call); err != nil {
		d.logger.Warn().Err(err).Str("call_id", id).Msg("Failed to decode call")

		d.spawn(func(ctx context.Context) {
			d.report(ctx, &models.CallRecord{ID: id}, models.NewErrorResult(fmt.Sprintf("ERROR: call %s is malformed.", id)))
		})

		return
	}

	call.ID = id

	d.spawn(func(ctx context.Context) {
		d.dispatch(ctx, call)
	})
}

// Wait blocks until every dispatched call has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) spawn(fn func(ctx context.Context)) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		fn(d.ctx)
	}()
}

func (d *Dispatcher) dispatch(ctx context.Context, call *models.CallRecord) {
	hasScript := call.ScriptID != ""
	hasPeripheral := call.PeripheralID != ""

	switch {
	case hasScript && hasPeripheral:
		d.report(ctx, call, models.NewErrorResult(
			fmt.Sprintf("ERROR: call %s targets both a script and a peripheral.", call.ID)))
	case hasScript:
		d.runScript(ctx, call)
	case hasPeripheral:
		d.writePeripheral(ctx, call)
	default:
		d.report(ctx, call, models.NewErrorResult(
			fmt.Sprintf("ERROR: call %s has no script or peripheral.", call.ID)))
	}
}

func (d *Dispatcher) runScript(ctx context.Context, call *models.CallRecord) {
	label := call.ScriptID

	name, registered := d.registration.ScriptName(call.ScriptID)
	if registered {
		label = name
	}

	script, configured := d.config.Script(name)
	if !registered || !configured {
		d.logger.Warn().Str("call_id", call.ID).Str("script_id", call.ScriptID).Msg("Script not found")
		d.report(ctx, call, models.NewErrorResult(fmt.Sprintf("ERROR: script %s not found.", label)))

		return
	}

	command, err := buildCommand(script.Execute, call)
	if err != nil {
		d.report(ctx, call, models.NewErrorResult(fmt.Sprintf("ERROR: invalid parameters for script %s: %v", name, err)))
		return
	}

	d.logger.Info().Str("call_id", call.ID).Str("script", name).Msg("Running script")

	out, runErr := d.runner.Run(ctx, command)

	stderr := out.Stderr
	if runErr != nil {
		d.logger.Warn().Err(runErr).Str("call_id", call.ID).Str("script", name).Msg("Script did not complete")

		if stderr != "" && !strings.HasSuffix(stderr, "\n") {
			stderr += "\n"
		}

		stderr += runErr.Error()
	}

	at := d.now()

	d.report(ctx, call, models.NewExecResult(out.Stdout, stderr, at))

	if d.events == nil {
		return
	}

	if err := d.events.PublishCallResult(ctx, &models.CallResultEventData{
		CallID:    call.ID,
		ScriptID:  call.ScriptID,
		Script:    name,
		Stdout:    out.Stdout,
		Stderr:    stderr,
		Timestamp: at,
	}); err != nil {
		d.logger.Warn().Err(err).Str("call_id", call.ID).Msg("Failed to publish call result event")
	}
}

func (d *Dispatcher) writePeripheral(ctx context.Context, call *models.CallRecord) {
	hardwareUUID, ok := d.registration.PeripheralUUID(call.PeripheralID)
	if ok {
		_, ok = d.config.Peripheral(hardwareUUID)
	}

	if !ok {
		d.logger.Warn().Str("call_id", call.ID).Str("peripheral_id", call.PeripheralID).Msg("Peripheral not found")
		d.report(ctx, call, models.NewErrorResult(fmt.Sprintf("ERROR: peripheral %s not found.", call.PeripheralID)))

		return
	}

	d.datapath.Write(ctx, hardwareUUID, call.MessageBytes())
}

func (d *Dispatcher) report(ctx context.Context, call *models.CallRecord, result models.CallResult) {
	if _, err := d.caller.Call(ctx, "addToCallResult", call.ID, result); err != nil {
		d.logger.Error().Err(err).Str("call_id", call.ID).Msg("Failed to report call result")
	}
}

// buildCommand appends the call parameters, as compact JSON, to the execute
// template as one single-quoted shell argument.
func buildCommand(execute string, call *models.CallRecord) (string, error) {
	if !call.HasParameters() {
		return execute, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, call.Parameters); err != nil {
		return "", err
	}

	return execute + " " + shellQuote(buf.String()), nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
