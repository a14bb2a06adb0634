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
	"sync"
	"time"

	"github.com/carverauto/gafo/pkg/logger"
)

const (
	defaultPulseInterval  = 10 * time.Second
	defaultInitialBackoff = time.Second
	defaultPulseAttempts  = 5
)

// StopReason says why a Pulse stopped.
type StopReason string

const (
	StopCancelled    StopReason = "cancelled"
	StopUnrecognized StopReason = "unrecognized"
	StopTransport    StopReason = "transport"
)

// Pulse tells the coordinator this session is still alive. A falsy answer
// stops it for good; transport errors are retried with exponential backoff
// before giving up. Neither outcome stops the agent.
type Pulse struct {
	caller    Caller
	userID    string
	sessionID string
	logger    logger.Logger

	Interval       time.Duration
	InitialBackoff time.Duration
	MaxAttempts    int

	stopped chan struct{}
	mu      sync.Mutex
	reason  StopReason
}

// NewPulse creates a pulse for the given user and session.
func NewPulse(caller Caller, userID, sessionID string, interval time.Duration, log logger.Logger) *Pulse {
	if interval <= 0 {
		interval = defaultPulseInterval
	}

	return &Pulse{
		caller:         caller,
		userID:         userID,
		sessionID:      sessionID,
		logger:         log,
		Interval:       interval,
		InitialBackoff: defaultInitialBackoff,
		MaxAttempts:    defaultPulseAttempts,
		stopped:        make(chan struct{}),
	}
}

// Run beats immediately and then once per Interval until it stops.
func (p *Pulse) Run(ctx context.Context) {
	defer close(p.stopped)

	for {
		alive, err := p.beat(ctx)

		switch {
		case ctx.Err() != nil:
			p.stop(StopCancelled)
			return
		case err != nil:
			p.logger.Error().Err(err).Int("attempts", p.MaxAttempts).Msg("Pulse failed, giving up")
			p.stop(StopTransport)

			return
		case !alive:
			p.logger.Warn().Str("session", p.sessionID).Msg("Coordinator no longer recognizes this agent, stopping pulse")
			p.stop(StopUnrecognized)

			return
		}

		select {
		case <-ctx.Done():
			p.stop(StopCancelled)
			return
		case <-time.After(p.Interval):
		}
	}
}

// Stopped is closed once Run has returned.
func (p *Pulse) Stopped() <-chan struct{} {
	return p.stopped
}

// Reason reports why the pulse stopped. It is empty while it is running.
func (p *Pulse) Reason() StopReason {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.reason
}

func (p *Pulse) stop(reason StopReason) {
	p.mu.Lock()
	p.reason = reason
	p.mu.Unlock()
}

func (p *Pulse) beat(ctx context.Context) (bool, error) {
	delay := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		raw, err := p.caller.Call(ctx, "pulse", p.userID, p.sessionID)
		if err == nil {
			p.logger.Debug().Str("result", string(raw)).Msg("Pulse")
			return truthy(raw), nil
		}

		if ctx.Err() != nil || attempt >= p.MaxAttempts {
			return false, err
		}

		p.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("Pulse failed, retrying")

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(delay):
		}

		delay = min(delay*2, p.Interval)
	}
}

// truthy applies JavaScript truthiness to a JSON value.
func truthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
