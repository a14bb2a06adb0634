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
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/carverauto/gafo/pkg/ble"
	"github.com/carverauto/gafo/pkg/ddp"
	"github.com/carverauto/gafo/pkg/lifecycle"
	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/mirror"
	"github.com/carverauto/gafo/pkg/models"
)

var (
	// ErrAuthentication is returned when the coordinator rejects the login.
	ErrAuthentication = errors.New("authentication failed")
	// ErrRegistrationRejected is returned when registerSlave answers false.
	ErrRegistrationRejected = errors.New("registration rejected by coordinator")
	// ErrConnectionLost is returned when the coordinator connection drops.
	ErrConnectionLost = errors.New("coordinator connection lost")
)

// Collections mirrored from the coordinator.
const (
	CollectionSlaves      = "slaves"
	CollectionScripts     = "scripts"
	CollectionPeripherals = "peripherals"
	CollectionCalls       = "calls"
)

var subscriptions = []string{"slave", "slave_scripts", "slave_peripherals", "slave_calls"}

// Options configures an Agent.
type Options struct {
	Config   *models.Config
	Username string
	Password string
	Logger   logger.Logger
	// Adapter drives BLE peripherals. Nil disables them.
	Adapter ble.Adapter
	// Events is optional.
	Events EventPublisher
	// Runner defaults to a shell Executor with the configured script timeout.
	Runner ScriptRunner
	Host   *HostFacts
}

// Agent runs one coordinator session.
type Agent struct {
	config       *models.Config
	username     string
	password     string
	logger       logger.Logger
	adapter      ble.Adapter
	events       EventPublisher
	runner       ScriptRunner
	host         *HostFacts
	registration *Registration
}

// New creates an agent.
func New(opts Options) *Agent {
	runner := opts.Runner
	if runner == nil {
		runner = NewExecutor(time.Duration(opts.Config.ScriptTimeout))
	}

	return &Agent{
		config:       opts.Config,
		username:     opts.Username,
		password:     opts.Password,
		logger:       opts.Logger,
		adapter:      opts.Adapter,
		events:       opts.Events,
		runner:       runner,
		host:         opts.Host,
		registration: &Registration{},
	}
}

// Run connects, registers and serves the session until ctx is cancelled, the
// coordinator removes this agent, or the connection is lost. Removal is
// reported as lifecycle.ErrShutdownRequested.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.host != nil {
		a.logger.Info().
			Str("hostname", a.host.Hostname).
			Str("platform", a.host.Platform).
			Str("platform_version", a.host.PlatformVersion).
			Str("kernel", a.host.KernelVersion).
			Dur("uptime", a.host.Uptime).
			Msg("Host facts")
	}

	store := mirror.New(a.logger)

	client, err := a.connect(ctx, store)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	userID, err := a.register(ctx, client)
	if err != nil {
		return err
	}

	session := client.Session()
	shutdown := make(chan struct{})

	var shutdownOnce sync.Once

	store.Observe(CollectionSlaves, mirror.HandlerFuncs{
		Removed: func(id string, _ mirror.Document) {
			if id == session {
				shutdownOnce.Do(func() { close(shutdown) })
			}
		},
	})

	var manager *ble.Manager

	datapath := NewDataPath(client, nil, a.registration, a.events, a.logger)

	if a.bluetoothEnabled() {
		manager = ble.NewManager(a.adapter, a.config.Peripherals, ble.Options{
			ScanWindow:     time.Duration(a.config.Bluetooth.ScanWindow),
			OnNotification: datapath.OnNotification,
			Logger:         a.logger,
		})
		datapath.writer = manager
	}

	dispatcher := NewDispatcher(ctx, DispatcherOptions{
		Caller:       client,
		Runner:       a.runner,
		DataPath:     datapath,
		Events:       a.events,
		Config:       &a.config.AgentConfiguration,
		Registration: a.registration,
		Logger:       a.logger,
	})
	store.Observe(CollectionCalls, dispatcher.Handler())

	store.Start(ctx)
	defer store.Close()

	subIDs := make([]string, 0, len(subscriptions))

	for _, name := range subscriptions {
		id, err := client.Subscribe(ctx, name, session)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", name, err)
		}

		subIDs = append(subIDs, id)
	}

	var wg sync.WaitGroup

	pulse := NewPulse(client, userID, session, time.Duration(a.config.PulseInterval), a.logger)

	wg.Add(2)

	go func() {
		defer wg.Done()
		pulse.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		datapath.Run(ctx)
	}()

	if manager != nil {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := manager.Run(ctx); err != nil {
				a.logger.Error().Err(err).Msg("Bluetooth unavailable, peripherals disabled")
			}
		}()
	}

	a.logger.Info().Str("session", session).Msg("Agent ready")

	select {
	case <-ctx.Done():
		err = nil
	case <-shutdown:
		err = lifecycle.ErrShutdownRequested
	case <-client.Done():
		err = fmt.Errorf("%w: %w", ErrConnectionLost, client.Err())
	}

	cancel()
	wg.Wait()
	dispatcher.Wait()

	if !errors.Is(err, ErrConnectionLost) {
		a.unsubscribe(client, subIDs)
	}

	return err
}

// unsubscribe ends the session's publications before the socket closes so
// the coordinator can release them.
func (a *Agent) unsubscribe(client *ddp.Client, ids []string) {
	for _, id := range ids {
		if err := client.Unsubscribe(id); err != nil {
			a.logger.Debug().Err(err).Str("sub_id", id).Msg("Failed to unsubscribe")
			return
		}
	}
}

func (a *Agent) bluetoothEnabled() bool {
	return a.adapter != nil && !a.config.Bluetooth.Disabled && len(a.config.Peripherals) > 0
}

func (a *Agent) connect(ctx context.Context, store *mirror.Store) (*ddp.Client, error) {
	header := http.Header{}
	if a.config.Coordinator.Origin != "" {
		header.Set("Origin", a.config.Coordinator.Origin)
	}

	client, err := ddp.Dial(ctx, a.config.Coordinator.URL, ddp.Options{
		Header: header,
		OnData: store.ApplyDDP,
		Logger: a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to coordinator: %w", err)
	}

	a.logger.Info().Str("url", a.config.Coordinator.URL).Str("session", client.Session()).Msg("Connected to coordinator")

	return client, nil
}

// register logs in and registers this agent's configuration, returning the user id.
func (a *Agent) register(ctx context.Context, client *ddp.Client) (string, error) {
	login, err := client.LoginWithPassword(ctx, a.username, a.password)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	raw, err := client.Call(ctx, "registerSlave", login.ID, client.Session(), a.config.AgentConfiguration)
	if err != nil {
		return "", fmt.Errorf("failed to register: %w", err)
	}

	if !truthy(raw) {
		return "", ErrRegistrationRejected
	}

	var registered models.RegisteredAgent
	if err := json.Unmarshal(raw, &registered); err != nil {
		return "", fmt.Errorf("failed to decode registration: %w", err)
	}

	a.registration.Set(&registered)

	a.logger.Info().
		Str("user", login.ID).
		Int("scripts", len(registered.Scripts)).
		Int("peripherals", len(registered.Peripherals)).
		Msg("Registered with coordinator")

	return login.ID, nil
}
