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
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/carverauto/gafo/pkg/agent"
	"github.com/carverauto/gafo/pkg/ble"
	"github.com/carverauto/gafo/pkg/config"
	"github.com/carverauto/gafo/pkg/lifecycle"
	"github.com/carverauto/gafo/pkg/logger"
	"github.com/carverauto/gafo/pkg/models"
	"github.com/carverauto/gafo/pkg/natsutil"
	"github.com/carverauto/gafo/pkg/version"
)

const binaryName = "gafo-agent"

var errUsage = errors.New("usage: gafo-agent [-u username] [-p password] <config_file>")

var errVersionRequested = errors.New("version requested")

type credentials struct {
	username string
	password string
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath, creds, err := parseArgs(os.Args[1:])
	if err != nil {
		switch {
		case errors.Is(err, pflag.ErrHelp):
			return lifecycle.ExitOK
		case errors.Is(err, errVersionRequested):
			fmt.Println(version.String(binaryName))
			return lifecycle.ExitOK
		}

		fmt.Fprintln(os.Stderr, err)

		return lifecycle.ExitError
	}

	ctx := context.Background()

	var cfg models.Config
	if err := config.NewConfig(nil).LoadAndValidate(ctx, configPath, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return lifecycle.ExitError
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{Level: "info", Output: "stdout", OTel: logger.DefaultOTelConfig()}
	}

	agentLogger, err := lifecycle.CreateComponentLogger(ctx, "agent", logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return lifecycle.ExitError
	}

	defer func() {
		if err := lifecycle.ShutdownLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
		}
	}()

	if err := promptMissing(creds); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return lifecycle.ExitError
	}

	agentLogger.Info().Str("version", version.GetVersion()).Str("commit", version.GetCommit()).Msg("Starting gafo agent")

	hostFacts, err := agent.CollectHostFacts(ctx)
	if err != nil {
		agentLogger.Warn().Err(err).Msg("Host facts unavailable")
	}

	var events agent.EventPublisher

	if cfg.Events.Enabled() {
		nc, err := natsutil.Connect(cfg.Events.URL, cfg.Events.TLS, lifecycle.ComponentLogger(agentLogger, "events"),
			nats.Name(hostFacts.EventSource()))
		if err != nil {
			agentLogger.Error().Err(err).Msg("Failed to connect to NATS")
			return lifecycle.ExitError
		}
		defer nc.Close()

		publisher, err := natsutil.CreateEventPublisherWithDomain(ctx, nc, cfg.Events.Domain, cfg.Events.Stream,
			hostFacts.EventSource(), cfg.Events.Subjects, agentLogger)
		if err != nil {
			agentLogger.Error().Err(err).Msg("Failed to create event publisher")
			return lifecycle.ExitError
		}

		events = publisher
	}

	var adapter ble.Adapter
	if !cfg.Bluetooth.Disabled && len(cfg.Peripherals) > 0 {
		adapter = ble.NewTinyGoAdapter()
	}

	a := agent.New(agent.Options{
		Config:   &cfg,
		Username: creds.username,
		Password: creds.password,
		Logger:   agentLogger,
		Adapter:  adapter,
		Events:   events,
		Host:     hostFacts,
	})

	return lifecycle.Run(ctx, binaryName, a, agentLogger)
}

func parseArgs(args []string) (string, *credentials, error) {
	creds := &credentials{}

	var showVersion bool

	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.StringVarP(&creds.username, "username", "u", "", "coordinator username (prompted when omitted)")
	flagSet.StringVarP(&creds.password, "password", "p", "", "coordinator password (prompted when omitted)")

	flagSet.BoolVar(&showVersion, "version", false, "print the version and exit")

	if err := flagSet.Parse(args); err != nil {
		return "", nil, err
	}

	if showVersion {
		return "", nil, errVersionRequested
	}

	if flagSet.NArg() != 1 {
		return "", nil, errUsage
	}

	return flagSet.Arg(0), creds, nil
}

func promptMissing(creds *credentials) error {
	reader := bufio.NewReader(os.Stdin)

	if creds.username == "" {
		fmt.Fprint(os.Stderr, "Username: ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}

		creds.username = strings.TrimSpace(line)
	}

	if creds.password != "" {
		return nil
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return errors.New("no terminal available for password prompt (use --password)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	creds.password = string(password)

	return nil
}
