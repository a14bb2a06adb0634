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

package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/carverauto/gafo/pkg/logger"
)

// Process exit statuses. A coordinator-initiated shutdown is not a failure
// but must be distinguishable from a clean local stop.
const (
	ExitOK                  = 0
	ExitError               = 1
	ExitCoordinatorShutdown = 3
)

// ErrShutdownRequested is returned by a service that was told to stop by the
// coordinator.
var ErrShutdownRequested = errors.New("shutdown requested by coordinator")

// Service is anything that runs until its context is cancelled or it fails.
type Service interface {
	Run(ctx context.Context) error
}

// Run runs svc until it returns or the process receives SIGINT/SIGTERM and
// maps the outcome to a process exit status.
func Run(ctx context.Context, name string, svc Service, log logger.Logger) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("service", name).Msg("Starting service")

	err := svc.Run(ctx)

	return ExitCode(err, log)
}

// ExitCode classifies the error a service stopped with.
func ExitCode(err error, log logger.Logger) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info().Msg("Service stopped")
		return ExitOK
	case errors.Is(err, ErrShutdownRequested):
		log.Warn().Msg("Session closed from dashboard")
		return ExitCoordinatorShutdown
	default:
		log.Error().Err(err).Msg("Service stopped with error")
		return ExitError
	}
}
