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
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const (
	defaultShell = "/bin/sh"
	// waitDelay bounds how long we wait for pipes held open by orphaned
	// grandchildren after the shell itself has exited or been killed.
	waitDelay = 2 * time.Second
)

// ExecOutput is the captured result of a script run.
type ExecOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs scripts through the system shell.
type Executor struct {
	Shell   string
	Timeout time.Duration
}

// NewExecutor creates an executor. A zero timeout lets scripts run until the
// session ends.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{Shell: defaultShell, Timeout: timeout}
}

func (e *Executor) Run(ctx context.Context, command string) (ExecOutput, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	shell := e.Shell
	if shell == "" {
		shell = defaultShell
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	out := ExecOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("script terminated: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	if err != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("failed to run script: %w", err)
	}

	return out, nil
}
