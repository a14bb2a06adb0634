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

// Package version reports the agent build, injected with -ldflags at release time.
package version

import "fmt"

//nolint:gochecknoglobals // set via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// GetCommit returns the source revision the binary was built from.
func GetCommit() string {
	return commit
}

// String formats the build for --version and the startup log line.
func String(binary string) string {
	return fmt.Sprintf("%s %s (commit %s)", binary, version, commit)
}
