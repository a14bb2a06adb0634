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

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrEmptyConfigFile is returned for a config file with no content.
var ErrEmptyConfigFile = errors.New("config file is empty")

// FileConfigLoader loads the agent config from a local JSON file.
type FileConfigLoader struct{}

// Load reads path into dst. Syntax and type errors name the line they were
// found on.
func (*FileConfigLoader) Load(ctx context.Context, path string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyConfigFile, path)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		if line, ok := errorLine(data, err); ok {
			return fmt.Errorf("failed to parse config file '%s' at line %d: %w", path, line, err)
		}

		return fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	return nil
}

func errorLine(data []byte, err error) (int, bool) {
	var offset int64

	var syntaxErr *json.SyntaxError

	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0, false
	}

	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	return bytes.Count(data[:offset], []byte("\n")) + 1, true
}
