/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInitialized is returned when a query or execute is issued before
// Initialize has completed successfully. Correct caller sequencing makes this
// unreachable; the accessor still defends against it explicitly.
var ErrNotInitialized = errors.New("storage: not initialized")

// AssetError reports a failure locating, copying or verifying the bundled
// seed database. Fatal for app startup.
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("seed asset %s: %v", e.Path, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// IntegrityError reports required tables missing from the copied config
// database. Fatal for app startup.
type IntegrityError struct {
	Path    string
	Missing []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("config database %s missing required tables: %s", e.Path, strings.Join(e.Missing, ", "))
}

// QueryError tags a failed query or execute with enough context for field
// debugging. It is returned to the caller, never swallowed into an empty
// result.
type QueryError struct {
	Op  string // facade operation, e.g. "queryConfig"
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.SQL, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// MigrationError reports a failed user-database schema step. Prior data is
// left untouched; the failed step does not partially apply.
type MigrationError struct {
	Step string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("user schema migration %s: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }
