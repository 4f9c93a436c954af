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
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	applog "tarotvault/internal/log"
)

// copySeedAsset places a fresh copy of the bundled seed database at dst. It
// runs on every initialization pass that reaches it, not just first run, so
// shipped schema/data fixes take effect after an app update without a
// destructive migration.
//
// Sequence: ensure target directory exists, locate the bundled asset, replace
// any stale copy at the target path, verify the copy is present and nonzero.
// All failures are fatal: the caller must not proceed to open a missing or
// corrupt file.
func copySeedAsset(assetPath, dst string) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "seed_copy").With(
		slog.String("asset", assetPath),
		slog.String("dst", dst),
	)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return &AssetError{Path: assetPath, Err: fmt.Errorf("create data dir: %w", err)}
	}

	st, err := os.Stat(assetPath)
	if err != nil {
		l.Error("bundled asset not found", slog.Any("err", err))
		return &AssetError{Path: assetPath, Err: fmt.Errorf("locate asset: %w", err)}
	}
	if st.Size() == 0 {
		l.Error("bundled asset is empty")
		return &AssetError{Path: assetPath, Err: errors.New("asset file is empty")}
	}

	src, err := os.Open(assetPath)
	if err != nil {
		return &AssetError{Path: assetPath, Err: fmt.Errorf("open asset: %w", err)}
	}
	defer src.Close()

	// Stale WAL/SHM sidecars from a previous copy would shadow the fresh file.
	removeSidecars(dst)

	// Atomic replace: the target is never observable half-written.
	if err := atomic.WriteFile(dst, src); err != nil {
		l.Error("copy asset failed", slog.Any("err", err))
		return &AssetError{Path: assetPath, Err: fmt.Errorf("copy asset: %w", err)}
	}

	out, err := os.Stat(dst)
	if err != nil {
		return &AssetError{Path: assetPath, Err: fmt.Errorf("verify copy: %w", err)}
	}
	if out.Size() == 0 {
		return &AssetError{Path: assetPath, Err: errors.New("copied file is empty")}
	}

	l.Info("seed database copied", slog.Int64("bytes", out.Size()))
	return nil
}

// removeSidecars deletes the -wal and -shm files next to a database path.
// Best effort; missing files are fine.
func removeSidecars(path string) {
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
}
