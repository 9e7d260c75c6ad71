// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/fsutil"
	"github.com/specialistvlad/deploygridgo/internal/hclmodule"
)

// LoadDir parses every .hcl file below path and registers the modules they
// declare. A missing directory is an error; an empty one is not.
func (r *Registry) LoadDir(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading module files.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to find module files in %s: %w", path, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl module files found in path.", "path", path)
		return nil
	}
	logger.Debug("Found module files to load.", "files", files)

	loader := hclmodule.NewLoader()
	for _, file := range files {
		mods, err := loader.LoadFile(file)
		if err != nil {
			return err
		}
		for _, m := range mods {
			if err := r.Add(m); err != nil {
				return fmt.Errorf("failed to register module from %s: %w", file, err)
			}
			logger.Debug("Registered module from file.", "module", m.Name(), "file", file)
		}
	}

	logger.Info("Module files loaded.", "files", len(files), "modules", r.Len())
	return nil
}
