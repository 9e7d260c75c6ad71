// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"

	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/filestate"
	"github.com/specialistvlad/deploygridgo/internal/redisstate"
	"github.com/specialistvlad/deploygridgo/internal/statestore"
)

// openState picks the configured state store. Without one, handles live only
// for the duration of the run.
func (a *App) openState(ctx context.Context) (statestore.Store, func() error, error) {
	logger := ctxlog.FromContext(ctx)
	noop := func() error { return nil }

	switch {
	case a.config.RedisAddr != "":
		var opts []redisstate.Option
		if a.config.RedisKey != "" {
			opts = append(opts, redisstate.WithKey(a.config.RedisKey))
		}
		s, err := redisstate.Dial(ctx, a.config.RedisAddr, opts...)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using redis state store.", "addr", a.config.RedisAddr, "key", s.Key())
		return s, s.Close, nil
	case a.config.StatePath != "":
		s := filestate.New(a.config.StatePath)
		logger.Info("Using file state store.", "path", s.Path())
		return s, noop, nil
	default:
		logger.Debug("No state store configured, deployments will not be recorded.")
		return statestore.NewMemory(), noop, nil
	}
}
