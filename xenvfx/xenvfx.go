// Package xenvfx provides structs loaded by xenv to go.uber.org/fx
// applications.
package xenvfx

import (
	"errors"
	"log/slog"

	"go.uber.org/fx"

	"github.com/sxwebdev/xenv"
	"github.com/sxwebdev/xenv/source"
)

// ErrEmptyName is returned by NewModule when the module name is empty.
var ErrEmptyName = errors.New("xenvfx: module name cannot be empty")

// Params are the optional dependencies of a configuration constructor.
// A supplied Source replaces the process environment and a supplied Logger
// receives the resolution trace. Explicit options take precedence over both.
type Params struct {
	fx.In

	Source source.Source `optional:"true"`
	Logger *slog.Logger  `optional:"true"`
}

// Provider returns an fx constructor that loads T once per application.
func Provider[T any](opts ...xenv.Option) func(Params) (T, error) {
	return func(p Params) (T, error) {
		loadOpts := make([]xenv.Option, 0, len(opts)+2)

		if p.Source != nil {
			loadOpts = append(loadOpts, xenv.WithSource(p.Source))
		}

		if p.Logger != nil {
			loadOpts = append(loadOpts, xenv.WithLogger(p.Logger))
		}

		return xenv.Load[T](append(loadOpts, opts...)...)
	}
}

type loggerParams struct {
	fx.In

	Logger *slog.Logger `optional:"true"`
}

// NewModule creates an Fx module that provides T and logs it, with secrets
// masked, when a *slog.Logger is available.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule[T any](name string, opts ...xenv.Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	return fx.Module(name,
		fx.Provide(Provider[T](opts...)),
		fx.Invoke(func(cfg T, p loggerParams) {
			if p.Logger == nil {
				return
			}

			p.Logger.Info("configuration loaded",
				slog.String("module", name),
				slog.Any("config", xenv.Masked(cfg)),
			)
		}),
	)
}
