package app

import (
	"fmt"

	"github.com/specialistvlad/robogrid/internal/config"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/simbackend"
	"github.com/specialistvlad/robogrid/internal/socketiobackend"
)

// WithBackend makes every run use backend instead of the configured one.
func WithBackend(backend session.Backend) Option {
	return func(a *App) {
		a.newBackend = func(config.Session) (session.Backend, error) { return backend, nil }
	}
}

func newBackend(cfg config.Session) (session.Backend, error) {
	switch cfg.Backend {
	case config.BackendSim:
		return simbackend.New(simbackend.WithTimeScale(cfg.TimeScale)), nil
	case config.BackendSocketIO:
		return socketiobackend.New(), nil
	}
	return nil, fmt.Errorf("unknown session backend '%s'", cfg.Backend)
}

func descriptor(cfg config.Session) session.Descriptor {
	return session.Descriptor{
		Model:     cfg.Model,
		URL:       cfg.URL,
		Namespace: cfg.Namespace,
		Insecure:  cfg.Insecure,
	}
}
