package lifecycle

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type named struct {
	name string
	Component
}

// Runtime starts components in registration order and stops them in reverse.
type Runtime struct {
	components []named
	started    []named
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

func (r *Runtime) Register(name string, component Component) {
	if component == nil {
		return
	}
	r.components = append(r.components, named{name: name, Component: component})
}

// Start brings components up; on failure the already started ones are stopped again.
func (r *Runtime) Start(ctx context.Context) error {
	entry := r.getLogEntry().WithField("method", "Start")
	r.started = r.started[:0]
	for _, component := range r.components {
		if err := component.Start(ctx); err != nil {
			if stopErr := stopComponents(ctx, r.started); stopErr != nil {
				entry.WithField("error", stopErr.Error()).Warn("rollback after failed start")
			}
			r.started = nil
			return fmt.Errorf("start component %s: %w", component.name, err)
		}
		entry.WithField("component", component.name).Debug("component started")
		r.started = append(r.started, component)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	err := stopComponents(ctx, r.started)
	r.started = nil
	return err
}

func stopComponents(ctx context.Context, components []named) error {
	var stopErr error
	for i := len(components) - 1; i >= 0; i-- {
		component := components[i]
		if err := component.Stop(ctx); err != nil {
			stopErr = errors.Join(stopErr, fmt.Errorf("stop component %s: %w", component.name, err))
			continue
		}
		log.WithField("object", "Runtime").WithField("component", component.name).Debug("component stopped")
	}
	return stopErr
}

func (r *Runtime) getLogEntry() *log.Entry {
	return log.WithField("object", "Runtime")
}
