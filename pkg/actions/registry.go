package actions

import (
	"fmt"
	"log/slog"
)

// Registry maps stored action types to their factories.
type Registry struct {
	logger    *slog.Logger
	factories map[string]Factory
}

// NewRegistry creates an empty action registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under its ID, replacing any previous registration.
func (r *Registry) Register(factory Factory) {
	r.factories[factory.ID()] = factory
}

// Create instantiates an action of the given type from its configuration.
func (r *Registry) Create(actionType string, config map[string]any) (Action, error) {
	factory, ok := r.factories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(config)
}

// Available returns the registered action types.
func (r *Registry) Available() []string {
	types := make([]string, 0, len(r.factories))
	for actionType := range r.factories {
		types = append(types, actionType)
	}

	return types
}
