package factory

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/model"
	"fmt"
	"log"
	"sort"
	"strings"
)

// WriterFactory creates a report writer from its definition.
type WriterFactory func(def config.WriterDef) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Types returns the registered writer types in sorted order.
func Types() []string {
	types := make([]string, 0, len(registry))
	for name := range registry {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Validate checks that every enabled writer has a registered type, without
// creating any of them.
func Validate(cfg *config.Config) error {
	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		if _, ok := registry[def.Type]; !ok {
			return fmt.Errorf("unknown writer type: '%s' (available: %s)", def.Type, strings.Join(Types(), ", "))
		}
	}
	return nil
}

// Create builds every enabled writer in the config. Writers that fail to
// initialize are skipped with a warning; an unknown type is an error.
func Create(cfg *config.Config) ([]model.Writer, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	var writers []model.Writer
	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		factory := registry[def.Type]

		writer, err := factory(def)
		if err != nil {
			log.Printf("Warning: failed to create writer type '%s': %v, skipping.", def.Type, err)
			continue
		}
		log.Printf("Created writer '%s'", writer.Name())
		writers = append(writers, writer)
	}

	return writers, nil
}
