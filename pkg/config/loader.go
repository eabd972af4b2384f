package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg (a pointer to a struct with `env` and `envDefault` tags)
// from the process environment.
func Load(cfg any) error {
	if err := env.ParseWithOptions(cfg, env.Options{UseFieldNameByDefault: false}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
