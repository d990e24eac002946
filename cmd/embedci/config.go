package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fumin/embedci/eigs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the configuration file of a solve.
// Restriction fields override the values of the dataset.
type Config struct {
	Restriction RestrictionConfig `yaml:"restriction"`
	Solver      SolverConfig      `yaml:"solver"`
}

type RestrictionConfig struct {
	ValenceMin *int        `yaml:"valence_min" validate:"omitempty,min=0"`
	ValenceMax *int        `yaml:"valence_max" validate:"omitempty,min=0"`
	Mott       *MottConfig `yaml:"mott"`
	Projection string      `yaml:"projection" validate:"omitempty,oneof=none sz jz"`
	Target     *float64    `yaml:"target"`
}

type MottConfig struct {
	// Orbitals are 0-based impurity modes.
	Orbitals  []int `yaml:"orbitals" validate:"required,min=1,unique,dive,min=0"`
	Electrons int   `yaml:"electrons" validate:"min=0"`
}

type SolverConfig struct {
	Tol         float64 `yaml:"tol" validate:"gt=0,lt=1"`
	MaxKrylov   int     `yaml:"max_krylov" validate:"min=1"`
	MaxRestarts int     `yaml:"max_restarts" validate:"min=1"`
	Seed        uint64  `yaml:"seed"`
}

func defaultConfig() Config {
	return Config{
		Restriction: RestrictionConfig{Projection: "none"},
		Solver: SolverConfig{
			Tol:         1e-10,
			MaxKrylov:   64,
			MaxRestarts: 200,
			Seed:        1,
		},
	}
}

// loadConfig reads the YAML file at fpath over the default configuration.
func loadConfig(fpath string) (Config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(fpath)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(err, fpath)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, fpath)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, "")
	}
	r := cfg.Restriction
	if r.ValenceMin != nil && r.ValenceMax != nil && *r.ValenceMin > *r.ValenceMax {
		return errors.Errorf("valence_min %d above valence_max %d", *r.ValenceMin, *r.ValenceMax)
	}
	if r.Mott != nil && r.Mott.Electrons > len(r.Mott.Orbitals) {
		return errors.Errorf("%d mott electrons on %d orbitals", r.Mott.Electrons, len(r.Mott.Orbitals))
	}
	if r.Target != nil && (r.Projection == "" || r.Projection == "none") {
		return errors.Errorf("target %f without projection", *r.Target)
	}
	return nil
}

func (cfg Config) lanczos() eigs.Options {
	return eigs.NewOptions().
		Tol(cfg.Solver.Tol).
		MaxKrylov(cfg.Solver.MaxKrylov).
		MaxRestarts(cfg.Solver.MaxRestarts)
}
