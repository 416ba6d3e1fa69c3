// Package config holds the application configuration and the persisted
// policy settings.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// Settings are the tunable policy values persisted across sessions.
type Settings struct {
	MealLimitPerPersonCAD float64 `yaml:"meal_limit_per_person_cad" json:"mealLimitPerPersonCAD"`
}

// DefaultSettings returns the built-in policy settings.
func DefaultSettings() *Settings {
	return &Settings{
		MealLimitPerPersonCAD: domainClaims.DefaultMealLimitPerPersonCAD,
	}
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	if s.MealLimitPerPersonCAD <= 0 ||
		math.IsNaN(s.MealLimitPerPersonCAD) || math.IsInf(s.MealLimitPerPersonCAD, 0) {
		return fmt.Errorf("meal limit must be a positive finite number, got %g",
			s.MealLimitPerPersonCAD)
	}
	return nil
}

// PolicyOptions returns the settings as policy engine options.
func (s *Settings) PolicyOptions() domainClaims.PolicyOptions {
	return domainClaims.PolicyOptions{MealLimitPerPersonCAD: s.MealLimitPerPersonCAD}
}

// LoadSettings reads settings from a YAML file. A missing file yields the
// defaults rather than an error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings validates and writes settings to a YAML file.
func SaveSettings(path string, settings *Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
