package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/sheikh-saqib/tripsync/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var builtinDefaults []byte

// TripDefaults is what a fresh store is seeded with.
type TripDefaults struct {
	Roster   []models.Participant `yaml:"roster"`
	Packing  []string             `yaml:"packing"`
	Schedule []models.DayPlan     `yaml:"schedule"`
	// Weekdays maps each schedule day to the weekday it falls on.
	Weekdays []string `yaml:"weekdays"`
}

// LoadDefaults parses the YAML file at path, or the built-in defaults when path is empty.
func LoadDefaults(path string) (TripDefaults, error) {
	data := builtinDefaults
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return TripDefaults{}, fmt.Errorf("read trip defaults: %w", err)
		}
		data = b
	}

	var d TripDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return TripDefaults{}, fmt.Errorf("parse trip defaults: %w", err)
	}
	if len(d.Weekdays) > 0 && len(d.Weekdays) != len(d.Schedule) {
		return TripDefaults{}, fmt.Errorf("trip defaults: %d weekdays for %d schedule days", len(d.Weekdays), len(d.Schedule))
	}
	return d, nil
}

// TripDay returns the index of the schedule day that falls on now's weekday, or
// -1 when now is not a trip day.
func (d TripDefaults) TripDay(now time.Time) int {
	today := now.Weekday().String()
	for i, w := range d.Weekdays {
		if w == today {
			return i
		}
	}
	return -1
}
