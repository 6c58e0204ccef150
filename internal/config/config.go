// Package config loads the read-only tuning constants this game consumes:
// physics stepping, player speeds and capsule dimensions, look sensitivity.
// The physics layer never persists or mutates them.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Path is the config file location, relative to the process working directory.
const Path = "config/game.json"

type Config struct {
	Gravity     float32 `json:"gravity"`      // negative = down
	PhysicsHz   int     `json:"physics_hz"`   // fixed timestep rate
	MaxSubsteps int     `json:"max_substeps"` // per-frame step bound

	WalkSpeed   float32 `json:"walk_speed"`
	SprintSpeed float32 `json:"sprint_speed"`
	CrouchSpeed float32 `json:"crouch_speed"`
	JumpSpeed   float32 `json:"jump_speed"`
	FallSpeed   float32 `json:"fall_speed"`

	LookSensitivity float32 `json:"look_sensitivity"`

	PlayerRadius     float32 `json:"player_radius"`
	PlayerHeight     float32 `json:"player_height"`
	PlayerStepHeight float32 `json:"player_step_height"`
}

// Default returns the built-in tuning.
func Default() Config {
	return Config{
		Gravity:          -9.81,
		PhysicsHz:        144,
		MaxSubsteps:      10,
		WalkSpeed:        5,
		SprintSpeed:      10,
		CrouchSpeed:      1,
		JumpSpeed:        10,
		FallSpeed:        55,
		LookSensitivity:  0.1,
		PlayerRadius:     0.3,
		PlayerHeight:     1.8,
		PlayerStepHeight: 0.35,
	}
}

// Load reads the config file. A missing file yields the defaults with no
// error; a malformed file yields the defaults plus an error the caller may
// log. A bad config never stops the game from starting.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return Default(), errors.Wrapf(err, "parsing %s", path)
	}
	if c.PhysicsHz <= 0 {
		c.PhysicsHz = Default().PhysicsHz
	}
	if c.MaxSubsteps <= 0 {
		c.MaxSubsteps = Default().MaxSubsteps
	}
	return c, nil
}

// FixedTimestep returns the simulation increment in seconds.
func (c Config) FixedTimestep() float32 {
	return 1 / float32(c.PhysicsHz)
}
