package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	GroundY          float64 `yaml:"ground_y"`
	MoveSpeed        float64 `yaml:"move_speed"`
	SprintMultiplier float64 `yaml:"sprint_multiplier"`
	JumpSpeed        float64 `yaml:"jump_speed"`
	Gravity          float64 `yaml:"gravity"`
	BoundaryR        float64 `yaml:"boundary_r"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:         20,
		MoveSpeed:          4.5,
		SprintMultiplier:   1.6,
		JumpSpeed:          7.5,
		Gravity:            24.0,
		BoundaryR:          512,
		SnapshotEveryTicks: 6000,
	}
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
