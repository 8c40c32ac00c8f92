package scene

type StageConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	// Physics tuning.
	GroundY          float64
	MoveSpeed        float64
	SprintMultiplier float64
	JumpSpeed        float64
	Gravity          float64
	BoundaryR        float64

	SnapshotEveryTicks int
}

func (c *StageConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "stage_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.MoveSpeed <= 0 {
		c.MoveSpeed = 4.5
	}
	if c.SprintMultiplier <= 0 {
		c.SprintMultiplier = 1.6
	}
	if c.JumpSpeed <= 0 {
		c.JumpSpeed = 7.5
	}
	if c.Gravity <= 0 {
		c.Gravity = 24.0
	}
	if c.BoundaryR <= 0 {
		c.BoundaryR = 512
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 6000
	}
}
