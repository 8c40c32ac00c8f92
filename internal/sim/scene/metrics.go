package scene

// StageMetrics is a read-only view safe to call from any goroutine; only
// atomically maintained counters and channel depths are reported.
type StageMetrics struct {
	Tick        uint64      `json:"tick"`
	Actors      int         `json:"actors"`
	Clients     int         `json:"clients"`
	StepMS      float64     `json:"step_ms"`
	QueueDepths QueueDepths `json:"queue_depths"`
}

type QueueDepths struct {
	Inbox  int `json:"inbox"`
	Join   int `json:"join"`
	Attach int `json:"attach"`
	Leave  int `json:"leave"`
}

func (s *Scene) Metrics() StageMetrics {
	return StageMetrics{
		Tick:    s.tick.Load(),
		Actors:  int(s.actorCount.Load()),
		Clients: int(s.clientCount.Load()),
		StepMS:  float64(s.stepNanos.Load()) / 1e6,
		QueueDepths: QueueDepths{
			Inbox:  len(s.inbox),
			Join:   len(s.join),
			Attach: len(s.attach),
			Leave:  len(s.leave),
		},
	}
}
