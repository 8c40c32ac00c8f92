package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ActorName       string            `json:"actor_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
	Auth            *HelloAuth        `json:"auth,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ActorID         string      `json:"actor_id"`
	ResumeToken     string      `json:"resume_token"`
	StageParams     StageParams `json:"stage_params"`
}

type StageParams struct {
	TickRateHz       int     `json:"tick_rate_hz"`
	Seed             int64   `json:"seed"`
	MoveSpeed        float64 `json:"move_speed"`
	SprintMultiplier float64 `json:"sprint_multiplier"`
	JumpSpeed        float64 `json:"jump_speed"`
	Gravity          float64 `json:"gravity"`
}
