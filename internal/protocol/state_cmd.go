package protocol

// STATE (server -> client): per-tick observation of the session's actor
// plus a brief view of every other actor on the stage.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	ActorID         string `json:"actor_id"`

	Self   SelfState    `json:"self"`
	Actors []ActorState `json:"actors,omitempty"`
	Events []Event      `json:"events,omitempty"`
}

type SelfState struct {
	Pos [3]float64 `json:"pos"`
	Vel [3]float64 `json:"vel"`

	Grounded  bool `json:"grounded"`
	Sprinting bool `json:"sprinting"`

	// Raw input throttle: X=left/right, Y=jump, Z=forward/back.
	Throttle [3]float64 `json:"throttle"`
	// World-space throttle, each component in [-1,1].
	WorldThrottle [3]float64 `json:"world_throttle"`
	// Horizontal and vertical turn angles in radians.
	LookAxes [2]float64 `json:"look_axes"`

	CameraActor        string `json:"camera_actor,omitempty"`
	PlayerControllable bool   `json:"player_controllable"`
	ControllingPlayer  string `json:"controlling_player,omitempty"`
}

type ActorState struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Pos      [3]float64 `json:"pos"`
	Grounded bool       `json:"grounded"`
	Scripted bool       `json:"scripted,omitempty"`
}

type Event map[string]interface{}

// CMD (client -> server): player intent plus control operations, applied
// to the session's actor on the next tick.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	ActorID         string `json:"actor_id"`

	Intents  []IntentReq  `json:"intents,omitempty"`
	Controls []ControlReq `json:"controls,omitempty"`
}

// IntentReq carries continuous movement intent.
type IntentReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Throttle *[3]float64 `json:"throttle,omitempty"`
	LookAxes *[2]float64 `json:"look_axes,omitempty"`
	Sprint   *bool       `json:"sprint,omitempty"`
}

// ControlReq carries camera/controllability operations.
type ControlReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Target   string  `json:"target,omitempty"`
	Value    *bool   `json:"value,omitempty"`
	PlayerID *string `json:"player_id,omitempty"`
}
