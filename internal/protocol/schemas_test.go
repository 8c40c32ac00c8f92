package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	stateSchema := compile("state.schema.json")
	cmdSchema := compile("cmd.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "actor_name":"bot1",
	  "capabilities":{"max_queue":8}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "actor_id":"A1",
	  "resume_token":"resume_stage_1_123",
	  "stage_params":{
	    "tick_rate_hz":20,
	    "seed":1337,
	    "move_speed":4.5,
	    "sprint_multiplier":1.6,
	    "jump_speed":7.5,
	    "gravity":24.0
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "tick":42,
	  "actor_id":"A1",
	  "self":{
	    "pos":[0.0,0.0,0.0],
	    "vel":[0.0,0.0,0.0],
	    "grounded":true,
	    "sprinting":false,
	    "throttle":[0.0,0.0,1.0],
	    "world_throttle":[0.0,0.0,1.0],
	    "look_axes":[0.0,0.0],
	    "player_controllable":true,
	    "controlling_player":"P1"
	  },
	  "actors":[{"id":"A2","name":"patrol","pos":[3.0,0.0,-2.0],"grounded":true,"scripted":true}],
	  "events":[{"t":42,"type":"ACTION_RESULT","ref":"C1","ok":true}]
	}`), &state)
	validate(stateSchema, state)

	var cmd any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "tick":42,
	  "actor_id":"A1",
	  "intents":[
	    {"id":"I1","type":"MOVE","throttle":[0.0,0.0,1.0]},
	    {"id":"I2","type":"LOOK","look_axes":[1.5707,0.0]},
	    {"id":"I3","type":"SPRINT","sprint":true}
	  ],
	  "controls":[
	    {"id":"C1","type":"SET_CAMERA","target":"A2"},
	    {"id":"C2","type":"SET_CONTROLLING_PLAYER","player_id":"P1"}
	  ]
	}`), &cmd)
	validate(cmdSchema, cmd)
}
