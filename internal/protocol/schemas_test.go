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
	actSchema := compile("act.schema.json")
	ackSchema := compile("ack.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"canvas",
	  "capabilities":{"state_every_ticks":2,"max_queue":128}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"S1",
	  "bench_params":{
	    "tick_rate_hz":30,
	    "canvas_width":1200,
	    "canvas_height":800,
	    "gear_module":5,
	    "mesh_epsilon":3,
	    "axle_epsilon":3,
	    "snap_tolerance":10,
	    "axle_capture":25,
	    "levels":2,
	    "motor_rpm":60,
	    "slow_motor_rpm":15
	  },
	  "catalogs":{
	    "gear_palette":{"digest":"deadbeef","count":9}
	  },
	  "tuning_digest":"deadbeef"
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "tick":42,
	  "playing":true,
	  "active_level":0,
	  "gears":[
	    {"id":1,"kind":"MOTOR","teeth":12,"x":100,"y":100,"level":0,"angle":1.5,"rpm":60,"dir":1,"jammed":false,"color":"#e05c3a","label":"Motor"},
	    {"id":2,"kind":"PLAIN","teeth":24,"x":190,"y":100,"level":0,"angle":-0.75,"rpm":30,"dir":-1,"jammed":false}
	  ],
	  "links":[{"a":1,"b":2,"kind":"MESH"}],
	  "digest":"deadbeef"
	}`), &state)
	validate(stateSchema, state)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "instants":[
	    {"id":"I1","type":"ADD_GEAR","template_id":"GEAR_12","x":300,"y":200,"level":0,"snap":true},
	    {"id":"I2","type":"DRAG","gear_id":1,"x":310,"y":205},
	    {"id":"I3","type":"SET_PLAYING","playing":false}
	  ]
	}`), &act)
	validate(actSchema, act)

	var ack any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACK",
	  "protocol_version":"1.0",
	  "ack_for":"I2",
	  "accepted":true,
	  "tick":42,
	  "ghost":{"x":290,"y":200,"valid":true,"snap_kind":"MESH","target_id":1}
	}`), &ack)
	validate(ackSchema, ack)

	var rejected any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACK",
	  "protocol_version":"1.0",
	  "ack_for":"I1",
	  "accepted":false,
	  "code":"E_OVERLAP",
	  "message":"gears overlap"
	}`), &rejected)
	validate(ackSchema, rejected)
}
