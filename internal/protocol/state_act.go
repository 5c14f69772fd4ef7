package protocol

// STATE (server -> client): the full authoritative bench, emitted on a
// fixed tick cadence. The render loop consumes it as-is and advances
// angles client-side between frames.
type StateMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	Playing         bool        `json:"playing"`
	ActiveLevel     int         `json:"active_level"`
	Gears           []GearState `json:"gears"`
	Links           []LinkState `json:"links"`
	Digest          string      `json:"digest,omitempty"`
}

type GearState struct {
	ID     int     `json:"id"`
	Kind   string  `json:"kind"`
	Teeth  int     `json:"teeth"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Level  int     `json:"level"`
	Angle  float64 `json:"angle"`
	RPM    float64 `json:"rpm"`
	Dir    int     `json:"dir"`
	Jammed bool    `json:"jammed"`
	Color  string  `json:"color,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// LinkState mirrors the connectivity query for connection-line drawing.
type LinkState struct {
	A    int    `json:"a"`
	B    int    `json:"b"`
	Kind string `json:"kind"` // "MESH" or "AXLE"
}

// ACT (client -> server)
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Instants        []InstantReq `json:"instants,omitempty"`
}

// Instant types.
const (
	InstantAddGear    = "ADD_GEAR"
	InstantMoveGear   = "MOVE_GEAR"
	InstantDeleteGear = "DELETE_GEAR"
	InstantClear      = "CLEAR"
	InstantDrag       = "DRAG"
	InstantSetLevel   = "SET_LEVEL"
	InstantSetPlaying = "SET_PLAYING"
)

// InstantReq is one mutation (or preview) request. Which fields matter
// depends on the type:
//
//	ADD_GEAR:    template_id (or kind+teeth+color), x, y, level, snap
//	MOVE_GEAR:   gear_id, x, y, snap
//	DELETE_GEAR: gear_id
//	CLEAR:       -
//	DRAG:        template_id or gear_id, x, y, level (preview only)
//	SET_LEVEL:   level
//	SET_PLAYING: playing
type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	TemplateID string  `json:"template_id,omitempty"`
	Kind       string  `json:"kind,omitempty"`
	Teeth      int     `json:"teeth,omitempty"`
	Color      string  `json:"color,omitempty"`
	Label      string  `json:"label,omitempty"`
	GearID     int     `json:"gear_id,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Level      int     `json:"level,omitempty"`
	Snap       bool    `json:"snap,omitempty"`
	Playing    bool    `json:"playing,omitempty"`
}
