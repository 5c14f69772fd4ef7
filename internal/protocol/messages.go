package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ClientName      string            `json:"client_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	// StateEveryTicks asks for STATE frames every N ticks (default 1).
	StateEveryTicks int `json:"state_every_ticks,omitempty"`
	MaxQueue        int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	BenchParams     BenchParams    `json:"bench_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
	TuningDigest    string         `json:"tuning_digest,omitempty"`
}

// BenchParams tells the client enough to draw and to predict snapping
// locally while a drag is in flight.
type BenchParams struct {
	TickRateHz    int     `json:"tick_rate_hz"`
	CanvasWidth   float64 `json:"canvas_width"`
	CanvasHeight  float64 `json:"canvas_height"`
	GearModule    float64 `json:"gear_module"`
	MeshEpsilon   float64 `json:"mesh_epsilon"`
	AxleEpsilon   float64 `json:"axle_epsilon"`
	SnapTolerance float64 `json:"snap_tolerance"`
	AxleCapture   float64 `json:"axle_capture"`
	Levels        int     `json:"levels"`
	MotorRPM      float64 `json:"motor_rpm"`
	SlowMotorRPM  float64 `json:"slow_motor_rpm"`
}

type CatalogDigests struct {
	GearPalette DigestRef `json:"gear_palette"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CATALOG (server -> client): one catalog as a single part.
type CatalogMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Name            string      `json:"name"`   // e.g. "gear_palette"
	Digest          string      `json:"digest"` // sha256 hex
	Data            interface{} `json:"data"`
}

// ACK (server -> client): outcome of one instant. Rejections carry an E_*
// code; DRAG previews carry the ghost result.
type AckMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	AckFor          string       `json:"ack_for"`
	Accepted        bool         `json:"accepted"`
	Code            string       `json:"code,omitempty"`
	Message         string       `json:"message,omitempty"`
	Tick            uint64       `json:"tick,omitempty"`
	GearID          int          `json:"gear_id,omitempty"` // assigned id on ADD_GEAR
	Ghost           *GhostResult `json:"ghost,omitempty"`
}

// GhostResult is the snapped preview for a non-committing DRAG: where the
// gear would land and whether committing there would be accepted.
type GhostResult struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Valid    bool    `json:"valid"`
	SnapKind string  `json:"snap_kind,omitempty"` // "MESH" or "AXLE"
	TargetID int     `json:"target_id,omitempty"`
}
