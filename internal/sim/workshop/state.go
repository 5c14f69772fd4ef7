package workshop

import (
	"gearbench/internal/protocol"
)

// stateFrame builds the full-bench STATE message for one tick.
func (w *Workshop) stateFrame(now uint64) protocol.StateMsg {
	gs := w.bench.Gears()
	frame := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            now,
		Playing:         w.playing,
		ActiveLevel:     int(w.activeLevel),
		Gears:           make([]protocol.GearState, 0, len(gs)),
		Digest:          w.bench.StateDigest(),
	}
	for _, g := range gs {
		frame.Gears = append(frame.Gears, protocol.GearState{
			ID:     g.ID,
			Kind:   string(g.Kind),
			Teeth:  g.Teeth,
			X:      g.Pos.X,
			Y:      g.Pos.Y,
			Level:  int(g.Level),
			Angle:  g.Angle,
			RPM:    g.RPM,
			Dir:    g.Dir,
			Jammed: g.Jammed,
			Color:  g.Color,
			Label:  g.Label,
		})
	}
	links := w.bench.Links()
	frame.Links = make([]protocol.LinkState, 0, len(links))
	for _, l := range links {
		frame.Links = append(frame.Links, protocol.LinkState{A: l.A, B: l.B, Kind: string(l.Kind)})
	}
	return frame
}

// Welcome builds the handshake reply for this session.
func (w *Workshop) Welcome() protocol.WelcomeMsg {
	t := w.cfg.Tune
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       w.cfg.SessionID,
		BenchParams: protocol.BenchParams{
			TickRateHz:    t.TickRateHz,
			CanvasWidth:   t.CanvasWidth,
			CanvasHeight:  t.CanvasHeight,
			GearModule:    t.GearModule,
			MeshEpsilon:   t.MeshEpsilon,
			AxleEpsilon:   t.AxleEpsilon,
			SnapTolerance: t.SnapTolerance,
			AxleCapture:   t.AxleCapture,
			Levels:        2,
			MotorRPM:      t.MotorRPM,
			SlowMotorRPM:  t.SlowMotorRPM,
		},
		Catalogs: protocol.CatalogDigests{
			GearPalette: protocol.DigestRef{
				Digest: w.cfg.Cats.Gears.Digest,
				Count:  len(w.cfg.Cats.Gears.Templates),
			},
		},
		TuningDigest: t.Digest(),
	}
}

// CatalogMsgs builds the catalog payloads sent right after WELCOME.
func (w *Workshop) CatalogMsgs() []protocol.CatalogMsg {
	return []protocol.CatalogMsg{{
		Type:            protocol.TypeCatalog,
		ProtocolVersion: protocol.Version,
		Name:            "gear_palette",
		Digest:          w.cfg.Cats.Gears.Digest,
		Data:            w.cfg.Cats.Gears.Templates,
	}}
}
