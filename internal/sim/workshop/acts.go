package workshop

import (
	"errors"

	"gearbench/internal/protocol"
	"gearbench/internal/sim/catalogs"
	"gearbench/internal/sim/gears"
)

// Apply executes one instant outside the Run loop. cmd/replay uses it to
// re-drive a recorded op stream against a fresh bench.
func (w *Workshop) Apply(tick uint64, inst protocol.InstantReq) protocol.AckMsg {
	return w.applyInstant(tick, inst)
}

// applyInstant executes one instant against the bench and builds its ACK.
// Rejections leave the bench untouched; only accepted structural
// mutations reach the op log and the index.
func (w *Workshop) applyInstant(now uint64, inst protocol.InstantReq) protocol.AckMsg {
	ack := protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          inst.ID,
		Tick:            now,
	}

	switch inst.Type {
	case protocol.InstantAddGear:
		w.applyAdd(inst, &ack)
	case protocol.InstantMoveGear:
		w.applyMove(inst, &ack)
	case protocol.InstantDeleteGear:
		if err := w.bench.DeleteGear(inst.GearID); err != nil {
			reject(&ack, err)
		} else {
			ack.Accepted = true
		}
	case protocol.InstantClear:
		w.bench.ClearAll()
		ack.Accepted = true
	case protocol.InstantDrag:
		w.applyDrag(inst, &ack)
	case protocol.InstantSetLevel:
		if lvl := gears.Level(inst.Level); lvl.Valid() {
			w.activeLevel = lvl
			ack.Accepted = true
		} else {
			ack.Code = protocol.ErrUnknownLevel
		}
	case protocol.InstantSetPlaying:
		w.playing = inst.Playing
		ack.Accepted = true
	default:
		ack.Code = protocol.ErrBadRequest
		ack.Message = "unknown instant type"
	}

	w.record(now, inst, &ack)
	return ack
}

// template resolves the palette entry (or inline kind/teeth) of an
// ADD_GEAR or DRAG request.
func (w *Workshop) template(inst protocol.InstantReq) (catalogs.GearTemplate, string) {
	if inst.TemplateID != "" {
		tpl, ok := w.cfg.Cats.Gears.ByID[inst.TemplateID]
		if !ok {
			return catalogs.GearTemplate{}, protocol.ErrUnknownTemplate
		}
		return tpl, ""
	}
	tpl := catalogs.GearTemplate{
		Kind:  gears.Kind(inst.Kind),
		Teeth: inst.Teeth,
		Color: inst.Color,
		Label: inst.Label,
	}
	if !tpl.Kind.Valid() || tpl.Teeth <= 0 {
		return catalogs.GearTemplate{}, protocol.ErrBadRequest
	}
	return tpl, ""
}

func (w *Workshop) applyAdd(inst protocol.InstantReq, ack *protocol.AckMsg) {
	tpl, code := w.template(inst)
	if code != "" {
		ack.Code = code
		return
	}
	lvl := gears.Level(inst.Level)
	if !lvl.Valid() {
		ack.Code = protocol.ErrUnknownLevel
		return
	}
	pos := gears.Vec2{X: inst.X, Y: inst.Y}
	if inst.Snap {
		pos, _ = w.bench.BestSnap(tpl.Teeth, pos, 0, lvl)
	}
	g, err := w.bench.AddGear(tpl.Kind, tpl.Teeth, pos, lvl, tpl.Color, tpl.Label)
	if err != nil {
		reject(ack, err)
		return
	}
	ack.Accepted = true
	ack.GearID = g.ID
}

func (w *Workshop) applyMove(inst protocol.InstantReq, ack *protocol.AckMsg) {
	g := w.bench.Gear(inst.GearID)
	if g == nil {
		ack.Code = protocol.ErrUnknownGear
		return
	}
	pos := gears.Vec2{X: inst.X, Y: inst.Y}
	if inst.Snap {
		pos, _ = w.bench.BestSnap(g.Teeth, pos, g.ID, g.Level)
	}
	if err := w.bench.MoveGear(g.ID, pos); err != nil {
		reject(ack, err)
		return
	}
	ack.Accepted = true
}

// applyDrag answers a preview request without committing anything: the
// snapped ghost position plus whether a commit there would be accepted.
func (w *Workshop) applyDrag(inst protocol.InstantReq, ack *protocol.AckMsg) {
	teeth := 0
	excludeID := 0
	lvl := gears.Level(inst.Level)
	if inst.GearID != 0 {
		g := w.bench.Gear(inst.GearID)
		if g == nil {
			ack.Code = protocol.ErrUnknownGear
			return
		}
		teeth, excludeID, lvl = g.Teeth, g.ID, g.Level
	} else {
		tpl, code := w.template(inst)
		if code != "" {
			ack.Code = code
			return
		}
		teeth = tpl.Teeth
		if !lvl.Valid() {
			ack.Code = protocol.ErrUnknownLevel
			return
		}
	}

	pos, cand := w.bench.BestSnap(teeth, gears.Vec2{X: inst.X, Y: inst.Y}, excludeID, lvl)
	ghost := &protocol.GhostResult{
		X: pos.X,
		Y: pos.Y,
		Valid: w.bench.InBounds(teeth, pos) &&
			!w.bench.Overlaps(teeth, pos, lvl, excludeID),
	}
	if cand != nil {
		ghost.SnapKind = string(cand.Kind)
		ghost.TargetID = cand.TargetID
	}
	ack.Accepted = true
	ack.Ghost = ghost
}

func reject(ack *protocol.AckMsg, err error) {
	switch {
	case errors.Is(err, gears.ErrOverlap):
		ack.Code = protocol.ErrOverlap
	case errors.Is(err, gears.ErrOutOfBounds):
		ack.Code = protocol.ErrOutOfBounds
	case errors.Is(err, gears.ErrNoSuchGear):
		ack.Code = protocol.ErrUnknownGear
	case errors.Is(err, gears.ErrBadLevel):
		ack.Code = protocol.ErrUnknownLevel
	default:
		ack.Code = protocol.ErrBadRequest
	}
	ack.Message = err.Error()
}

// record feeds the op log and index after an instant. DRAG previews and
// view-state toggles are not structural and stay out of the op log.
func (w *Workshop) record(now uint64, inst protocol.InstantReq, ack *protocol.AckMsg) {
	structural := inst.Type == protocol.InstantAddGear ||
		inst.Type == protocol.InstantMoveGear ||
		inst.Type == protocol.InstantDeleteGear ||
		inst.Type == protocol.InstantClear

	if w.index != nil && inst.Type != protocol.InstantDrag {
		w.index.RecordMutation(w.cfg.SessionID, now, inst.Type, ack.Accepted, ack.Code)
	}
	if !structural || !ack.Accepted {
		return
	}
	if w.opLog != nil {
		_ = w.opLog.WriteOp(OpLogEntry{
			Tick:    now,
			Instant: inst,
			GearID:  ack.GearID,
			Digest:  w.bench.StateDigest(),
		})
	}

	jammed := 0
	for _, g := range w.bench.Gears() {
		if g.Jammed {
			jammed++
		}
	}
	if w.index != nil && jammed > 0 && w.jammedLast == 0 {
		w.index.RecordJam(w.cfg.SessionID, now, jammed)
	}
	w.jammedLast = jammed
}
