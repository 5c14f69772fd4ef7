package gears

import "math"

// SnapCandidate is one valid attachment found near a dragged position.
type SnapCandidate struct {
	Pos      Vec2     `json:"pos"`       // corrected position to commit
	Kind     LinkKind `json:"kind"`      // MESH or AXLE
	TargetID int      `json:"target_id"` // gear snapped against
	Err      float64  `json:"err"`       // |actual - ideal| before correction
}

// SnapMesh scans same-level gears (excluding excludeID) for a mesh
// attachment near pos. The capture band is SnapTolerance plus 30% of the
// ideal mesh distance, so big gear pairs capture from further away.
// Candidates closer than half the combined outer radii are rejected: a
// drag that already interpenetrates a gear must not snap "through" it.
// Among eligible gears the one with the smallest distance error wins, and
// the returned position sits exactly at mesh distance along the line from
// the candidate's center through pos.
func (b *Bench) SnapMesh(teeth int, pos Vec2, excludeID int, level Level) *SnapCandidate {
	var best *SnapCandidate
	for _, g := range b.gears {
		if g.ID == excludeID || g.Level != level {
			continue
		}
		d := Distance(pos, g.Pos)
		ideal := b.params.PitchRadius(teeth) + b.params.PitchRadius(g.Teeth)
		if d < (b.params.OuterRadius(teeth)+b.params.OuterRadius(g.Teeth))/2 {
			continue
		}
		errDist := math.Abs(d - ideal)
		if errDist > b.params.SnapTolerance+ideal*0.3 {
			continue
		}
		if best != nil && errDist >= best.Err {
			continue
		}
		// Place exactly at mesh distance, preserving the drag bearing.
		dir := pos.Sub(g.Pos)
		scale := ideal / dir.Len()
		best = &SnapCandidate{
			Pos:      Vec2{X: g.Pos.X + dir.X*scale, Y: g.Pos.Y + dir.Y*scale},
			Kind:     LinkMesh,
			TargetID: g.ID,
			Err:      errDist,
		}
	}
	return best
}

// SnapAxle scans gears on the opposite level for one within the axle
// capture radius and snaps exactly onto its center (axle links require
// coincident centers). The nearest candidate wins.
func (b *Bench) SnapAxle(pos Vec2, excludeID int, level Level) *SnapCandidate {
	var best *SnapCandidate
	for _, g := range b.gears {
		if g.ID == excludeID || g.Level != level.Other() {
			continue
		}
		d := Distance(pos, g.Pos)
		if d > b.params.AxleCapture {
			continue
		}
		if best != nil && d >= best.Err {
			continue
		}
		best = &SnapCandidate{Pos: g.Pos, Kind: LinkAxle, TargetID: g.ID, Err: d}
	}
	return best
}

// BestSnap resolves the two candidate kinds in the recommended order:
// axle first (the stronger magnet), then mesh, else the raw position.
func (b *Bench) BestSnap(teeth int, pos Vec2, excludeID int, level Level) (Vec2, *SnapCandidate) {
	if c := b.SnapAxle(pos, excludeID, level); c != nil {
		return c.Pos, c
	}
	if c := b.SnapMesh(teeth, pos, excludeID, level); c != nil {
		return c.Pos, c
	}
	return pos, nil
}

// Overlaps reports whether a gear of the given tooth count at pos would
// interpenetrate any same-level gear other than excludeID. Sitting within
// MeshEpsilon of the exact mesh distance is legitimate contact, not
// overlap.
func (b *Bench) Overlaps(teeth int, pos Vec2, level Level, excludeID int) bool {
	for _, g := range b.gears {
		if g.ID == excludeID || g.Level != level {
			continue
		}
		d := Distance(pos, g.Pos)
		sum := b.params.PitchRadius(teeth) + b.params.PitchRadius(g.Teeth)
		if math.Abs(d-sum) < b.params.MeshEpsilon {
			continue
		}
		if d < b.params.OverlapFactor*sum {
			return true
		}
	}
	return false
}

// InBounds reports whether the whole gear (to its outer radius) fits on
// the canvas.
func (b *Bench) InBounds(teeth int, pos Vec2) bool {
	r := b.params.OuterRadius(teeth)
	return pos.X >= r && pos.X <= b.params.Width-r &&
		pos.Y >= r && pos.Y <= b.params.Height-r
}
