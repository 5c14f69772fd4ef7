package gears

import "math"

// LinkKind tags how two gears are coupled.
type LinkKind string

const (
	LinkMesh LinkKind = "MESH"
	LinkAxle LinkKind = "AXLE"
)

// Link is an undirected coupling between two gears, reported with the
// lower id first. The same predicates drive both the propagator and any
// presentation layer drawing connection hints.
type Link struct {
	A    int      `json:"a"`
	B    int      `json:"b"`
	Kind LinkKind `json:"kind"`
}

// Meshed reports whether two gears' teeth interlock: same level, center
// distance within MeshEpsilon of the sum of their pitch radii. Gears on
// different levels are never meshed regardless of distance.
func (p Params) Meshed(a, b *Gear) bool {
	if a.Level != b.Level {
		return false
	}
	ideal := p.PitchRadius(a.Teeth) + p.PitchRadius(b.Teeth)
	return math.Abs(Distance(a.Pos, b.Pos)-ideal) < p.MeshEpsilon
}

// AxleLinked reports whether two gears share a vertical shaft: different
// levels, (nearly) coincident centers.
func (p Params) AxleLinked(a, b *Gear) bool {
	if a.Level == b.Level {
		return false
	}
	return Distance(a.Pos, b.Pos) < p.AxleEpsilon
}

// Links classifies every unordered pair from current positions. Nothing
// is cached across moves; connectivity is always re-derived.
func (b *Bench) Links() []Link {
	var links []Link
	for i := 0; i < len(b.gears); i++ {
		for j := i + 1; j < len(b.gears); j++ {
			gi, gj := b.gears[i], b.gears[j]
			a, z := gi.ID, gj.ID
			if a > z {
				a, z = z, a
			}
			switch {
			case b.params.Meshed(gi, gj):
				links = append(links, Link{A: a, B: z, Kind: LinkMesh})
			case b.params.AxleLinked(gi, gj):
				links = append(links, Link{A: a, B: z, Kind: LinkAxle})
			}
		}
	}
	return links
}
