package gears

// edge is one tagged adjacency entry. to points at the neighboring gear.
type edge struct {
	to   *Gear
	kind LinkKind
}

// adjacency classifies every unordered pair from current positions into a
// symmetric, type-tagged adjacency list. Rebuilt on every propagation; no
// edge cache survives a move.
func (b *Bench) adjacency() map[int][]edge {
	adj := make(map[int][]edge, len(b.gears))
	for i := 0; i < len(b.gears); i++ {
		for j := i + 1; j < len(b.gears); j++ {
			gi, gj := b.gears[i], b.gears[j]
			var kind LinkKind
			switch {
			case b.params.Meshed(gi, gj):
				kind = LinkMesh
			case b.params.AxleLinked(gi, gj):
				kind = LinkAxle
			default:
				continue
			}
			adj[gi.ID] = append(adj[gi.ID], edge{to: gj, kind: kind})
			adj[gj.ID] = append(adj[gj.ID], edge{to: gi, kind: kind})
		}
	}
	return adj
}

// Propagate recomputes every gear's speed, direction and jam flag from
// scratch.
//
// Each motor not already claimed by an earlier traversal seeds a BFS at
// its rated rpm, clockwise. A mesh edge flips direction and scales speed
// by the tooth ratio (angular speed is inversely proportional to teeth);
// an axle edge copies both. Reaching an already-assigned gear whose
// direction disagrees with what this edge implies jams the whole
// component reachable from the seeding motor: everything in it stops
// (rpm 0, dir 0, jammed). The jam is deliberately coarse - the entire
// reachable component freezes, not just the contradictory cycle.
//
// Gears with no path to any motor keep rpm 0, dir 0 and are never jammed.
// Each gear is enqueued at most once per traversal, so the whole pass is
// O(gears + edges) on top of the O(gears^2) adjacency build.
func (b *Bench) Propagate() {
	for _, g := range b.gears {
		g.resetDerived()
	}
	adj := b.adjacency()
	visited := make(map[int]bool, len(b.gears))

	for _, motor := range b.gears {
		if !motor.Kind.Motor() || visited[motor.ID] {
			continue
		}
		motor.Dir = DirCW
		motor.RPM = b.params.RatedRPM(motor.Kind)
		visited[motor.ID] = true

		jammed := false
		queue := []*Gear{motor}
		for len(queue) > 0 && !jammed {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range adj[cur.ID] {
				wantDir := cur.Dir
				wantRPM := cur.RPM
				if e.kind == LinkMesh {
					wantDir = -cur.Dir
					wantRPM = cur.RPM * float64(cur.Teeth) / float64(e.to.Teeth)
				}
				if visited[e.to.ID] {
					if e.to.Dir != wantDir {
						jammed = true
						break
					}
					continue
				}
				e.to.Dir = wantDir
				e.to.RPM = wantRPM
				visited[e.to.ID] = true
				queue = append(queue, e.to)
			}
		}

		if jammed {
			for _, g := range b.component(motor, adj) {
				g.RPM = 0
				g.Dir = DirNone
				g.Jammed = true
				visited[g.ID] = true
			}
		}
	}
}

// component flood-fills the full set reachable from root, ignoring any
// per-motor visited gating.
func (b *Bench) component(root *Gear, adj map[int][]edge) []*Gear {
	seen := map[int]bool{root.ID: true}
	out := []*Gear{root}
	queue := []*Gear{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur.ID] {
			if seen[e.to.ID] {
				continue
			}
			seen[e.to.ID] = true
			out = append(out, e.to)
			queue = append(queue, e.to)
		}
	}
	return out
}
