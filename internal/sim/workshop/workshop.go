// Package workshop runs one client's gear bench: a single-goroutine
// authoritative loop that applies incoming acts, advances the animation
// and streams STATE frames. Each websocket session owns its own Workshop
// (and therefore its own Bench); sessions never share state.
package workshop

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"gearbench/internal/protocol"
	"gearbench/internal/sim/catalogs"
	"gearbench/internal/sim/gears"
	"gearbench/internal/sim/tuning"
)

type Config struct {
	SessionID string
	Tune      tuning.Tuning
	Cats      *catalogs.Catalogs

	// StateEveryTicks throttles STATE frames; <=1 means every tick.
	StateEveryTicks int
}

// OpLogger records accepted mutations (may be nil). Implemented in
// internal/persistence/log.
type OpLogger interface {
	WriteOp(entry OpLogEntry) error
}

// IndexSink records session telemetry (may be nil). Implemented in
// internal/persistence/indexdb.
type IndexSink interface {
	RecordMutation(sessionID string, tick uint64, op string, accepted bool, code string)
	RecordJam(sessionID string, tick uint64, gearsJammed int)
}

// OpLogEntry is one accepted structural mutation plus the digest of the
// bench after it. cmd/replay re-applies the ops and checks the digests.
type OpLogEntry struct {
	Tick    uint64              `json:"tick"`
	Instant protocol.InstantReq `json:"instant"`
	GearID  int                 `json:"gear_id,omitempty"`
	Digest  string              `json:"digest"`
}

// Workshop owns all per-session simulation state. Everything below is
// touched only from the Run goroutine.
type Workshop struct {
	cfg   Config
	bench *gears.Bench

	tick        atomic.Uint64
	playing     bool
	activeLevel gears.Level

	acts chan protocol.ActMsg
	out  chan []byte
	stop chan struct{}

	opLog OpLogger
	index IndexSink

	// jammedLast tracks the jammed gear count so a jam event is indexed
	// once per onset, not once per tick.
	jammedLast int
}

func New(cfg Config, out chan []byte, opLog OpLogger, index IndexSink) *Workshop {
	if cfg.StateEveryTicks < 1 {
		cfg.StateEveryTicks = 1
	}
	return &Workshop{
		cfg:         cfg,
		bench:       gears.NewBench(cfg.Tune.Params()),
		playing:     true,
		activeLevel: gears.LevelLower,
		acts:        make(chan protocol.ActMsg, 16),
		out:         out,
		stop:        make(chan struct{}),
		opLog:       opLog,
		index:       index,
	}
}

// Bench exposes the underlying bench for tests and replay.
func (w *Workshop) Bench() *gears.Bench { return w.bench }

// Acts is the inbound act channel; the transport writes decoded ACT
// messages to it.
func (w *Workshop) Acts() chan<- protocol.ActMsg { return w.acts }

func (w *Workshop) CurrentTick() uint64 { return w.tick.Load() }

func (w *Workshop) Stop() { close(w.stop) }

// Run drives the session at the tuned tick rate until the context is
// cancelled or Stop is called. Acts queue up between ticks and are
// applied in arrival order at the top of the tick, before the animation
// advances; a mutation therefore never lands mid-frame.
func (w *Workshop) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.Tune.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []protocol.ActMsg

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case act := <-w.acts:
			pending = append(pending, act)
		case <-ticker.C:
			w.step(interval.Seconds(), pending)
			pending = pending[:0]
		}
	}
}

// step is one tick: apply acts, advance angles, emit a frame.
func (w *Workshop) step(dt float64, acts []protocol.ActMsg) {
	now := w.tick.Load()

	for _, act := range acts {
		for _, inst := range act.Instants {
			ack := w.applyInstant(now, inst)
			w.send(ack)
		}
	}

	if w.playing {
		w.bench.Advance(dt)
	}

	if now%uint64(w.cfg.StateEveryTicks) == 0 {
		w.send(w.stateFrame(now))
	}

	w.tick.Add(1)
}

// send marshals and queues a frame, dropping it if the client is too far
// behind to drain its channel. Dropped STATE frames are harmless: the
// next one carries the full bench again.
func (w *Workshop) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case w.out <- b:
	default:
	}
}
