package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"gearbench/internal/protocol"
	"gearbench/internal/sim/catalogs"
	"gearbench/internal/sim/tuning"
	"gearbench/internal/sim/workshop"
)

// Hooks wires optional persistence into sessions. Any field may be nil.
type Hooks struct {
	// Index receives mutation/jam telemetry from every session.
	Index workshop.IndexSink

	// OpLog opens a per-session op logger. If the returned logger also
	// implements io.Closer it is closed when the session ends.
	OpLog func(sessionID string) workshop.OpLogger

	// SessionStarted/SessionEnded bracket a connection's lifetime.
	SessionStarted func(sessionID, clientName string)
	SessionEnded   func(sessionID string, ticks uint64)
}

// Server upgrades connections and runs one workshop per client.
type Server struct {
	tune  tuning.Tuning
	cats  *catalogs.Catalogs
	hooks Hooks
	log   *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	active   atomic.Int64
}

// SessionsStarted is the total number of accepted handshakes.
func (s *Server) SessionsStarted() uint64 { return s.nextID.Load() }

// ActiveSessions is the number of sessions currently connected.
func (s *Server) ActiveSessions() int64 { return s.active.Load() }

func NewServer(tune tuning.Tuning, cats *catalogs.Catalogs, hooks Hooks, logger *log.Logger) *Server {
	return &Server{
		tune:  tune,
		cats:  cats,
		hooks: hooks,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handshake(conn)
		if !ok {
			return
		}

		sid := fmt.Sprintf("S%d", s.nextID.Add(1))
		s.active.Add(1)
		defer s.active.Add(-1)

		maxQ := hello.Capabilities.MaxQueue
		if maxQ <= 0 {
			maxQ = 64
		}
		if maxQ > 1024 {
			maxQ = 1024
		}
		out := make(chan []byte, maxQ)

		var opLog workshop.OpLogger
		if s.hooks.OpLog != nil {
			opLog = s.hooks.OpLog(sid)
		}

		w := workshop.New(workshop.Config{
			SessionID:       sid,
			Tune:            s.tune,
			Cats:            s.cats,
			StateEveryTicks: hello.Capabilities.StateEveryTicks,
		}, out, opLog, s.hooks.Index)

		// Welcome + catalogs before any frames.
		if err := writeJSON(conn, w.Welcome()); err != nil {
			return
		}
		for _, c := range w.CatalogMsgs() {
			if err := writeJSON(conn, c); err != nil {
				return
			}
		}

		if s.hooks.SessionStarted != nil {
			s.hooks.SessionStarted(sid, hello.ClientName)
		}
		s.log.Printf("session %s: %q connected", sid, hello.ClientName)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go func() {
			_ = w.Run(ctx)
		}()
		defer w.Stop()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				continue
			}
			select {
			case w.Acts() <- act:
			case <-ctx.Done():
			}
		}

		// Cleanup.
		if c, ok := opLog.(io.Closer); ok && c != nil {
			_ = c.Close()
		}
		if s.hooks.SessionEnded != nil {
			s.hooks.SessionEnded(sid, w.CurrentTick())
		}
		s.log.Printf("session %s: disconnected at tick %d", sid, w.CurrentTick())
	}
}

// handshake reads the HELLO and validates the protocol version.
func (s *Server) handshake(conn *websocket.Conn) (protocol.HelloMsg, bool) {
	var hello protocol.HelloMsg

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return hello, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return hello, false
	}
	if err := json.Unmarshal(msg, &hello); err != nil {
		return hello, false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return hello, false
	}
	if strings.TrimSpace(hello.ClientName) == "" {
		hello.ClientName = "canvas"
	}
	return hello, true
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
