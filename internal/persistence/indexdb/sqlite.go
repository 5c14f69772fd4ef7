// Package indexdb keeps a queryable index of session telemetry in
// SQLite: one row per session, one per mutation attempt, one per jam
// onset. Writes go through a buffered channel to a single writer
// goroutine; callers never block on the database.
package indexdb

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	reqBuffer     = 4096
	commitEvery   = 500
	commitMaxWait = 2 * time.Second
)

type reqKind int

const (
	reqSessionStart reqKind = iota
	reqSessionEnd
	reqMutation
	reqJam
)

type req struct {
	kind reqKind

	sessionID  string
	clientName string
	at         time.Time
	ticks      uint64

	tick     uint64
	op       string
	accepted bool
	code     string

	gearsJammed int
}

// Index is the async SQLite writer. Implements workshop.IndexSink.
type Index struct {
	db   *sql.DB
	reqs chan req
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the index database at path and starts the
// writer goroutine.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc.org/sqlite is happiest with a single connection.
	db.SetMaxOpenConns(1)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	idx := &Index{
		db:   db,
		reqs: make(chan req, reqBuffer),
		done: make(chan struct{}),
	}
	go idx.loop()
	return idx, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	ended_at    INTEGER,
	ticks       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS mutations (
	session_id TEXT NOT NULL,
	tick       INTEGER NOT NULL,
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	op         TEXT NOT NULL,
	accepted   INTEGER NOT NULL,
	code       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_mutations_session ON mutations(session_id, tick);

CREATE TABLE IF NOT EXISTS jams (
	session_id   TEXT NOT NULL,
	tick         INTEGER NOT NULL,
	gears_jammed INTEGER NOT NULL,
	at           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jams_session ON jams(session_id);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SessionStarted records a new session row.
func (i *Index) SessionStarted(sessionID, clientName string) {
	i.enqueue(req{kind: reqSessionStart, sessionID: sessionID, clientName: clientName, at: time.Now()})
}

// SessionEnded stamps the end time and final tick count.
func (i *Index) SessionEnded(sessionID string, ticks uint64) {
	i.enqueue(req{kind: reqSessionEnd, sessionID: sessionID, at: time.Now(), ticks: ticks})
}

// RecordMutation records one mutation attempt, accepted or not.
func (i *Index) RecordMutation(sessionID string, tick uint64, op string, accepted bool, code string) {
	i.enqueue(req{kind: reqMutation, sessionID: sessionID, tick: tick, op: op, accepted: accepted, code: code})
}

// RecordJam records a jam onset and how many gears seized.
func (i *Index) RecordJam(sessionID string, tick uint64, gearsJammed int) {
	i.enqueue(req{kind: reqJam, sessionID: sessionID, tick: tick, gearsJammed: gearsJammed, at: time.Now()})
}

// enqueue never blocks. Drop if the indexer falls behind; the op log is
// the durable record, the index is telemetry.
func (i *Index) enqueue(r req) {
	select {
	case i.reqs <- r:
	default:
	}
}

// Close drains pending requests and shuts the database.
func (i *Index) Close() error {
	i.closeOnce.Do(func() {
		close(i.reqs)
		<-i.done
		i.closeErr = i.db.Close()
	})
	return i.closeErr
}

func (i *Index) loop() {
	defer close(i.done)

	var (
		tx      *sql.Tx
		pending int
		timer   = time.NewTimer(commitMaxWait)
	)
	defer timer.Stop()

	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		pending = 0
	}

	apply := func(r req) {
		if tx == nil {
			var err error
			tx, err = i.db.Begin()
			if err != nil {
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(commitMaxWait)
		}
		switch r.kind {
		case reqSessionStart:
			_, _ = tx.Exec(
				`INSERT OR REPLACE INTO sessions(id, client_name, started_at) VALUES(?, ?, ?)`,
				r.sessionID, r.clientName, r.at.UnixMilli())
		case reqSessionEnd:
			_, _ = tx.Exec(
				`UPDATE sessions SET ended_at = ?, ticks = ? WHERE id = ?`,
				r.at.UnixMilli(), r.ticks, r.sessionID)
		case reqMutation:
			acc := 0
			if r.accepted {
				acc = 1
			}
			_, _ = tx.Exec(
				`INSERT INTO mutations(session_id, tick, op, accepted, code) VALUES(?, ?, ?, ?, ?)`,
				r.sessionID, r.tick, r.op, acc, r.code)
		case reqJam:
			_, _ = tx.Exec(
				`INSERT INTO jams(session_id, tick, gears_jammed, at) VALUES(?, ?, ?, ?)`,
				r.sessionID, r.tick, r.gearsJammed, r.at.UnixMilli())
		}
		pending++
		if pending >= commitEvery {
			commit()
		}
	}

	for {
		select {
		case r, ok := <-i.reqs:
			if !ok {
				commit()
				return
			}
			apply(r)
		case <-timer.C:
			commit()
			timer.Reset(commitMaxWait)
		}
	}
}

// SessionStats is a read-side summary used by the admin endpoint and
// tests.
type SessionStats struct {
	SessionID  string
	ClientName string
	Ticks      uint64
	Mutations  int
	Rejected   int
	Jams       int
}

// Stats summarizes one session. Returns sql.ErrNoRows if the session
// was never recorded.
func (i *Index) Stats(sessionID string) (SessionStats, error) {
	var st SessionStats
	st.SessionID = sessionID

	row := i.db.QueryRow(`SELECT client_name, ticks FROM sessions WHERE id = ?`, sessionID)
	if err := row.Scan(&st.ClientName, &st.Ticks); err != nil {
		return st, err
	}
	row = i.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(1 - accepted), 0) FROM mutations WHERE session_id = ?`, sessionID)
	if err := row.Scan(&st.Mutations, &st.Rejected); err != nil {
		return st, err
	}
	row = i.db.QueryRow(`SELECT COUNT(*) FROM jams WHERE session_id = ?`, sessionID)
	if err := row.Scan(&st.Jams); err != nil {
		return st, err
	}
	return st, nil
}
