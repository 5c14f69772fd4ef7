// Command server runs the authoritative gear bench simulation behind a
// websocket endpoint. Each connection gets its own session and bench;
// accepted mutations stream to per-session op logs and a shared SQLite
// telemetry index.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gearbench/internal/persistence/indexdb"
	persistlog "gearbench/internal/persistence/log"
	"gearbench/internal/sim/catalogs"
	"gearbench/internal/sim/tuning"
	"gearbench/internal/sim/workshop"
	"gearbench/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		webDir     = flag.String("web", "", "static client directory to serve at / (empty to disable)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite telemetry index")
		disableOps = flag.Bool("disable_oplog", false, "disable per-session op logs")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("gear palette not found in %s; using built-in", *configDir)
			cats = catalogs.Default()
		} else {
			logger.Fatalf("load catalogs: %v", err)
		}
	}
	logger.Printf("tuning digest=%s palette digest=%s templates=%d",
		tune.Digest()[:12], cats.Gears.Digest[:12], len(cats.Gears.Templates))

	_ = os.MkdirAll(*dataDir, 0o755)

	var idx *indexdb.Index
	if !*disableDB {
		idx, err = indexdb.Open(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	hooks := ws.Hooks{}
	if idx != nil {
		hooks.Index = idx
		hooks.SessionStarted = idx.SessionStarted
		hooks.SessionEnded = idx.SessionEnded
	}
	if !*disableOps {
		opsDir := filepath.Join(*dataDir, "ops")
		hooks.OpLog = func(sessionID string) workshop.OpLogger {
			l, err := persistlog.NewOpLogger(opsDir, sessionID)
			if err != nil {
				logger.Printf("session %s: op log: %v", sessionID, err)
				return nil
			}
			return l
		}
	}

	srv := ws.NewServer(tune, cats, hooks, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP gearbench_sessions_active Currently connected sessions.\n")
		fmt.Fprintf(rw, "# TYPE gearbench_sessions_active gauge\n")
		fmt.Fprintf(rw, "gearbench_sessions_active %d\n", srv.ActiveSessions())

		fmt.Fprintf(rw, "# HELP gearbench_sessions_started_total Total accepted handshakes.\n")
		fmt.Fprintf(rw, "# TYPE gearbench_sessions_started_total counter\n")
		fmt.Fprintf(rw, "gearbench_sessions_started_total %d\n", srv.SessionsStarted())
	})

	if envBool("GB_ENABLE_ADMIN_HTTP", true) {
		// Local-only read endpoint over the telemetry index.
		mux.HandleFunc("/admin/v1/session", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				http.Error(rw, "index disabled", http.StatusServiceUnavailable)
				return
			}
			st, err := idx.Stats(r.URL.Query().Get("id"))
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(st)
		})
	} else {
		logger.Printf("admin endpoints disabled (GB_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("GB_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	mux.HandleFunc("/v1/ws", srv.Handler())
	if *webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*webDir)))
	}

	ctx, cancel := signalContext()
	defer cancel()

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = httpSrv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
