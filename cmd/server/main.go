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
	"strconv"
	"strings"
	"syscall"
	"time"

	"actorstage.dev/internal/persistence/indexdb"
	persistlog "actorstage.dev/internal/persistence/log"
	"actorstage.dev/internal/persistence/snapshot"
	"actorstage.dev/internal/script"
	"actorstage.dev/internal/sim/cast"
	"actorstage.dev/internal/sim/scene"
	"actorstage.dev/internal/sim/tuning"
	"actorstage.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		stageID    = flag.String("stage", "stage_1", "stage id")
		seed       = flag.Int64("seed", 1337, "stage seed (used only when starting fresh)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		castPath   = flag.String("cast", "", "path to cast.yaml (default: <configs>/cast.yaml)")
		scriptDir  = flag.String("scripts", "./scripts", "directory holding cast Lua scripts")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (tick/audit/snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	stageDir := filepath.Join(*dataDir, "stages", *stageID)
	_ = os.MkdirAll(stageDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	cp := strings.TrimSpace(*castPath)
	if cp == "" {
		cp = filepath.Join(*configDir, "cast.yaml")
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(stageDir)
	}

	// Load tuning (required for a fresh stage; optional on snapshot resume,
	// where the snapshot carries the effective values).
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" || !os.IsNotExist(tuneErr) {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	// Optional read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		var err error
		idx, err = indexdb.OpenSQLite(filepath.Join(stageDir, "stage.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	var st *scene.Scene
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.StageID != "" && snap.Header.StageID != *stageID {
			logger.Fatalf("snapshot stage id mismatch: flag=%s snap=%s", *stageID, snap.Header.StageID)
		}
		st, err = scene.New(scene.StageConfig{
			ID:                 *stageID,
			TickRateHz:         snap.TickRateHz,
			Seed:               snap.Seed,
			GroundY:            snap.GroundY,
			MoveSpeed:          snap.MoveSpeed,
			SprintMultiplier:   snap.SprintMultiplier,
			JumpSpeed:          snap.JumpSpeed,
			Gravity:            snap.Gravity,
			BoundaryR:          snap.BoundaryR,
			SnapshotEveryTicks: snap.SnapshotEveryTicks,
		})
		if err != nil {
			logger.Fatalf("scene: %v", err)
		}
		if err := st.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), st.CurrentTick())
	} else {
		var err error
		st, err = scene.New(scene.StageConfig{
			ID:                 *stageID,
			TickRateHz:         tune.TickRateHz,
			Seed:               *seed,
			GroundY:            tune.GroundY,
			MoveSpeed:          tune.MoveSpeed,
			SprintMultiplier:   tune.SprintMultiplier,
			JumpSpeed:          tune.JumpSpeed,
			Gravity:            tune.Gravity,
			BoundaryR:          tune.BoundaryR,
			SnapshotEveryTicks: tune.SnapshotEveryTicks,
		})
		if err != nil {
			logger.Fatalf("scene: %v", err)
		}
	}

	// Spawn the scripted cast and attach their scripts (pre-Run).
	runtime := script.NewRuntime(st, logger)
	if roster, err := cast.Load(cp); err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load cast: %v", err)
		}
		logger.Printf("cast not found (%s); starting with an empty stage", cp)
	} else {
		for _, m := range roster.Actors {
			a := st.SpawnActor(m.Name, scene.Vec3{X: m.Pos[0], Y: m.Pos[1], Z: m.Pos[2]}, m.Controllable, m.Script != "")
			if m.Script == "" {
				continue
			}
			if err := runtime.Attach(a.ID, filepath.Join(*scriptDir, m.Script)); err != nil {
				logger.Fatalf("attach script %s to %s: %v", m.Script, m.Name, err)
			}
		}
		logger.Printf("cast loaded: %d actors", len(roster.Actors))
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(stageDir)
	auditLog := persistlog.NewAuditLogger(stageDir)
	defer tickLog.Close()
	defer auditLog.Close()
	st.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	st.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})

	// Snapshot writer.
	snapCh := make(chan snapshot.StageSnapshotV1, 2)
	st.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(stageDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	go func() {
		if err := st.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("scene stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := st.Metrics()
		tick := st.CurrentTick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP actorstage_stage_tick Current stage tick.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_stage_tick gauge\n")
		fmt.Fprintf(rw, "actorstage_stage_tick{stage=%q} %d\n", *stageID, tick)

		fmt.Fprintf(rw, "# HELP actorstage_stage_actors Current number of actors on the stage.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_stage_actors gauge\n")
		fmt.Fprintf(rw, "actorstage_stage_actors{stage=%q} %d\n", *stageID, m.Actors)

		fmt.Fprintf(rw, "# HELP actorstage_stage_clients Current number of connected clients.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_stage_clients gauge\n")
		fmt.Fprintf(rw, "actorstage_stage_clients{stage=%q} %d\n", *stageID, m.Clients)

		fmt.Fprintf(rw, "# HELP actorstage_stage_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_stage_queue_depth gauge\n")
		fmt.Fprintf(rw, "actorstage_stage_queue_depth{stage=%q,queue=%q} %d\n", *stageID, "inbox", m.QueueDepths.Inbox)
		fmt.Fprintf(rw, "actorstage_stage_queue_depth{stage=%q,queue=%q} %d\n", *stageID, "join", m.QueueDepths.Join)
		fmt.Fprintf(rw, "actorstage_stage_queue_depth{stage=%q,queue=%q} %d\n", *stageID, "leave", m.QueueDepths.Leave)
		fmt.Fprintf(rw, "actorstage_stage_queue_depth{stage=%q,queue=%q} %d\n", *stageID, "attach", m.QueueDepths.Attach)

		fmt.Fprintf(rw, "# HELP actorstage_stage_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_stage_step_ms gauge\n")
		fmt.Fprintf(rw, "actorstage_stage_step_ms{stage=%q} %.3f\n", *stageID, m.StepMS)

		attached, broken := runtime.Scripted()
		fmt.Fprintf(rw, "# HELP actorstage_scripts_attached Scripted actors with a live Lua state.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_scripts_attached gauge\n")
		fmt.Fprintf(rw, "actorstage_scripts_attached{stage=%q} %d\n", *stageID, attached)
		fmt.Fprintf(rw, "# HELP actorstage_scripts_broken Scripted actors disabled after an error.\n")
		fmt.Fprintf(rw, "# TYPE actorstage_scripts_broken gauge\n")
		fmt.Fprintf(rw, "actorstage_scripts_broken{stage=%q} %d\n", *stageID, broken)

		writeIndexMetrics(rw, idx)
	})

	enableAdminHTTP := envBool("AS_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("AS_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				StageID string             `json:"stage_id"`
				Tick    uint64             `json:"tick"`
				Metrics scene.StageMetrics `json:"metrics"`
			}{
				StageID: *stageID,
				Tick:    st.CurrentTick(),
				Metrics: st.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/actor", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			id := strings.TrimSpace(r.URL.Query().Get("id"))
			if id == "" {
				http.Error(rw, "missing id", http.StatusBadRequest)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			state, err := st.RequestActorState(ctx2, id)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "actor_id": id, "state": state})
		})
		mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			tick, err := st.RequestSnapshot(ctx2)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
		})
		mux.HandleFunc("/admin/v1/reset", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			tick, err := st.RequestReset(ctx2)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
		})
	} else {
		logger.Printf("admin endpoints disabled (AS_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (AS_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(st, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

func latestSnapshot(stageDir string) string {
	dir := filepath.Join(stageDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
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

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func writeIndexMetrics(rw http.ResponseWriter, idx *indexdb.SQLiteIndex) {
	if idx == nil {
		return
	}
	s := idx.Stats()

	fmt.Fprintf(rw, "# HELP actorstage_index_queue_depth Current index queue depth.\n")
	fmt.Fprintf(rw, "# TYPE actorstage_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "actorstage_index_queue_depth %d\n", s.QueueDepth)

	fmt.Fprintf(rw, "# HELP actorstage_index_queue_capacity Index queue capacity.\n")
	fmt.Fprintf(rw, "# TYPE actorstage_index_queue_capacity gauge\n")
	fmt.Fprintf(rw, "actorstage_index_queue_capacity %d\n", s.QueueCapacity)

	fmt.Fprintf(rw, "# HELP actorstage_index_dropped_total Entries dropped because the index queue was full.\n")
	fmt.Fprintf(rw, "# TYPE actorstage_index_dropped_total counter\n")
	fmt.Fprintf(rw, "actorstage_index_dropped_total{kind=%q} %d\n", "tick", s.DropTickTotal)
	fmt.Fprintf(rw, "actorstage_index_dropped_total{kind=%q} %d\n", "audit", s.DropAuditTotal)
	fmt.Fprintf(rw, "actorstage_index_dropped_total{kind=%q} %d\n", "snapshot", s.DropSnapshotTotal)
}

type multiTickLogger struct {
	a scene.TickLogger
	b scene.TickLogger
}

func (m multiTickLogger) WriteTick(entry scene.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}

type multiAuditLogger struct {
	a scene.AuditLogger
	b scene.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry scene.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}
