package scene

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"actorstage.dev/internal/persistence/snapshot"
	"actorstage.dev/internal/protocol"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type AttachRequest struct {
	ResumeToken string
	Out         chan []byte
	Resp        chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type CmdEnvelope struct {
	ActorID string
	Cmd     protocol.CmdMsg
}

type RecordedJoin struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
}

// Scene is a single-threaded authoritative stage simulation.
// All state must be accessed only from the scene loop goroutine, with one
// exception: setup methods documented as pre-Run may be called before the
// loop starts.
type Scene struct {
	cfg StageConfig

	tick atomic.Uint64

	actors  map[string]*Actor
	clients map[string]*clientState

	inbox  chan CmdEnvelope
	join   chan JoinRequest
	attach chan AttachRequest
	leave  chan string
	stop   chan struct{}

	stateReq chan actorStateReq
	snapReq  chan snapReq
	resetReq chan resetReq

	nextActorNum atomic.Uint64
	resetTotal   uint64

	stepNanos   atomic.Int64
	actorCount  atomic.Int64
	clientCount atomic.Int64

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be
	// off-thread.
	snapshotSink chan<- snapshot.StageSnapshotV1

	// Tick hooks run inside the loop goroutine after command application
	// and before physics. The script runtime registers here.
	tickHooks []func(tick uint64)
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick   uint64         `json:"tick"`
	Joins  []RecordedJoin `json:"joins,omitempty"`
	Leaves []string       `json:"leaves,omitempty"`
	Cmds   []RecordedCmd  `json:"cmds,omitempty"`
	Actors int            `json:"actors"`
}

type RecordedCmd struct {
	ActorID string          `json:"actor_id"`
	Cmd     protocol.CmdMsg `json:"cmd"`
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  string `json:"actor"`
	Action string `json:"action"` // e.g. "SET_CONTROLLING_PLAYER"
	Target string `json:"target,omitempty"`
	Player string `json:"player,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type clientState struct {
	Out chan []byte
}

func New(cfg StageConfig) (*Scene, error) {
	cfg.applyDefaults()
	if cfg.TickRateHz > 1000 {
		return nil, fmt.Errorf("tick rate out of range: %d", cfg.TickRateHz)
	}
	s := &Scene{
		cfg:      cfg,
		actors:   map[string]*Actor{},
		clients:  map[string]*clientState{},
		inbox:    make(chan CmdEnvelope, 1024),
		join:     make(chan JoinRequest, 64),
		attach:   make(chan AttachRequest, 64),
		leave:    make(chan string, 64),
		stop:     make(chan struct{}),
		stateReq: make(chan actorStateReq, 16),
		snapReq:  make(chan snapReq, 4),
		resetReq: make(chan resetReq, 4),
	}
	return s, nil
}

func (s *Scene) SetTickLogger(l TickLogger)   { s.tickLogger = l }
func (s *Scene) SetAuditLogger(l AuditLogger) { s.auditLogger = l }
func (s *Scene) SetSnapshotSink(ch chan<- snapshot.StageSnapshotV1) {
	s.snapshotSink = ch
}

// OnTick registers a hook invoked once per tick from the loop goroutine.
// Pre-Run only.
func (s *Scene) OnTick(hook func(tick uint64)) {
	s.tickHooks = append(s.tickHooks, hook)
}

func (s *Scene) Inbox() chan<- CmdEnvelope    { return s.inbox }
func (s *Scene) Join() chan<- JoinRequest     { return s.join }
func (s *Scene) Attach() chan<- AttachRequest { return s.attach }
func (s *Scene) Leave() chan<- string         { return s.leave }

func (s *Scene) CurrentTick() uint64 { return s.tick.Load() }

func (s *Scene) Config() StageConfig { return s.cfg }

func (s *Scene) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCmds []CmdEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingResets []resetReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			pendingJoins = append(pendingJoins, req)
		case req := <-s.attach:
			s.handleAttach(req)
		case id := <-s.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-s.inbox:
			pendingCmds = append(pendingCmds, env)
		case req := <-s.stateReq:
			s.handleActorStateReq(req)
		case req := <-s.snapReq:
			s.handleSnapReq(req)
		case req := <-s.resetReq:
			pendingResets = append(pendingResets, req)
		case <-ticker.C:
			s.step(pendingJoins, pendingLeaves, pendingCmds)
			if len(pendingResets) > 0 {
				s.handleResetRequests(pendingResets)
				pendingResets = pendingResets[:0]
			}
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingCmds = pendingCmds[:0]
		}
	}
}

func (s *Scene) Stop() { close(s.stop) }

// SpawnActor creates an actor outside the join flow. Pre-Run only (the
// join flow owns spawning once the loop runs). Used for the scripted
// cast.
func (s *Scene) SpawnActor(name string, pos Vec3, controllable, scripted bool) *Actor {
	idNum := s.nextActorNum.Add(1)
	a := &Actor{
		ID:                 fmt.Sprintf("A%d", idNum),
		Name:               name,
		Pos:                pos,
		SpawnPos:           pos,
		PlayerControllable: controllable,
		Scripted:           scripted,
	}
	s.actors[a.ID] = a
	return a
}

// ActorByRef resolves an optional actor reference. An empty ref means the
// current actor. Loop goroutine (or pre-Run) only.
func (s *Scene) ActorByRef(currentID, ref string) (*Actor, error) {
	id := ref
	if id == "" {
		id = currentID
	}
	a := s.actors[id]
	if a == nil {
		return nil, fmt.Errorf("actor not found: %s", id)
	}
	return a, nil
}

func (s *Scene) joinActor(name string, out chan []byte) JoinResponse {
	if name == "" {
		name = "actor"
	}

	idNum := s.nextActorNum.Add(1)
	actorID := fmt.Sprintf("A%d", idNum)

	// Spawn in a loose spiral around the origin so fresh joins don't
	// stack.
	spawn := Vec3{X: float64(idNum) * 2, Y: s.cfg.GroundY, Z: -float64(idNum) * 2}

	a := &Actor{
		ID:                 actorID,
		Name:               name,
		Pos:                spawn,
		SpawnPos:           spawn,
		Grounded:           true,
		PlayerControllable: true,
	}
	s.actors[actorID] = a
	if out != nil {
		s.clients[actorID] = &clientState{Out: out}
	}

	a.ResumeToken = fmt.Sprintf("resume_%s_%s", s.cfg.ID, uuid.NewString())

	return JoinResponse{Welcome: s.welcomeFor(a)}
}

func (s *Scene) welcomeFor(a *Actor) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ActorID:         a.ID,
		ResumeToken:     a.ResumeToken,
		StageParams: protocol.StageParams{
			TickRateHz:       s.cfg.TickRateHz,
			Seed:             s.cfg.Seed,
			MoveSpeed:        s.cfg.MoveSpeed,
			SprintMultiplier: s.cfg.SprintMultiplier,
			JumpSpeed:        s.cfg.JumpSpeed,
			Gravity:          s.cfg.Gravity,
		},
	}
}

func (s *Scene) handleJoin(req JoinRequest) JoinResponse {
	resp := s.joinActor(req.Name, req.Out)
	if req.Resp != nil {
		req.Resp <- resp
	}
	return resp
}

func (s *Scene) handleAttach(req AttachRequest) {
	if req.ResumeToken == "" || req.Out == nil {
		if req.Resp != nil {
			req.Resp <- JoinResponse{}
		}
		return
	}

	var a *Actor
	for _, id := range s.sortedActorIDs() {
		aa := s.actors[id]
		if aa != nil && aa.ResumeToken == req.ResumeToken {
			a = aa
			break
		}
	}
	if a == nil {
		if req.Resp != nil {
			req.Resp <- JoinResponse{}
		}
		return
	}

	// Attach client and rotate the token on successful resume.
	s.clients[a.ID] = &clientState{Out: req.Out}
	a.ResumeToken = fmt.Sprintf("resume_%s_%s", s.cfg.ID, uuid.NewString())

	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: s.welcomeFor(a)}
	}
}

func (s *Scene) handleLeave(actorID string) {
	delete(s.clients, actorID)
	a := s.actors[actorID]
	if a == nil || a.Scripted {
		return
	}
	// Disconnected player actors stop moving but stay on stage so a
	// resume can pick them back up.
	a.InputThrottle = Vec3{}
	a.Sprinting = false
}
