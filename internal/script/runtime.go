package script

import (
	"fmt"
	"log"
	"sort"

	"github.com/Shopify/go-lua"

	"actorstage.dev/internal/sim/scene"
)

// Runtime hosts the Lua scripts attached to stage actors. Each scripted
// actor owns its own Lua state with the `actor` façade registered. Step
// runs from the scene loop goroutine via the tick hook, so scripts never
// race with the simulation or each other.
type Runtime struct {
	stage  *scene.Scene
	logger *log.Logger

	instances map[string]*instance
}

type instance struct {
	actorID string
	path    string
	l       *lua.State
	broken  bool
}

func NewRuntime(stage *scene.Scene, logger *log.Logger) *Runtime {
	r := &Runtime{
		stage:     stage,
		logger:    logger,
		instances: map[string]*instance{},
	}
	stage.OnTick(r.Step)
	return r
}

// Attach loads a script file for an actor. Pre-Run only. The script runs
// once at load time (top-level statements) and must define a global
// `tick(t)` function to participate in the per-frame step.
func (r *Runtime) Attach(actorID, path string) error {
	l := lua.NewState()
	lua.OpenLibraries(l)
	Register(l, NewContext(r.stage, actorID))

	if err := lua.DoFile(l, path); err != nil {
		return fmt.Errorf("load script %s: %w", path, err)
	}

	l.Global("tick")
	isFn := l.IsFunction(-1)
	l.Pop(1)
	if !isFn {
		return fmt.Errorf("script %s: missing global tick function", path)
	}

	r.instances[actorID] = &instance{actorID: actorID, path: path, l: l}
	return nil
}

// Step invokes every script's tick function. A failing script is logged
// and disabled; it must not take the stage down.
func (r *Runtime) Step(tick uint64) {
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		inst := r.instances[id]
		if inst.broken {
			continue
		}
		inst.l.Global("tick")
		inst.l.PushNumber(float64(tick))
		if err := inst.l.ProtectedCall(1, 0, 0); err != nil {
			inst.broken = true
			if r.logger != nil {
				r.logger.Printf("script %s (actor %s) failed, disabling: %v", inst.path, inst.actorID, err)
			}
		}
	}
}

// Scripted reports how many scripts are attached and how many of them
// have been disabled by errors.
func (r *Runtime) Scripted() (attached, broken int) {
	for _, inst := range r.instances {
		attached++
		if inst.broken {
			broken++
		}
	}
	return attached, broken
}
