package script

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRuntimeAttachAndStep(t *testing.T) {
	s, a1, _ := newStage(t)
	r := NewRuntime(s, log.New(os.Stderr, "[test] ", 0))

	path := writeScript(t, `
		function tick(t)
			if actor.getControllingPlayer() == "" then
				actor.setControllingPlayer("director")
			end
		end
	`)
	require.NoError(t, r.Attach(a1.ID, path))

	r.Step(1)
	require.Equal(t, "director", a1.ControllingPlayer)

	// Reassertion after reset, as scripts are expected to do.
	s.ResetNow()
	require.Equal(t, "", a1.ControllingPlayer)
	r.Step(2)
	require.Equal(t, "director", a1.ControllingPlayer)
}

func TestRuntimeAttach_MissingTick(t *testing.T) {
	s, a1, _ := newStage(t)
	r := NewRuntime(s, nil)

	path := writeScript(t, `local x = 1`)
	require.Error(t, r.Attach(a1.ID, path))
}

func TestRuntimeStep_DisablesFailingScript(t *testing.T) {
	s, a1, _ := newStage(t)
	r := NewRuntime(s, log.New(os.Stderr, "[test] ", 0))

	path := writeScript(t, `
		function tick(t)
			error("boom")
		end
	`)
	require.NoError(t, r.Attach(a1.ID, path))

	r.Step(1)
	r.Step(2) // must not panic

	attached, broken := r.Scripted()
	require.Equal(t, 1, attached)
	require.Equal(t, 1, broken)
}
