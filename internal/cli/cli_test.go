package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"keylex/internal/config"
	"keylex/internal/logutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// hasRow reports whether some line of out consists of exactly fields.
func hasRow(out string, fields ...string) bool {
	for _, line := range strings.Split(out, "\n") {
		if slices.Equal(strings.Fields(line), fields) {
			return true
		}
	}
	return false
}

func TestCompileJSON(t *testing.T) {
	out, err := run(t, "compile", "(a|b)*abb")
	require.NoError(t, err)

	var v dfaView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "0", v.Initial)
	assert.Equal(t, 5, v.States)
	assert.Equal(t, []string{"4"}, v.Accept)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, v.Transitions["0"])
}

func TestCompileMinimizedYAML(t *testing.T) {
	out, err := run(t, "compile", "-m", "-f", "yaml", "(a|b)*abb")
	require.NoError(t, err)

	var v dfaView
	require.NoError(t, yaml.Unmarshal([]byte(out), &v))
	assert.Equal(t, 4, v.States)
	assert.Len(t, v.Accept, 1)
}

func TestCompileNFA(t *testing.T) {
	out, err := run(t, "compile", "--nfa", "a")
	require.NoError(t, err)

	var v nfaView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, 0, v.Start)
	assert.Equal(t, 1, v.Accept)
	assert.Equal(t, 2, v.States)
	assert.Equal(t, []int{1}, v.Transitions[0]["a"])
	assert.Empty(t, v.Epsilon)
}

func TestCompileDOTToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.dot")
	out, err := run(t, "compile", "-f", "dot", "-o", path, "ab")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph"))
}

func TestCompileErrors(t *testing.T) {
	_, err := run(t, "compile", "a|")
	assert.ErrorContains(t, err, `compiling "a|"`)

	_, err = run(t, "compile", "-f", "xml", "a")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "compile", "--png", "a")
	assert.ErrorContains(t, err, "--png needs --output")

	_, err = run(t, "compile")
	assert.Error(t, err)
}

func TestTestListsTokens(t *testing.T) {
	out, err := run(t, "test", "testdata/chess.lex")
	require.NoError(t, err)
	assert.True(t, hasRow(out, "SEQ", "NAME", "PATTERN", "STATES", "MINIMAL"))
	assert.Contains(t, out, "king_move")
	assert.Contains(t, out, "captures")
	assert.Contains(t, out, "no conflicts")
}

func TestTestRunsInputs(t *testing.T) {
	out, err := run(t, "test", "testdata/chess.lex", "te4", "Nbxd7", "exd5", "e8", "O", "zs", "zz", "t")
	require.NoError(t, err)

	assert.True(t, hasRow(out, "INPUT", "STATUS", "TOKEN"))
	assert.True(t, hasRow(out, "te4", "ACCEPT", "king_move"))
	assert.True(t, hasRow(out, "Nbxd7", "ACCEPT", "knight_move"))
	assert.True(t, hasRow(out, "exd5", "ACCEPT", "pawn"))
	assert.True(t, hasRow(out, "e8", "ACCEPT", "promotion"))
	assert.True(t, hasRow(out, "O", "ACCEPT", "castle"))
	assert.True(t, hasRow(out, "zs", "ACCEPT", "captures"))
	assert.True(t, hasRow(out, "zz", "DEAD"))
	assert.True(t, hasRow(out, "t", "DEAD"))
}

func TestTestReportsConflicts(t *testing.T) {
	out, err := run(t, "test", "testdata/overlap.lex")
	require.NoError(t, err)
	assert.Contains(t, out, "1 conflicts")
	assert.True(t, hasRow(out, "short", "either", `"a"`))
}

func TestTestMissingGrammar(t *testing.T) {
	_, err := run(t, "test", "testdata/missing.lex")
	assert.Error(t, err)
}

// ------------------------------------------------------------------- watch

func newTestSession(t *testing.T, actions map[string]string) (*session, tcell.SimulationScreen, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chess.lex")
	data, err := os.ReadFile("testdata/chess.lex")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 10)
	t.Cleanup(screen.Fini)

	cfg := config.Default()
	cfg.Grammar = path
	cfg.Actions = actions
	return newSession(cfg, screen, logutil.Discard()), screen, path
}

func press(screen tcell.Screen, keys string) {
	for _, r := range keys {
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func waitLine(t *testing.T, s *session, line string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return slices.Contains(s.pane.Lines(), line)
	}, 5*time.Second, 5*time.Millisecond, "waiting for %q in %q", line, s.pane.Lines())
}

func TestSession(t *testing.T) {
	s, screen, path := newTestSession(t, map[string]string{
		"castle": `emit("castle ", buffer)`,
	})
	errc := make(chan error, 1)
	go func() { errc <- s.run(context.Background()) }()

	waitLine(t, s, "loaded 12 tokens from chess.lex")
	press(screen, "te4")
	waitLine(t, s, "king_move: te4")
	press(screen, "O")
	waitLine(t, s, "castle O")

	// replace the file the way editors do
	tmp := filepath.Join(filepath.Dir(path), "chess.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`token hello = "hi";`), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	waitLine(t, s, "loaded 1 tokens from chess.lex")
	press(screen, "hi")
	waitLine(t, s, "hello: hi")

	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not quit on Escape")
	}
}

func TestSessionCancel(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.run(ctx) }()

	waitLine(t, s, "loaded 12 tokens from chess.lex")
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop on cancel")
	}
}

func TestSessionBadGrammar(t *testing.T) {
	s, _, path := newTestSession(t, nil)
	require.NoError(t, os.WriteFile(path, []byte("token = ;"), 0o644))
	assert.Error(t, s.run(context.Background()))
}

func TestSessionBadAction(t *testing.T) {
	s, _, _ := newTestSession(t, map[string]string{"castle": "emit("})
	assert.ErrorContains(t, s.run(context.Background()), "action castle")
}

func TestWatchNeedsGrammar(t *testing.T) {
	t.Setenv("KEYLEX_GRAMMAR", "")
	_, err := run(t, "watch")
	assert.ErrorContains(t, err, "no grammar")
}
