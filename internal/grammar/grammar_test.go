package grammar

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keylex/lexer"
	"keylex/regexlib"
)

func rules(t *testing.T, src string) []Rule {
	t.Helper()
	f, err := Parse("test.lex", src)
	require.NoError(t, err)
	out, err := f.Rules()
	require.NoError(t, err)
	return out
}

func TestExpansion(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"literal", `token a = "a|b";`, "a|b"},
		{"concat", `token a = "a" + "b|c";`, "(a)(b|c)"},
		{"union", `token a = "a" | "b";`, "(a)|(b)"},
		{"fragment", `let x = "x"; token a = x + x;`, "(x)(x)"},
		{"group", `token a = ("a" | "b") + "c";`, "(((a)|(b)))(c)"},
		{"optional", `token a = "a" + "b"?;`, "(a)((b)?)"},
		{"star", `token a = "ab"*;`, "(ab)*"},
		{"escape", `token a = "\\(";`, `\(`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules(t, tt.src)
			require.Len(t, got, 1)
			assert.Equal(t, Rule{Name: "a", Pattern: tt.want}, got[0])
		})
	}
}

func TestCommentsAndOrder(t *testing.T) {
	got := rules(t, `
// leading comment
token second = "b"; // trailing
let unused = "u";
token first = "a";
`)
	assert.Equal(t, []Rule{{"second", "b"}, {"first", "a"}}, got)
}

func TestSyntaxError(t *testing.T) {
	_, err := Parse("bad.lex", `token a "a";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.lex:1:")
}

func TestUndefinedFragment(t *testing.T) {
	f, err := Parse("t.lex", "token a = b;\nlet b = \"b\";")
	require.NoError(t, err)
	_, err = f.Rules()
	assert.ErrorIs(t, err, ErrUndefined)
	assert.Contains(t, err.Error(), "t.lex:1:")
}

func TestDuplicates(t *testing.T) {
	for _, src := range []string{
		`let a = "a"; let a = "b";`,
		`token a = "a"; token a = "b";`,
	} {
		f, err := Parse("t.lex", src)
		require.NoError(t, err)
		_, err = f.Rules()
		assert.ErrorIs(t, err, ErrDuplicate, src)
	}
	// fragments and tokens live in separate namespaces
	assert.Len(t, rules(t, `let a = "a"; token a = a;`), 1)
}

func TestLoadChess(t *testing.T) {
	got, err := Load(filepath.Join("testdata", "chess.lex"))
	require.NoError(t, err)
	require.Len(t, got, 12)
	assert.Equal(t, "pawn", got[0].Name)
	assert.Equal(t, "captures", got[11].Name)

	lx := lexer.New()
	for _, r := range got {
		_, err := regexlib.Compile(r.Pattern)
		require.NoError(t, err, r.Name)
		require.NoError(t, lx.Register(r.Name, r.Pattern))
	}
	lx.Compile()

	moves := map[string]string{
		"e4":   "pawn",
		"exd5": "pawn",
		"e8":   "promotion",
		"Nf3":  "knight_move",
		"ngf3": "knight_move",
		"Pxc4": "bishop_move",
		"R1a3": "rook_move",
		"qd1":  "queen_move",
		"Txe2": "king_move",
		"O":    "castle",
		"0":    "last_move",
		";":    "current_square",
		"zt":   "clock",
	}
	for in, want := range moves {
		lx.Reset()
		var res lexer.Result
		for _, r := range in {
			res = lx.Step(r)
		}
		assert.Equal(t, lexer.Result{Status: lexer.Accept, Token: want}, res, in)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.lex"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moves.lex")
	other := filepath.Join(dir, "other.lex")
	require.NoError(t, os.WriteFile(path, []byte(`token a = "a";`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() { changes.Add(1) })
	}()

	// the watcher starts asynchronously, so keep writing until it notices
	require.Eventually(t, func() bool {
		_ = os.WriteFile(other, []byte("x"), 0o644)
		_ = os.WriteFile(path, []byte(`token a = "b";`), 0o644)
		return changes.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
