package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"keylex/internal/action"
	"keylex/internal/config"
	"keylex/internal/grammar"
	"keylex/internal/logutil"
	"keylex/internal/term"
	"keylex/stream"
)

// session binds the tokens of one grammar file to a terminal and rebuilds
// the adapter whenever the file changes.
type session struct {
	mu      sync.Mutex
	cfg     *config.Config
	screen  tcell.Screen
	pane    *term.Pane
	lua     *action.Lua
	adapter *stream.Adapter
	quit    func()
	log     *slog.Logger
}

func (s *session) load() error {
	rules, err := grammar.Load(s.cfg.Grammar)
	if err != nil {
		return err
	}
	a := stream.New(append(s.cfg.StreamOptions(), stream.WithLogger(s.log))...)
	for _, r := range rules {
		act, err := s.lua.For(r.Name, s.cfg.Actions)
		if err != nil {
			return err
		}
		if err := a.Register(r.Name, r.Pattern, act); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter != nil {
		s.adapter.Unbind()
	}
	s.adapter = a

	keys := &term.Source{Screen: s.screen, OnQuit: s.quit}
	src := stream.SourceFunc(func(fn func(string)) func() {
		return keys.Listen(func(key string) {
			fn(key)
			s.pane.SetStatus("> " + a.Buffer())
		})
	})
	if err := a.Bind(src); err != nil {
		return err
	}
	s.log.Info("grammar loaded", "path", s.cfg.Grammar, "tokens", len(rules))
	s.pane.Println(fmt.Sprintf("loaded %d tokens from %s", len(rules), filepath.Base(s.cfg.Grammar)))
	return nil
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter != nil {
		s.adapter.Unbind()
	}
}

func newSession(cfg *config.Config, screen tcell.Screen, log *slog.Logger) *session {
	s := &session{
		cfg:    cfg,
		screen: screen,
		pane:   term.NewPane(screen),
		log:    log,
	}
	s.lua = action.NewLua(s.pane.Println, action.WithLogger(log))
	return s
}

// run blocks until the user quits or ctx is cancelled.
func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.quit = cancel
	defer s.lua.Close()

	if err := s.load(); err != nil {
		return err
	}
	defer s.close()
	s.pane.SetStatus("> ")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grammar.Watch(gctx, s.cfg.Grammar, func() {
			if err := s.load(); err != nil {
				s.log.Warn("reload failed", "error", err)
				s.pane.Println("reload failed: " + err.Error())
			}
		})
	})
	<-gctx.Done()
	cancel()
	return g.Wait()
}

func WatchHandler(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	} else if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Grammar = args[0]
	}
	if cfg.Grammar == "" {
		return errors.New("no grammar: pass GRAMMAR, set KEYLEX_GRAMMAR or use --config")
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	var w io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return newSession(cfg, screen, logutil.NewLogger(w, level)).run(cmd.Context())
}

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch [GRAMMAR]",
		Short: "Lex keys typed into the terminal and run token actions",
		Long: "Bind the tokens of GRAMMAR to the terminal. Each accepted token runs its " +
			"Lua action from the config file, or prints the token and its input. " +
			"The grammar is reloaded when the file changes. Escape or Ctrl-C quits.",
		Args: cobra.MaximumNArgs(1),
		RunE: WatchHandler,
	}
	watchCmd.Flags().StringP("config", "c", "", "YAML or TOML config file")
	watchCmd.Flags().String("log", "", "Append logs to this file")
	return watchCmd
}
