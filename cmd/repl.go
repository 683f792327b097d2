package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/termchat/termchat/internal/chat"
	"github.com/termchat/termchat/internal/config"
	"github.com/termchat/termchat/internal/input"
	"github.com/termchat/termchat/internal/ollama"
	"github.com/termchat/termchat/internal/store"
	"github.com/termchat/termchat/internal/ui"
	"github.com/termchat/termchat/internal/usage"
)

// errExit signals a clean /exit out of the REPL loop.
var errExit = errors.New("exit")

var slashCommands = []string{
	"/?", "/help", "/exit", "/quit", "/clear", "/cat", "/models",
	"/model", "/system", "/recall", "/retry", "/save", "/load",
	"/conversations", "/set", "/info", "/stats", "/config",
}

// session holds everything a running chat needs.
type session struct {
	cfg           *config.Config
	client        *ollama.Client
	conv          *chat.Conversation
	conversations *store.Store
	usageLog      *usage.Store // nil when the usage db could not open
	printer       *ui.Printer
	reader        *input.Reader

	model        string
	contextLimit int // 0 = unknown, budget warnings disabled
	opts         ollama.Options
	recalls      []chat.Pair // pending request-scoped recalled pairs
	showStats    bool
	autoName     string // stable name for auto-saved snapshots
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagURL != "" {
		cfg.OllamaURL = flagURL
	}
	if flagSystem != "" {
		cfg.SystemPrompt = flagSystem
	}

	ctx := cmd.Context()
	client := ollama.NewClient(cfg.OllamaURL)
	if !client.Available(ctx) {
		return fmt.Errorf("cannot reach Ollama at %s (is `ollama serve` running?)", cfg.OllamaURL)
	}

	s := &session{
		cfg:           cfg,
		client:        client,
		conv:          chat.New(cfg.SystemPrompt),
		conversations: store.New(cfg.ConversationsDir),
		printer:       ui.NewPrinter(),
		opts:          optionsFromConfig(cfg),
		showStats:     showStats,
	}

	model := flagModel
	if model == "" {
		model = cfg.DefaultModel
	}
	if err := s.selectModel(ctx, model); err != nil {
		return err
	}

	if path, err := config.UsageDBPath(); err == nil {
		if log, err := usage.Open(path); err == nil {
			s.usageLog = log
			defer log.Close()
		}
	}

	historyPath, _ := config.HistoryPath()
	s.reader = input.New(historyPath, slashCommands, s.conversations.Names)
	defer s.reader.Close()

	s.welcome()
	s.loop(ctx)

	if s.autoName != "" {
		s.printer.Muted("Conversation auto-saved as %s", s.autoName)
	}
	return nil
}

// autoSave snapshots the conversation after each completed turn under a
// name fixed at the first save, so one session updates one file.
func (s *session) autoSave() {
	if !s.cfg.AutoSave || len(s.conv.Messages) == 0 {
		return
	}
	if s.autoName == "" {
		s.autoName = time.Now().Format("20060102_150405")
	}
	if _, err := s.conversations.Save(s.conv, s.autoName, s.model); err != nil {
		s.printer.Warn("auto-save failed: %v", err)
	}
}

func (s *session) loop(ctx context.Context) {
	for {
		line, err := s.reader.Read("> ")
		if err != nil {
			if errors.Is(err, input.ErrInterrupted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			s.printer.Error("read input: %v", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if err := s.dispatch(ctx, line); err != nil {
				if errors.Is(err, errExit) {
					return
				}
				s.printer.Error("%v", err)
			}
			continue
		}

		s.turn(ctx, line)
	}
}

// selectModel resolves and switches the active model. An empty name falls
// back to the only installed model, or an interactive picker when there
// is more than one.
func (s *session) selectModel(ctx context.Context, name string) error {
	models, err := s.client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("no models installed (try `ollama pull llama3.2`)")
	}

	if name == "" {
		if len(models) == 1 {
			name = models[0].Name
		} else {
			name, err = ui.SelectModel(models, s.model)
			if err != nil {
				return err
			}
		}
	}

	if !modelInstalled(models, name) {
		return fmt.Errorf("%w: %s", ollama.ErrModelNotFound, name)
	}

	s.model = name
	s.contextLimit = s.resolveContextLimit(ctx)
	return nil
}

// resolveContextLimit prefers an explicit num_ctx option over the model's
// advertised context length. Unknown stays 0 and disables budget warnings.
func (s *session) resolveContextLimit(ctx context.Context) int {
	if s.opts.NumCtx != nil {
		return *s.opts.NumCtx
	}
	limit, err := s.client.ContextLength(ctx, s.model)
	if err != nil {
		return 0
	}
	return limit
}

func modelInstalled(models []ollama.Model, name string) bool {
	for _, m := range models {
		if m.Name == name || strings.TrimSuffix(m.Name, ":latest") == name {
			return true
		}
	}
	return false
}

func optionsFromConfig(cfg *config.Config) ollama.Options {
	return ollama.Options{
		Seed:        cfg.Options.Seed,
		Temperature: cfg.Options.Temperature,
		TopP:        cfg.Options.TopP,
		NumCtx:      cfg.Options.NumCtx,
	}
}

func (s *session) requestOptions() *ollama.Options {
	if s.opts.IsZero() {
		return nil
	}
	opts := s.opts
	return &opts
}

func (s *session) welcome() {
	styles := s.printer.Styles()
	fmt.Println(styles.Title.Render("termchat") + " " + styles.Muted.Render(Version))
	s.printer.Muted("Model: %s", s.model)
	if s.contextLimit > 0 {
		s.printer.Muted("Context: %d tokens", s.contextLimit)
	}
	s.printer.Muted(`Type /? for help, """ for multiline input, Ctrl-D to exit.`)
	fmt.Println()
}
