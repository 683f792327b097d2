package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/termchat/termchat/internal/chat"
	"github.com/termchat/termchat/internal/export"
	"github.com/termchat/termchat/internal/store"
	"github.com/termchat/termchat/internal/ui"
)

const replHelp = `Commands:
  /help, /?            Show this help
  /exit, /quit         Exit (Ctrl-D also works)
  /clear               Clear the conversation, keep the system prompt
  /cat [name]          Show the current or a saved conversation as text
  /models              List installed models
  /model [name]        Switch model (interactive picker with no name)
  /system [prompt]     Show or set the system prompt
  /recall <n>          Recall the n-th most recent exchange into the next request
  /retry               Regenerate the last response
  /save [name]         Save the conversation (timestamped name by default)
  /load <name>         Load a saved conversation
  /conversations       List saved conversations
  /set <key> <value>   Set an option: seed, temperature, top_p, num_ctx
  /info                Conversation statistics
  /stats               Toggle per-response stats display
  /config              Show effective configuration

Multiline input: start a line with """ and finish with """ on its own line.
Ctrl-C interrupts a streaming response; the partial text is kept.`

func (s *session) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "/help", "/?":
		fmt.Println(replHelp)
	case "/exit", "/quit":
		return errExit
	case "/clear":
		s.conv.Clear()
		s.recalls = nil
		s.printer.Muted("Conversation cleared.")
	case "/cat":
		return s.cmdCat(args)
	case "/models":
		return s.cmdModels(ctx)
	case "/model":
		return s.cmdModel(ctx, args)
	case "/system":
		s.cmdSystem(rest)
	case "/recall":
		return s.cmdRecall(args)
	case "/retry":
		return s.cmdRetry(ctx)
	case "/save":
		return s.cmdSave(args)
	case "/load":
		return s.cmdLoad(ctx, args)
	case "/conversations":
		return s.cmdConversations()
	case "/set":
		return s.cmdSet(ctx, args)
	case "/info":
		s.cmdInfo()
	case "/stats":
		s.cmdStats()
	case "/config":
		return s.cmdConfig()
	default:
		return fmt.Errorf("unknown command %s (try /?)", cmd)
	}
	return nil
}

func (s *session) cmdCat(args []string) error {
	doc := &store.Document{
		Model:        s.model,
		SystemPrompt: s.conv.SystemPrompt,
		Messages:     s.conv.Messages,
	}
	if len(args) > 0 {
		loaded, err := s.conversations.Read(args[0])
		if err != nil {
			return err
		}
		doc = loaded
	}
	if len(doc.Messages) == 0 {
		s.printer.Muted("No messages.")
		return nil
	}
	fmt.Println(export.Text(doc, export.Options{Header: true, Wrap: ui.TerminalWidth()}))
	return nil
}

func (s *session) cmdModels(ctx context.Context) error {
	models, err := s.client.ListModels(ctx)
	if err != nil {
		return err
	}
	fmt.Print(s.renderTable(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "NAME\tSIZE\tMODIFIED\n")
		for _, m := range models {
			marker := ""
			if m.Name == s.model {
				marker = " *"
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\n", m.Name, marker, formatSize(m.Size), m.ModifiedAt.Format("2006-01-02"))
		}
	}))
	return nil
}

// renderTable lays out a tab-separated table and styles the header row
// after alignment, so escape codes never feed into tabwriter's column
// width math.
func (s *session) renderTable(write func(w *tabwriter.Writer)) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	write(w)
	w.Flush()
	header, rows, ok := strings.Cut(buf.String(), "\n")
	if !ok {
		return buf.String()
	}
	return s.printer.Styles().TableHeader.Render(header) + "\n" + rows
}

func (s *session) cmdModel(ctx context.Context, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if err := s.selectModel(ctx, name); err != nil {
		return err
	}
	s.printer.Muted("Model: %s", s.model)
	if s.contextLimit > 0 {
		s.printer.Muted("Context: %d tokens", s.contextLimit)
	}
	return nil
}

func (s *session) cmdSystem(rest string) {
	if rest == "" {
		if s.conv.SystemPrompt == "" {
			s.printer.Muted("No system prompt set.")
		} else {
			fmt.Println(s.conv.SystemPrompt)
		}
		return
	}
	s.conv.SetSystemPrompt(rest)
	s.printer.Muted("System prompt set.")
}

func (s *session) cmdRecall(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /recall <n> (1 = most recent exchange)")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("usage: /recall <n> (1 = most recent exchange)")
	}
	pair, err := s.conv.Pair(n)
	if err != nil {
		if errors.Is(err, chat.ErrOutOfRange) {
			return fmt.Errorf("%w: conversation has %d exchanges", err, s.conv.Pairs())
		}
		return err
	}
	s.recalls = append(s.recalls, pair)
	s.printer.Muted("Recalled: %s", ui.Truncate(pair.User.Content, 60))
	return nil
}

func (s *session) cmdRetry(ctx context.Context) error {
	if err := s.conv.Retry(); err != nil {
		return err
	}
	return s.generate(ctx)
}

func (s *session) cmdSave(args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	path, err := s.conversations.Save(s.conv, name, s.model)
	if err != nil {
		return err
	}
	s.printer.Success("Saved to %s", path)
	return nil
}

func (s *session) cmdLoad(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /load <name> (see /conversations)")
	}
	conv, model, err := s.conversations.Load(args[0])
	if err != nil {
		return err
	}
	s.conv = conv
	s.recalls = nil
	s.autoName = args[0] // auto-save keeps updating the loaded conversation
	if model != "" && model != s.model {
		if err := s.selectModel(ctx, model); err != nil {
			s.printer.Warn("Saved with model %s which is not installed; staying on %s", model, s.model)
		}
	}
	s.printer.Muted("Loaded %s (%d messages, model %s)", args[0], len(conv.Messages), s.model)
	return nil
}

func (s *session) cmdConversations() error {
	entries, err := s.conversations.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.printer.Muted("No saved conversations in %s", s.conversations.Dir())
		return nil
	}
	fmt.Print(s.renderTable(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "NAME\tMODIFIED\n")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Name, e.ModTime.Format("2006-01-02 15:04"))
		}
	}))
	return nil
}

func (s *session) cmdSet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s.showOptions()
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: /set <key> <value> (value `default` unsets)")
	}
	key, value := args[0], args[1]
	unset := value == "default"

	switch key {
	case "seed":
		if unset {
			s.opts.Seed = nil
			break
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("seed must be an integer")
		}
		s.opts.Seed = &n
	case "temperature":
		if unset {
			s.opts.Temperature = nil
			break
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number")
		}
		s.opts.Temperature = &f
	case "top_p":
		if unset {
			s.opts.TopP = nil
			break
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("top_p must be a number")
		}
		s.opts.TopP = &f
	case "num_ctx":
		if unset {
			s.opts.NumCtx = nil
		} else {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("num_ctx must be an integer")
			}
			s.opts.NumCtx = &n
		}
		s.contextLimit = s.resolveContextLimit(ctx)
	default:
		return fmt.Errorf("unknown option %s (seed, temperature, top_p, num_ctx)", key)
	}
	s.showOptions()
	return nil
}

func (s *session) showOptions() {
	s.printer.Info("seed:        %s", optInt(s.opts.Seed))
	s.printer.Info("temperature: %s", optFloat(s.opts.Temperature))
	s.printer.Info("top_p:       %s", optFloat(s.opts.TopP))
	s.printer.Info("num_ctx:     %s", optInt(s.opts.NumCtx))
}

func (s *session) cmdInfo() {
	info := s.conv.Info()
	s.printer.Info("Model:             %s", s.model)
	if s.contextLimit > 0 {
		s.printer.Info("Context limit:     %d tokens", s.contextLimit)
	}
	s.printer.Info("Messages:          %d (%d user, %d assistant)", info.Messages, info.UserMessages, info.AssistantMessages)
	s.printer.Info("Words:             %d", info.Words)
	s.printer.Info("Characters:        %d", info.Characters)
	s.printer.Info("Estimated tokens:  ~%d", info.EstimatedTokens)
	if s.conv.SystemPrompt != "" {
		s.printer.Info("System prompt:     %s", ui.Truncate(s.conv.SystemPrompt, 60))
	}
}

func (s *session) cmdStats() {
	s.showStats = !s.showStats
	if !s.showStats {
		s.printer.Muted("Stats display: off")
		return
	}
	s.printer.Muted("Stats display: on")
	if s.conv.LastStats != nil {
		fmt.Println(ui.FormatTurnStats(*s.conv.LastStats))
	}
}

func (s *session) cmdConfig() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	s.printer.Info("Config file:       %s", path)
	s.printer.Info("Ollama URL:        %s", s.cfg.OllamaURL)
	s.printer.Info("Default model:     %s", orNone(s.cfg.DefaultModel))
	s.printer.Info("Conversations dir: %s", s.cfg.ConversationsDir)
	s.printer.Info("Auto-save:         %t", s.cfg.AutoSave)
	s.printer.Info("System prompt:     %s", orNone(ui.Truncate(s.cfg.SystemPrompt, 60)))
	return nil
}

func optInt(p *int) string {
	if p == nil {
		return "default"
	}
	return strconv.Itoa(*p)
}

func optFloat(p *float64) string {
	if p == nil {
		return "default"
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func formatSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
