// Package shell implements the interactive note shell: a line-oriented
// front end over the note service that renders the view state with the
// current palette.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/theme"
	"github.com/atinyakov/NoteKeeper/internal/view"
)

const (
	prompt    = "notes> "
	cancelTag = ":q"
)

// LineReader reads one line at a time. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// NoteService defines the note operations the shell drives.
type NoteService interface {
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Remove(ctx context.Context, id string) error
	Get(id string) (models.Note, bool)
	SelectForEdit(note models.Note)
	SelectForPreview(note models.Note)
	OpenEditor()
	CloseEditor()
	ClosePreview()
	WaitIdle(ctx context.Context) error
}

// ViewModel holds the search query and derives what is shown.
type ViewModel interface {
	SetQuery(q string)
	State() view.State
}

// ThemeSelector lists and switches palettes.
type ThemeSelector interface {
	List() []theme.Palette
	Current() theme.Palette
	Select(id int) (theme.Palette, error)
}

// NotificationSource hands out pending notifications once.
type NotificationSource interface {
	Drain() []models.Notification
}

// Shell is the interactive front end.
type Shell struct {
	rl            LineReader
	out           io.Writer
	notes         NoteService
	view          ViewModel
	themes        ThemeSelector
	notifications NotificationSource
	log           *zap.Logger

	// NewID generates ids for new notes.
	NewID func() string
	// Clipboard receives the text of copied notes.
	Clipboard func(text string) error
}

// New creates a Shell writing to out.
func New(rl LineReader, out io.Writer, notes NoteService, vm ViewModel, themes ThemeSelector, src NotificationSource, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		rl:            rl,
		out:           out,
		notes:         notes,
		view:          vm,
		themes:        themes,
		notifications: src,
		log:           log,
		NewID:         uuid.NewString,
		Clipboard:     clipboard.WriteAll,
	}
}

// NewReadline opens a readline instance with the shell prompt. An empty
// history file disables history.
func NewReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// Run reads and executes commands until exit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.println(RenderState(s.view.State()))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.rl.SetPrompt(prompt)
		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.println("Use 'exit' to leave the shell.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := s.Execute(ctx, line)
		if err != nil {
			s.println("Error:", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one command line. quit is true for exit.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "help":
		s.println("Available commands: help, list, search <text>, clear, add, edit <id>, view <id>, copy <id>, delete <id>, themes, theme <id>, exit")
	case "list":
		s.println(RenderState(s.view.State()))
	case "search":
		s.view.SetQuery(strings.Join(args[1:], " "))
		s.println(RenderState(s.view.State()))
	case "clear":
		s.view.SetQuery("")
		s.println(RenderState(s.view.State()))
	case "add":
		return false, s.add(ctx)
	case "edit":
		if len(args) < 2 {
			s.println("Usage: edit <id>")
			return false, nil
		}
		return false, s.edit(ctx, args[1])
	case "view":
		if len(args) < 2 {
			s.println("Usage: view <id>")
			return false, nil
		}
		s.preview(args[1])
	case "copy":
		if len(args) < 2 {
			s.println("Usage: copy <id>")
			return false, nil
		}
		return false, s.copy(args[1])
	case "delete":
		if len(args) < 2 {
			s.println("Usage: delete <id>")
			return false, nil
		}
		if err := s.notes.Remove(ctx, args[1]); err != nil {
			return false, err
		}
		return false, s.await(ctx)
	case "themes":
		s.println(RenderPalettes(s.themes.List(), s.themes.Current()))
	case "theme":
		if len(args) < 2 {
			s.println("Usage: theme <id>")
			return false, nil
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("palette id %q: %w", args[1], err)
		}
		p, err := s.themes.Select(id)
		if err != nil {
			return false, err
		}
		s.println("Theme set to", p.Name)
	case "exit", "quit":
		s.println("Bye")
		return true, nil
	default:
		s.println("Unknown command. Type 'help' for a list of commands.")
	}
	return false, nil
}

func (s *Shell) add(ctx context.Context) error {
	s.notes.OpenEditor()
	defer s.notes.CloseEditor()

	s.println("New note (" + cancelTag + " to cancel)")
	title, ok, err := s.ask("title> ")
	if err != nil || !ok {
		return s.cancelCreate(ctx, err)
	}
	desc, ok, err := s.ask("desc> ")
	if err != nil || !ok {
		return s.cancelCreate(ctx, err)
	}

	note := &models.Note{ID: s.NewID(), Title: title, Desc: desc}
	if err := s.notes.Create(ctx, note); err != nil {
		return err
	}
	return s.await(ctx)
}

func (s *Shell) cancelCreate(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	s.println("Cancelled")
	return s.notes.Create(ctx, nil)
}

func (s *Shell) edit(ctx context.Context, id string) error {
	note, found := s.notes.Get(id)
	if !found {
		s.println("Note not found")
		return nil
	}
	s.notes.SelectForEdit(note)
	defer s.notes.CloseEditor()

	s.println("Editing " + id + " (empty keeps the value, " + cancelTag + " to cancel)")
	title, ok, err := s.ask(fmt.Sprintf("title [%s]> ", note.Title))
	if err != nil || !ok {
		return s.cancelUpdate(ctx, err)
	}
	desc, ok, err := s.ask(fmt.Sprintf("desc [%s]> ", note.Desc))
	if err != nil || !ok {
		return s.cancelUpdate(ctx, err)
	}

	if title != "" {
		note.Title = title
	}
	if desc != "" {
		note.Desc = desc
	}
	if err := s.notes.Update(ctx, &note); err != nil {
		return err
	}
	return s.await(ctx)
}

func (s *Shell) cancelUpdate(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	s.println("Cancelled")
	return s.notes.Update(ctx, nil)
}

func (s *Shell) preview(id string) {
	note, found := s.notes.Get(id)
	if !found {
		s.println("Note not found")
		return
	}
	s.notes.SelectForPreview(note)
	defer s.notes.ClosePreview()

	st := s.view.State()
	if p := st.Intents.Previewing; p != nil {
		s.println(RenderNote(*p, st.Theme))
	}
}

func (s *Shell) copy(id string) error {
	note, found := s.notes.Get(id)
	if !found {
		s.println("Note not found")
		return nil
	}
	if err := s.Clipboard(note.Title + "\n\n" + note.Desc); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	s.println("Copied to clipboard")
	return nil
}

// ask prompts for one line. ok is false when the user cancelled.
func (s *Shell) ask(p string) (string, bool, error) {
	s.rl.SetPrompt(p)
	line, err := s.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	line = strings.TrimSpace(line)
	if line == cancelTag {
		return "", false, nil
	}
	return line, true, nil
}

// await shows the loading state until pending changes land, then prints
// the notifications and the refreshed list.
func (s *Shell) await(ctx context.Context) error {
	s.println(RenderLoading(s.themes.Current()))
	if err := s.notes.WaitIdle(ctx); err != nil {
		return err
	}
	for _, n := range s.notifications.Drain() {
		s.log.Debug("notification shown", zap.String("kind", string(n.Kind)))
		s.println(RenderNotification(n))
	}
	s.println(RenderState(s.view.State()))
	return nil
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}
