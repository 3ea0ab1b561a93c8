package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/dialogue"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/engine"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

const replPrompt = "vibe> "

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read operator commands from stdin against one engine",
		Long: `Read operator commands line by line and run them against a single
engine, saving after each one. This is the only place a halt can be
cleared, since a halted state is never saved.

Commands:
  pass                  run one rule pass
  state [path]          print the state or one value
  log                   print the entries recorded this session
  clear-halt <operator> lower the halt flag
  help                  list commands
  quit | exit           leave

Any other line is operator dialogue:
  ` + strings.Join(dialogue.Usage(), "\n  "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl(cmd, rootOpts)
		},
	}
	return cmd
}

// session runs repl lines against an engine served by its Run loop.
type session struct {
	rt  *runtime
	f   *OutputFormatter
	out io.Writer
}

func repl(cmd *cobra.Command, opts *RootOptions) (err error) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := openRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer closeRuntime(rt, &err)

	done := make(chan error, 1)
	go func() { done <- rt.engine.Run(ctx) }()

	s := &session{rt: rt, f: newFormatter(cmd, opts), out: cmd.ErrOrStderr()}
	loopErr := s.loop(ctx, cmd.InOrStdin())

	rt.engine.Stop()
	if runErr := <-done; runErr != nil && !errors.Is(runErr, context.Canceled) {
		loopErr = errors.Join(loopErr, runErr)
	}
	return loopErr
}

func (s *session) loop(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, replPrompt)
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		quit, err := s.exec(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// exec runs one line. Only errors that end the session are returned.
func (s *session) exec(ctx context.Context, line string) (quit bool, err error) {
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "quit", "exit":
		return true, nil
	case "help":
		return false, s.f.Success(textView{Text: replHelp(), Data: dialogue.Usage()})
	case "state":
		if err := printState(s.f, s.rt.engine.State(), rest); err != nil {
			return false, s.soft(err)
		}
		return false, nil
	case "log":
		return false, s.f.Success(entriesView{Entries: s.rt.entries.Entries()})
	case "pass":
		return false, s.pass(ctx)
	case "clear-halt":
		return false, s.clearHalt(ctx, rest)
	}
	return false, s.dialogue(ctx, line)
}

func (s *session) pass(ctx context.Context) error {
	resp, err := s.rt.engine.Submit(ctx, engine.Request{Type: engine.RequestPass})
	if err != nil {
		return err
	}
	ack, err := s.rt.save(ctx)
	if err != nil {
		return err
	}
	return s.f.Success(passResultView{passView: newPassView(*resp.Pass), Save: ack})
}

func (s *session) clearHalt(ctx context.Context, operator string) error {
	if operator == "" {
		return s.f.Error("USAGE", "clear-halt needs an operator name", nil)
	}
	resp, err := s.rt.engine.Submit(ctx, engine.Request{Type: engine.RequestClearHalt, Operator: operator})
	if engine.IsNotHalted(err) {
		return s.f.Error("NOT_HALTED", "the system is not halted", nil)
	}
	if err != nil {
		return err
	}
	ack, err := s.rt.save(ctx)
	if err != nil {
		return err
	}
	return s.f.Success(textView{
		Text: formatEntries([]ir.LogEntry{*resp.Cleared}) + describeSave(ack),
		Data: map[string]any{"entry": resp.Cleared, "save": ack},
	})
}

// dialogue routes a line to its act, or records it as an unknown command.
func (s *session) dialogue(ctx context.Context, line string) error {
	c, perr := dialogue.Parse(line)
	if perr != nil {
		r, _ := s.rt.engine.Say(ctx, line)
		view := newInvokeView("", r)
		var cmdErr *dialogue.CommandError
		if errors.As(perr, &cmdErr) {
			view.Reason = cmdErr.Message
		}
		return s.f.Success(view)
	}

	resp, err := s.rt.engine.Submit(ctx, engine.Request{Type: engine.RequestInvoke, Act: c.Act, Params: c.Params})
	if err != nil {
		return err
	}
	ack, err := s.rt.save(ctx)
	if err != nil {
		return err
	}
	view := newInvokeView(c.Act, *resp.Invoke)
	view.Save = ack
	return s.f.Success(view)
}

// soft prints command errors and keeps the session going.
func (s *session) soft(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError {
		return s.f.Error("COMMAND", exitErr.Error(), nil)
	}
	return err
}

func replHelp() string {
	var b strings.Builder
	b.WriteString("pass | state [path] | log | clear-halt <operator> | help | quit\n")
	for _, u := range dialogue.Usage() {
		b.WriteString("  ")
		b.WriteString(u)
		b.WriteString("\n")
	}
	return b.String()
}
