package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/cardsmith/internal/engine"
	"github.com/arcanaland/cardsmith/internal/interact"
	"github.com/arcanaland/cardsmith/internal/render"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run editor commands read from stdin",
	Long: `Shell reads one editor command per line, the way they would arrive in a chat
channel. The command prefix from the config is optional, so ".kgf stats party"
and "stats party" are the same. Commands that need confirmation wait for the
next line. Type "help" for the syntax or "quit" to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		attachments, _ := cmd.Flags().GetString("attachments")
		watch, _ := cmd.Flags().GetBool("watch")
		out := cmd.OutOrStdout()

		sess := newShellSession(caller, cfg.CmdPrefix+cfg.Command, out)
		inbox := interact.NewInbox(sess.say, cfg.InteractionTimeout.Duration, logger.Named("interact"))
		sess.inbox = inbox
		sess.attachments = attachments

		e, s, err := openEngine(inbox)
		if err != nil {
			return err
		}
		sess.engine = e

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if watch {
			w, err := s.NewWatcher(func(err error) {
				if err == nil {
					reportInvalidCards(s)
					fmt.Fprintln(cmd.ErrOrStderr(), "Deck document changed on disk, decks reloaded.")
				}
			})
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
		}

		logger.Debug("Shell started", zap.String("caller", caller), zap.String("decks", cfg.DeckFile))
		return sess.run(ctx, cmd.InOrStdin())
	},
}

// shellSession feeds lines to the engine one at a time. While a command is
// running, the next line answers its question if it asked one.
type shellSession struct {
	caller      string
	prefix      string
	attachments string

	out    io.Writer
	render *render.Renderer
	engine *engine.Engine
	inbox  *interact.Inbox

	lines chan string
	asked chan struct{}
	done  chan struct{}
}

func newShellSession(caller, prefix string, out io.Writer) *shellSession {
	return &shellSession{
		caller: caller,
		prefix: prefix,
		out:    out,
		render: render.New(out),
		lines:  make(chan string),
		asked:  make(chan struct{}, 1),
		done:   make(chan struct{}, 1),
	}
}

// say prints a question and tells the reader a command is waiting for input.
func (s *shellSession) say(_, text string) {
	fmt.Fprintln(s.out, text)
	select {
	case s.asked <- struct{}{}:
	default:
	}
}

func (s *shellSession) run(ctx context.Context, in io.Reader) error {
	go s.read(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-s.lines:
			if !ok {
				return nil
			}
			quit := s.handle(ctx, line)
			s.finish()
			if quit {
				return nil
			}
		}
	}
}

// finish drops the question signal of a command whose question timed out
// unanswered and lets the reader pass on the next line.
func (s *shellSession) finish() {
	select {
	case <-s.asked:
	default:
	}
	s.done <- struct{}{}
}

// read waits for the running command before passing on the next line, so an
// answer typed ahead is never dispatched as a command.
func (s *shellSession) read(ctx context.Context, in io.Reader) {
	defer close(s.lines)

	scanner := bufio.NewScanner(in)
	busy := false
	for scanner.Scan() {
		line := scanner.Text()

		if busy {
			select {
			case <-s.asked:
				if s.inbox.Deliver(s.caller, line) {
					continue
				}
				// The question already timed out
				select {
				case <-s.done:
				case <-ctx.Done():
					return
				}
			case <-s.done:
			case <-ctx.Done():
				return
			}
		}

		select {
		case s.lines <- line:
			busy = true
		case <-ctx.Done():
			return
		}
	}
}

// handle runs one line and reports whether the session should end.
func (s *shellSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if s.prefix != "" && strings.HasPrefix(line, s.prefix) {
		line = strings.TrimSpace(strings.TrimPrefix(line, s.prefix))
	}

	switch line {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, s.engine.Usage(""))
		return false
	}

	start := time.Now()
	reply := s.engine.Dispatch(ctx, s.caller, strings.Fields(line))
	s.render.Reply(reply)
	if reply.File != nil {
		if err := writeFile(s.out, *reply.File, s.attachments); err != nil {
			logger.Error("Failed to save attachment", zap.String("file", reply.File.Name), zap.Error(err))
			fmt.Fprintln(s.out, err)
		}
	}
	logger.Debug("Line handled", zap.String("command", reply.Command), zap.Duration("took", time.Since(start)))
	return false
}

// stdinPrompter asks questions on out and takes answers from lines of in.
// A single goroutine reads in, started by the first question and ending at
// end of input. Lines that arrive while no question is open are dropped.
type stdinPrompter struct {
	*interact.Inbox

	in   io.Reader
	out  io.Writer
	log  *zap.Logger
	once sync.Once

	mu     sync.Mutex
	caller string
}

func newStdinPrompter(in io.Reader, out io.Writer, timeout time.Duration, log *zap.Logger) *stdinPrompter {
	p := &stdinPrompter{in: in, out: out, log: log}
	p.Inbox = interact.NewInbox(p.say, timeout, log)
	return p
}

func (p *stdinPrompter) say(caller, text string) {
	p.mu.Lock()
	p.caller = caller
	p.mu.Unlock()

	fmt.Fprintln(p.out, text)
	p.once.Do(func() { go p.read() })
}

func (p *stdinPrompter) read() {
	scanner := bufio.NewScanner(p.in)
	for scanner.Scan() {
		p.mu.Lock()
		caller := p.caller
		p.mu.Unlock()

		if !p.Deliver(caller, scanner.Text()) {
			p.log.Debug("Dropped input line, no question open", zap.String("caller", caller))
		}
	}
}

func init() {
	RootCmd.AddCommand(shellCmd)

	shellCmd.Flags().String("attachments", "", "directory for downloaded and exported decks (default working directory)")
	shellCmd.Flags().Bool("watch", false, "reload the deck document when another program edits it")
}
