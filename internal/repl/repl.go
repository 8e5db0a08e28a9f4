// Package repl implements the interactive gosecret front end. It reads a
// command per line, prompting for whatever a command still misses, hands the
// command to a Processor and renders the response.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"

	"github.com/e-XpertSolutions/go-secret/internal/logging"
	"github.com/e-XpertSolutions/go-secret/session"
)

// Processor runs commands. *session.Controller implements it.
type Processor interface {
	Process(cmd session.Command) session.Response
}

// REPL is a read-eval-print loop over a Processor.
type REPL struct {
	proc Processor
	reg  *Registry
	in   *bufio.Scanner
	out  io.Writer
	log  *slog.Logger

	prompt   string
	preview  int
	showHelp bool

	renderer *lipgloss.Renderer
	styles   styles
}

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt sets the prompt printed before each command.
func WithPrompt(p string) Option {
	return func(r *REPL) { r.prompt = p }
}

// WithPreview sets how many search results are printed with their value.
func WithPreview(n int) Option {
	return func(r *REPL) {
		if n >= 0 {
			r.preview = n
		}
	}
}

// WithShowHelp prints the command list when the loop starts.
func WithShowHelp(show bool) Option {
	return func(r *REPL) { r.showHelp = show }
}

// WithColorProfile forces the color profile of the output.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *REPL) { r.renderer.SetColorProfile(p) }
}

// New returns a REPL reading commands from in and writing to out.
func New(proc Processor, reg *Registry, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{
		proc:     proc,
		reg:      reg,
		in:       bufio.NewScanner(in),
		out:      out,
		log:      logging.ForComponent(logging.CompREPL),
		prompt:   "> ",
		preview:  2,
		renderer: lipgloss.NewRenderer(out),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.styles = newStyles(r.renderer)
	return r
}

// Run processes commands until quit, end of input or cancellation of ctx.
// Reaching the end of input is not an error.
func (r *REPL) Run(ctx context.Context) error {
	if r.showHelp {
		fmt.Fprintln(r.out, r.reg.Help())
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd, err := r.readCommand()
		if err == io.EOF {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}
		resp := r.proc.Process(cmd)
		if !resp.OK() {
			r.log.Debug("command failed",
				slog.String("command", string(cmd.Kind())),
				slog.String("error", resp.Error))
		}
		r.render(resp)
		if resp.OK() && resp.Command == session.KindQuit {
			return nil
		}
	}
}

// readCommand reads lines until they form a complete command.
func (r *REPL) readCommand() (session.Command, error) {
	var (
		line  string
		input map[string]string
		key   string
	)
	for {
		prompt := r.prompt
		if key != "" {
			prompt = key + "> "
		}
		fmt.Fprint(r.out, prompt)

		text, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if key == "" {
			line, input = text, map[string]string{}
		} else {
			input[key] = text
		}

		cmd, err := r.parse(line, input)
		if err == nil {
			return cmd, nil
		}
		var need *InputNeeded
		if !errors.As(err, &need) {
			return nil, err
		}
		if need.Help != "" {
			fmt.Fprintln(r.out, r.styles.hint.Render(need.Help))
		}
		key = need.Key
	}
}

func (r *REPL) parse(line string, input map[string]string) (session.Command, error) {
	spec, args, err := r.reg.Resolve(line)
	if err != nil {
		return nil, err
	}
	return spec.Parse(args, input)
}

func (r *REPL) readLine() (string, error) {
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", errors.Wrap(err, "cannot read input")
		}
		return "", io.EOF
	}
	return strings.TrimSpace(r.in.Text()), nil
}
