// Package jsonl serves session commands over line-delimited JSON: every input
// line is a command envelope and every command gets exactly one response line.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/e-XpertSolutions/go-secret/internal/logging"
	"github.com/e-XpertSolutions/go-secret/session"
)

// maxLineSize bounds a single envelope, values included.
const maxLineSize = 1 << 20

// Processor runs commands. *session.Controller implements it.
type Processor interface {
	Process(cmd session.Command) session.Response
}

// Serve reads envelopes from in and writes responses to out until a quit
// command succeeds, in is exhausted or ctx is cancelled. Blank lines are
// ignored; a line that is not a valid envelope gets an error response. A line
// longer than maxLineSize gets an error response too, then Serve stops since
// the stream cannot be resynchronized.
func Serve(ctx context.Context, proc Processor, in io.Reader, out io.Writer) error {
	log := logging.ForComponent(logging.CompREPL).With(slog.String("mode", "jsonl"))

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp session.Response
		cmd, err := session.ParseCommand(line)
		if err != nil {
			log.Debug("rejected envelope", slog.String("error", err.Error()))
			resp = session.ErrorResponse(err)
		} else {
			resp = proc.Process(cmd)
		}
		if err := enc.Encode(resp); err != nil {
			return errors.Wrap(err, "cannot write response")
		}
		if resp.OK() && resp.Command == session.KindQuit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			resp := session.ErrorResponse(errors.Wrapf(session.ErrArgument, "envelope longer than %d bytes", maxLineSize))
			if encErr := enc.Encode(resp); encErr != nil {
				return errors.Wrap(encErr, "cannot write response")
			}
		}
		return errors.Wrap(err, "cannot read command")
	}
	return nil
}
