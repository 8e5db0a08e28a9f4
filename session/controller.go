// Package session serves commands against an encrypted store: it keeps the
// results of the last search so entries can be shown or deleted by their rank
// in those results, and reloads the store from disk after every change.
package session

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/e-XpertSolutions/go-secret/internal/logging"
	"github.com/e-XpertSolutions/go-secret/search"
	"github.com/e-XpertSolutions/go-secret/secret"
)

// DefaultMaxResults is the number of entries a search returns by default.
const DefaultMaxResults = 10

// Errors carried by error responses.
var (
	ErrArgument       = errors.New("invalid arguments")
	ErrOutOfRange     = errors.New("index out of range")
	ErrRequiresSearch = errors.New("command requires a prior search")
	ErrUnknownCommand = errors.New("unknown command")
)

// readyState is only set once the store has been loaded and indexed.
type readyState struct {
	store *secret.Store
	index *search.Index
}

// A Controller processes commands for a single store file. It is not safe for
// concurrent use.
//
// The controller starts invalid and loads the store on the first command. Any
// command that changes the store makes it invalid again, so the next command
// works on what was actually written to disk. Changing the store also clears
// the search results, whose positions would no longer match the store.
type Controller struct {
	path       string
	cipher     *secret.Cipher
	maxResults int
	log        *slog.Logger

	ready   *readyState
	results []secret.Position
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxResults sets the number of entries a search returns.
func WithMaxResults(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// NewController returns a controller for the store file at path. The file is
// not read until the first command.
func NewController(path string, c *secret.Cipher, opts ...Option) *Controller {
	ctrl := &Controller{
		path:       path,
		cipher:     c,
		maxResults: DefaultMaxResults,
		log:        logging.ForComponent(logging.CompSession),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl
}

// Ready reports whether the store is loaded.
func (c *Controller) Ready() bool {
	return c.ready != nil
}

// Invalidate forces the store to be reloaded by the next command and clears
// the search results.
func (c *Controller) Invalidate() {
	c.ready = nil
	c.results = nil
}

func (c *Controller) reload() error {
	store, err := secret.OpenStore(c.path, c.cipher)
	if err != nil {
		return err
	}
	c.ready = &readyState{
		store: store,
		index: search.NewIndex(store.Records()),
	}
	c.results = nil
	c.log.Debug("store ready",
		slog.Int("entries", store.Len()),
		slog.Float64("decryption_rate", store.SuccessRatio()))
	return nil
}

// Process runs a command and returns its response. It never panics on bad
// input: every failure is reported as an error response.
func (c *Controller) Process(cmd Command) Response {
	if c.ready == nil {
		if err := c.reload(); err != nil {
			c.log.Warn("cannot load store", slog.String("error", err.Error()))
			return ErrorResponse(err)
		}
	}

	var resp Response
	switch cmd := cmd.(type) {
	case Add:
		resp = c.add(cmd)
	case Search:
		resp = c.search(cmd)
	case Show:
		resp = c.show(cmd.Indices)
	case Delete:
		resp = c.delete(cmd)
	case Stats:
		resp = c.stats()
	case Quit:
		resp = okResponse(KindQuit)
	default:
		resp = ErrorResponse(errors.Wrapf(ErrUnknownCommand, "%T", cmd))
	}
	c.log.Debug("command processed",
		slog.String("command", kindOf(cmd)),
		slog.String("status", string(resp.Status)))
	return resp
}

func kindOf(cmd Command) string {
	if cmd == nil {
		return ""
	}
	return string(cmd.Kind())
}

func (c *Controller) add(cmd Add) Response {
	key, value := strings.TrimSpace(cmd.Key), strings.TrimSpace(cmd.Value)
	if key == "" || value == "" {
		return ErrorResponse(errors.Wrap(ErrArgument, "add requires a key and a value"))
	}
	store := c.ready.store
	c.Invalidate()
	if err := store.Append(key, value); err != nil {
		c.log.Error("cannot add entry", slog.String("error", err.Error()))
		return ErrorResponse(err)
	}
	c.log.Info("entry added", slog.Int("entries", store.Len()))
	return okResponse(KindAdd)
}

func (c *Controller) search(cmd Search) Response {
	c.results = c.ready.index.FindKey(cmd.Term, c.maxResults)
	resp := c.show(nil)
	if resp.OK() {
		resp.Command = KindSearch
	}
	return resp
}

// resolve maps result positions to store positions. Duplicates are dropped,
// the first occurrence keeps its place.
func (c *Controller) resolve(indices []ResultPosition) ([]secret.Position, error) {
	seen := make(map[ResultPosition]bool, len(indices))
	out := make([]secret.Position, 0, len(indices))
	for _, i := range indices {
		if i < 0 || int(i) >= len(c.results) {
			return nil, errors.Wrapf(ErrOutOfRange, "index %d with %d results", i, len(c.results))
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, c.results[i])
	}
	return out, nil
}

func (c *Controller) show(indices []ResultPosition) Response {
	if len(c.results) == 0 {
		return ErrorResponse(errors.Wrap(ErrOutOfRange, "no search results"))
	}
	if len(indices) == 0 {
		indices = make([]ResultPosition, len(c.results))
		for i := range indices {
			indices[i] = ResultPosition(i)
		}
	}
	positions, err := c.resolve(indices)
	if err != nil {
		return ErrorResponse(err)
	}

	resp := okResponse(KindShow)
	resp.Values = make([]Entry, 0, len(positions))
	for _, p := range positions {
		r, err := c.ready.store.Record(p)
		if err != nil {
			return ErrorResponse(err)
		}
		resp.Values = append(resp.Values, Entry{Key: r.Key, Value: r.Value})
	}
	return resp
}

func (c *Controller) delete(cmd Delete) Response {
	if len(c.results) == 0 {
		return ErrorResponse(ErrRequiresSearch)
	}
	if len(cmd.Indices) == 0 {
		return ErrorResponse(errors.Wrap(ErrArgument, "delete requires indices"))
	}
	positions, err := c.resolve(cmd.Indices)
	if err != nil {
		return ErrorResponse(err)
	}
	store := c.ready.store
	c.Invalidate()
	if err := store.DeleteIndices(positions); err != nil {
		c.log.Error("cannot delete entries", slog.String("error", err.Error()))
		return ErrorResponse(err)
	}
	c.log.Info("entries deleted", slog.Int("count", len(positions)), slog.Int("entries", store.Len()))
	return okResponse(KindDelete)
}

func (c *Controller) stats() Response {
	resp := okResponse(KindStats)
	resp.Stats = &StatsValues{
		Status:         StatusOK,
		DecryptionRate: c.ready.store.SuccessRatio(),
		Entries:        c.ready.store.Len(),
	}
	return resp
}
