package session

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Kind names a command in envelopes.
type Kind string

// Command kinds.
const (
	KindAdd    Kind = "add"
	KindSearch Kind = "search"
	KindShow   Kind = "show"
	KindDelete Kind = "delete"
	KindStats  Kind = "stats"
	KindQuit   Kind = "quit"
)

// ResultPosition is an offset into the results of the last search. It is
// distinct from secret.Position, the offset of a record in the store.
type ResultPosition int

// A Command is one request to a Controller. The set of commands is closed:
// Add, Search, Show, Delete, Stats and Quit.
type Command interface {
	Kind() Kind
	command()
}

// Add stores a new entry. Both fields are required.
type Add struct {
	Key   string
	Value string
}

// Search ranks entries by key and makes the best matches the current results.
type Search struct {
	Term string
}

// Show returns entries of the current results. No indices means all of them.
type Show struct {
	Indices []ResultPosition
}

// Delete removes entries of the current results from the store.
type Delete struct {
	Indices []ResultPosition
}

// Stats reports the state of the store.
type Stats struct{}

// Quit asks the front end to stop.
type Quit struct{}

func (Add) Kind() Kind    { return KindAdd }
func (Search) Kind() Kind { return KindSearch }
func (Show) Kind() Kind   { return KindShow }
func (Delete) Kind() Kind { return KindDelete }
func (Stats) Kind() Kind  { return KindStats }
func (Quit) Kind() Kind   { return KindQuit }

func (Add) command()    {}
func (Search) command() {}
func (Show) command()   {}
func (Delete) command() {}
func (Stats) command()  {}
func (Quit) command()   {}

type envelope struct {
	Command Kind             `json:"command"`
	Key     string           `json:"key,omitempty"`
	Value   string           `json:"value,omitempty"`
	Term    string           `json:"term,omitempty"`
	Indices []ResultPosition `json:"indices,omitempty"`
}

// ParseCommand decodes a JSON command envelope such as
//
//	{"command": "show", "indices": [0, 2]}
func ParseCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "cannot decode command envelope")
	}
	switch env.Command {
	case KindAdd:
		return Add{Key: env.Key, Value: env.Value}, nil
	case KindSearch:
		return Search{Term: env.Term}, nil
	case KindShow:
		return Show{Indices: env.Indices}, nil
	case KindDelete:
		return Delete{Indices: env.Indices}, nil
	case KindStats:
		return Stats{}, nil
	case KindQuit:
		return Quit{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownCommand, "%q", env.Command)
}
