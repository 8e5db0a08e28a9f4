package repl

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/e-XpertSolutions/go-secret/session"
)

// InputNeeded is returned by a Parser when the line does not hold a complete
// command. The REPL prints Help, prompts with Key and stores the next line
// under Key before parsing the command again. An empty Key drops the pending
// command.
type InputNeeded struct {
	Key  string
	Help string
}

func (e *InputNeeded) Error() string {
	if e.Key == "" {
		return "input needed"
	}
	return fmt.Sprintf("input needed for %q", e.Key)
}

// A Parser builds a command from the rest of the line, after the command
// word, and from the input collected so far by prompting.
type Parser func(args string, input map[string]string) (session.Command, error)

// Spec describes one REPL command.
type Spec struct {
	Names []string
	Help  string
	Parse Parser
}

// Registry holds the commands known to the REPL. It is built once and never
// modified afterwards.
type Registry struct {
	specs []Spec
}

// Prompt keys.
const (
	keySearch  = "Search"
	keyAdd     = "Key"
	keyIndices = "Indices"
)

const (
	helpIntro = "Type a command followed by its arguments. Commands can be " +
		"shortened to any unambiguous prefix."
	helpAmbiguous = "Sorry, command is ambiguous:"
)

// NewRegistry returns a registry of specs plus a help command listing them.
func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: append([]Spec(nil), specs...)}
	r.specs = append(r.specs, Spec{
		Names: []string{"help", "?"},
		Help:  "Show this message.",
		Parse: func(string, map[string]string) (session.Command, error) {
			return nil, &InputNeeded{Help: r.Help()}
		},
	})
	return r
}

// DefaultRegistry returns the gosecret commands.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Spec{
			Names: []string{"search", "find"},
			Help: "Search entries by key: search TERM. The best matches are numbered; " +
				"use these numbers with show and delete.",
			Parse: parseSearch,
		},
		Spec{
			Names: []string{"add", "new"},
			Help: "Add an entry: add KEY VALUE, or add KEY and type the value on " +
				"the following lines, ending with two empty lines.",
			Parse: parseAdd,
		},
		Spec{
			Names: []string{"delete", "remove"},
			Help:  "Delete entries of the last search: delete 0 2.",
			Parse: parseDelete,
		},
		Spec{
			Names: []string{"view", "show"},
			Help:  "Show entries of the last search: show 1 3, or show for all of them.",
			Parse: parseShow,
		},
		Spec{
			Names: []string{"stats", "info"},
			Help:  "Show the number of entries and the share of readable entries.",
			Parse: func(string, map[string]string) (session.Command, error) {
				return session.Stats{}, nil
			},
		},
		Spec{
			Names: []string{"quit", "exit"},
			Help:  "Leave gosecret.",
			Parse: func(string, map[string]string) (session.Command, error) {
				return session.Quit{}, nil
			},
		},
	)
}

// Help returns the description of every command.
func (r *Registry) Help() string {
	var b strings.Builder
	b.WriteString(helpIntro)
	b.WriteString("\n\n")
	for i, s := range r.specs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(s.Names, ", "))
		b.WriteString("\n   ")
		b.WriteString(s.Help)
		b.WriteString("\n")
	}
	return b.String()
}

// Resolve finds the command named by the first word of line and returns it
// with the rest of the line. The word may be any case-insensitive prefix of a
// command name. When no single command matches, the error is an
// *InputNeeded carrying the message for the user.
func (r *Registry) Resolve(line string) (Spec, string, error) {
	word, rest := splitWord(line)
	if word == "" {
		return Spec{}, "", &InputNeeded{}
	}
	lw := strings.ToLower(word)

	var matches []int
	for i, s := range r.specs {
		matched := false
		for _, name := range s.Names {
			name = strings.ToLower(name)
			if name == lw {
				return s, rest, nil
			}
			matched = matched || strings.HasPrefix(name, lw)
		}
		if matched {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return Spec{}, "", &InputNeeded{Help: r.unknown(word)}
	case 1:
		return r.specs[matches[0]], rest, nil
	}
	candidates := make([]string, len(matches))
	for i, m := range matches {
		candidates[i] = strings.Join(r.specs[m].Names, ", ")
	}
	return Spec{}, "", &InputNeeded{Help: helpAmbiguous + "\n" + strings.Join(candidates, "\n")}
}

// names lists every command name, in registry order.
func (r *Registry) names() []string {
	var out []string
	for _, s := range r.specs {
		out = append(out, s.Names...)
	}
	return out
}

// Suggest returns the command names that fuzzily match word, best first.
func (r *Registry) Suggest(word string) []string {
	matches := fuzzy.Find(strings.ToLower(word), r.names())
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

func (r *Registry) unknown(word string) string {
	msg := fmt.Sprintf("Unknown command %q.", word)
	if s := r.Suggest(word); len(s) > 0 {
		msg += " Did you mean: " + strings.Join(s, ", ") + "?"
	}
	return msg + "\n\n" + r.Help()
}

// splitWord splits line at its first whitespace run. Both parts are trimmed.
func splitWord(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// parseNumbers extracts every run of ASCII digits of s, so "1 2 ,3" and
// "1,,2 3" both work. Numbers too large for an int become math.MaxInt.
func parseNumbers(s string) []session.ResultPosition {
	var out []session.ResultPosition
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		n, err := strconv.Atoi(s[start:end])
		if err != nil {
			n = math.MaxInt
		}
		out = append(out, session.ResultPosition(n))
		start = -1
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return out
}

func parseSearch(args string, input map[string]string) (session.Command, error) {
	term := strings.TrimSpace(input[keySearch])
	if term == "" {
		term = args
	}
	if term == "" {
		return nil, &InputNeeded{Key: keySearch, Help: "Please enter search term"}
	}
	return session.Search{Term: term}, nil
}

func parseAdd(args string, input map[string]string) (session.Command, error) {
	key := strings.TrimSpace(input[keyAdd])
	var value string
	if key == "" {
		key, value = splitWord(args)
	}
	if key == "" {
		return nil, &InputNeeded{
			Key: keyAdd,
			Help: "Please enter the key of the new entry, then its value. " +
				"End the value with two empty lines.",
		}
	}
	if value == "" {
		lines := valueLines(input)
		n := len(lines)
		if n < 2 || lines[n-1] != "" || lines[n-2] != "" {
			return nil, &InputNeeded{Key: strconv.Itoa(n + 1)}
		}
		value = strings.Join(lines, "\n")
	}
	return session.Add{Key: key, Value: value}, nil
}

// valueLines returns the lines stored under "1", "2", ... in order.
func valueLines(input map[string]string) []string {
	var lines []string
	for i := 1; ; i++ {
		line, ok := input[strconv.Itoa(i)]
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

func parseDelete(args string, input map[string]string) (session.Command, error) {
	indices := append(parseNumbers(args), parseNumbers(input[keyIndices])...)
	if len(indices) == 0 {
		return nil, &InputNeeded{
			Key:  keyIndices,
			Help: "Please enter the numbers of the search results to delete",
		}
	}
	return session.Delete{Indices: indices}, nil
}

func parseShow(args string, _ map[string]string) (session.Command, error) {
	return session.Show{Indices: parseNumbers(args)}, nil
}
