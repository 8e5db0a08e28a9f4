package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/e-XpertSolutions/go-secret/session"
)

const (
	previewWidth = 70
	previewLines = 2
	ruleWidth    = 20
)

// Colors
var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#7AA2F7"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#565F89"}
	colorError  = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#F7768E"}
)

type styles struct {
	index   lipgloss.Style
	key     lipgloss.Style
	preview lipgloss.Style
	rule    lipgloss.Style
	label   lipgloss.Style
	err     lipgloss.Style
	hint    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		index: r.NewStyle().Foreground(colorDim),
		key:   r.NewStyle().Bold(true).Foreground(colorAccent),
		preview: r.NewStyle().
			PaddingLeft(2).
			Width(previewWidth).
			MaxHeight(previewLines),
		rule:  r.NewStyle().Foreground(colorDim),
		label: r.NewStyle().Bold(true),
		err:   r.NewStyle().Bold(true).Foreground(colorError),
		hint:  r.NewStyle().Foreground(colorDim).Italic(true),
	}
}

func (r *REPL) rule() string {
	return r.styles.rule.Render(strings.Repeat("-", ruleWidth))
}

func (r *REPL) render(resp session.Response) {
	if !resp.OK() {
		fmt.Fprintln(r.out, r.styles.err.Render("Error"))
		fmt.Fprintln(r.out, resp.Error)
		fmt.Fprintln(r.out, r.rule())
		return
	}

	switch resp.Command {
	case session.KindSearch:
		r.renderSearch(resp.Values)
	case session.KindShow:
		r.renderShow(resp.Values)
	case session.KindStats:
		if s := resp.Stats; s != nil {
			fmt.Fprintf(r.out, "%s %d\n", r.styles.label.Render("Entries:"), s.Entries)
			fmt.Fprintf(r.out, "%s %.0f%%\n", r.styles.label.Render("Readable:"), s.DecryptionRate*100)
		}
	case session.KindAdd:
		fmt.Fprintln(r.out, "Entry added.")
	case session.KindDelete:
		fmt.Fprintln(r.out, "Entries deleted.")
	case session.KindQuit:
		fmt.Fprintln(r.out, "Bye.")
	}
}

// renderSearch numbers the keys and previews the value of the first results.
func (r *REPL) renderSearch(values []session.Entry) {
	for i, e := range values {
		fmt.Fprintf(r.out, "%s %s\n", r.styles.index.Render(fmt.Sprintf("%d.", i)), r.styles.key.Render(e.Key))
		if i < r.preview {
			fmt.Fprintln(r.out, r.rule())
			fmt.Fprintln(r.out, r.styles.preview.Render(e.Value))
			fmt.Fprintln(r.out, r.rule())
		}
	}
	if len(values) > r.preview {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.hint.Render("Use show with result numbers to see the other values."))
	}
}

func (r *REPL) renderShow(values []session.Entry) {
	for _, e := range values {
		fmt.Fprintln(r.out, r.styles.label.Render("--- KEY ---"))
		fmt.Fprintln(r.out, e.Key)
		fmt.Fprintln(r.out, r.styles.label.Render("=== VALUE ==="))
		fmt.Fprintln(r.out, e.Value)
	}
}
