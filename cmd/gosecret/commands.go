package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/e-XpertSolutions/go-secret/internal/logging"
	"github.com/e-XpertSolutions/go-secret/session"
)

func newAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add KEY VALUE",
		Short: "Store a new entry",
		Long: `Store a new entry in the secret store. Leading and trailing whitespace
is removed from both the key and the value, which must not be empty.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(cmd, opts, session.Add{Key: args[0], Value: args[1]})
		},
	}
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var show []int

	cmd := &cobra.Command{
		Use:   "search TERM...",
		Short: "Search entries by key",
		Long: `Search entries by key and print the best matches, numbered from 0.
Use --show with these numbers to print the values of some of them.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds := []session.Command{session.Search{Term: strings.Join(args, " ")}}
			if len(show) > 0 {
				indices := make([]session.ResultPosition, len(show))
				for i, n := range show {
					indices[i] = session.ResultPosition(n)
				}
				cmds = append(cmds, session.Show{Indices: indices})
			}
			return runOne(cmd, opts, cmds...)
		},
	}
	cmd.Flags().IntSliceVarP(&show, "show", "s", nil, "result numbers whose value is printed")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Print the number of entries and the share of readable entries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(cmd, opts, session.Stats{})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

// runOne bootstraps a controller, runs cmds in order and prints the response
// of each. It stops at the first failure.
func runOne(cmd *cobra.Command, opts *rootOptions, cmds ...session.Command) error {
	a, err := bootstrap(cmd, opts)
	if err != nil {
		return err
	}
	defer logging.Shutdown()

	out := cmd.OutOrStdout()
	for _, c := range cmds {
		resp := a.ctrl.Process(c)
		if opts.JSON {
			if err := json.NewEncoder(out).Encode(resp); err != nil {
				return err
			}
		} else if resp.OK() {
			printResponse(out, resp)
		}
		if !resp.OK() {
			return resp.Err
		}
	}
	return nil
}

func printResponse(w io.Writer, resp session.Response) {
	switch resp.Command {
	case session.KindAdd:
		fmt.Fprintln(w, "data successfully added")
	case session.KindSearch:
		for i, e := range resp.Values {
			fmt.Fprintf(w, "%d. %s\n", i, e.Key)
		}
	case session.KindShow:
		for _, e := range resp.Values {
			fmt.Fprintf(w, "--- %s ---\n%s\n", e.Key, e.Value)
		}
	case session.KindStats:
		fmt.Fprintf(w, "entries: %d\nreadable: %.0f%%\n", resp.Stats.Entries, resp.Stats.DecryptionRate*100)
	}
}
