package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/howeyc/gopass"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/e-XpertSolutions/go-secret/internal/config"
	"github.com/e-XpertSolutions/go-secret/internal/jsonl"
	"github.com/e-XpertSolutions/go-secret/internal/logging"
	"github.com/e-XpertSolutions/go-secret/internal/repl"
	"github.com/e-XpertSolutions/go-secret/secret"
	"github.com/e-XpertSolutions/go-secret/session"
)

// passwordEnv names the environment variable holding the passphrase.
const passwordEnv = "GOSECRET_PASSWORD"

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// rootOptions holds the global flags.
type rootOptions struct {
	File     string
	Password string
	Config   string
	LogLevel string
	Debug    bool
	JSON     bool
}

// app is what every command needs once bootstrapped.
type app struct {
	cfg  config.Config
	ctrl *session.Controller
	log  *slog.Logger
}

// NewRootCommand creates the gosecret command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gosecret",
		Short: "Encrypted, searchable secret notes",
		Long: `Gosecret keeps key/value notes in a file where every entry is encrypted
on its own with a key derived from your passphrase.

Without a subcommand, gosecret starts an interactive session: search entries
by key, then show or delete them by their number in the search results.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.File, "file", "f", "", "store file (default from config: ~/.passwords.txt)")
	cmd.PersistentFlags().StringVarP(&opts.Password, "password", "p", "", "passphrase (default $"+passwordEnv+" or prompt)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default in the user config directory)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "also log to stderr")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "read and write line-delimited JSON")

	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newSearchCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func runSession(cmd *cobra.Command, opts *rootOptions) error {
	a, err := bootstrap(cmd, opts)
	if err != nil {
		return err
	}
	defer logging.Shutdown()

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if opts.JSON {
		return jsonl.Serve(cmd.Context(), a.ctrl, in, out)
	}

	replOpts := []repl.Option{
		repl.WithPrompt(a.cfg.REPL.Prompt),
		repl.WithPreview(a.cfg.REPL.Preview),
		repl.WithShowHelp(a.cfg.REPL.ShowHelp),
	}
	if !isTerminalWriter(out) {
		replOpts = append(replOpts, repl.WithColorProfile(termenv.Ascii))
	}
	return repl.New(a.ctrl, repl.DefaultRegistry(), in, out, replOpts...).Run(cmd.Context())
}

// bootstrap loads the configuration, starts logging, makes sure the store
// file exists and builds the controller.
func bootstrap(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	stderr := cmd.ErrOrStderr()

	cfgPath := opts.Config
	if cfgPath == "" {
		cfgPath, _ = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
	}
	if opts.File != "" {
		cfg.StorePath = opts.File
	}
	if opts.LogLevel != "" {
		cfg.Logs.Level = opts.LogLevel
	}

	logCfg := cfg.Logging(opts.Debug)
	logCfg.Console = stderr
	logging.Init(logCfg)
	log := logging.ForComponent(logging.CompCLI)

	path := config.ExpandHome(cfg.StorePath)
	if err := secret.CreateStoreFile(path); err != nil {
		logging.Shutdown()
		return nil, err
	}

	passphrase, err := readPassphrase(cmd, opts)
	if err != nil {
		logging.Shutdown()
		return nil, err
	}
	c, err := secret.NewCipher(passphrase)
	if err != nil {
		logging.Shutdown()
		return nil, err
	}

	a := &app{
		cfg: cfg,
		ctrl: session.NewController(path, c,
			session.WithMaxResults(cfg.MaxResults),
			session.WithLogger(logging.ForComponent(logging.CompSession))),
		log: log,
	}
	log.Info("store opened", slog.String("path", path))
	if err := a.checkPassphrase(stderr); err != nil {
		logging.Shutdown()
		return nil, err
	}
	return a, nil
}

// checkPassphrase loads the store and warns when none of its entries can be
// decrypted, which usually means the passphrase is wrong.
func (a *app) checkPassphrase(w io.Writer) error {
	resp := a.ctrl.Process(session.Stats{})
	if !resp.OK() {
		return resp.Err
	}
	if resp.Stats.DecryptionRate == 0 {
		a.log.Warn("no entry could be decrypted")
		fmt.Fprintln(w, "Warning: no entry could be decrypted, the passphrase is probably wrong.")
	}
	return nil
}

// readPassphrase takes the passphrase from the flag, the environment or,
// when stdin is a terminal, a prompt repeated until the answer is not empty.
func readPassphrase(cmd *cobra.Command, opts *rootOptions) (string, error) {
	if opts.Password != "" {
		return opts.Password, nil
	}
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	if !stdinIsTerminal() {
		return "", errors.Errorf("no passphrase: use --password or $%s when stdin is not a terminal", passwordEnv)
	}
	for {
		pw, err := gopass.GetPasswdPrompt("Passphrase: ", false, os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return "", errors.Wrap(err, "cannot read passphrase")
		}
		if len(pw) > 0 {
			return string(pw), nil
		}
	}
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
