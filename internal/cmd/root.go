package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/steipete/gsheet/internal/errfmt"
	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/ui"
)

type rootFlags struct {
	Color       string
	Credentials string
	Spreadsheet string
	Worksheet   string
	Account     string
	JSON        bool
	Plain       bool
	Force       bool
	NoInput     bool
	Verbose     bool
}

func Execute(args []string) error {
	flags := rootFlags{Color: envOr("GSHEET_COLOR", "auto")}
	envMode := outfmt.FromEnv()
	flags.JSON = envMode.JSON
	flags.Plain = envMode.Plain

	// Avoid dangerous prefix-matching for commands (future-proofing).
	cobra.EnablePrefixMatching = false

	if hasExactArg(args, "--version") {
		fmt.Fprintln(os.Stdout, VersionString())
		return nil
	}

	root := &cobra.Command{
		Use:           "gsheet",
		Short:         "Read and write Google Sheets with a service account",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # One-time setup: drop the key next to the binary or store it in the keyring
  cp ~/Downloads/project-123.json ./credentials/service_account.json
  gsheet auth add ~/Downloads/project-123.json

  # Avoid repeating --spreadsheet
  export GSHEET_SPREADSHEET_ID=1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms

  # Read the bound worksheet
  gsheet read --worksheet Orders
  gsheet --json read --format map | jq .

  # Write
  gsheet write A1 --from orders.csv --fit
  gsheet cell B2 '=SUM(A1:A10)'
  gsheet update range 'A1:B2' --values-json '[["a","b"],["c","d"]]'

  # Structure
  gsheet worksheet add Archive --rows 500 --cols 10
  gsheet spreadsheet share --email you@example.com --role writer

  # Local mirrors
  gsheet export orders.xlsx
  gsheet import orders.csv --start A1
`),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logLevel := slog.LevelWarn
			if flags.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))

			mode, err := outfmt.FromFlags(flags.JSON, flags.Plain)
			if err != nil {
				return err
			}
			cmd.SetContext(outfmt.WithMode(cmd.Context(), mode))

			u, err := ui.New(ui.Options{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
				Color: func() string {
					if outfmt.IsJSON(cmd.Context()) || outfmt.IsPlain(cmd.Context()) {
						return "never"
					}
					return flags.Color
				}(),
			})
			if err != nil {
				return err
			}
			cmd.SetContext(ui.WithUI(cmd.Context(), u))
			return nil
		},
	}

	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.Color, "color", flags.Color, "Color output: auto|always|never")
	root.PersistentFlags().StringVar(&flags.Credentials, "credentials", "", "Service account key file name or path (env GSHEET_CREDENTIALS)")
	root.PersistentFlags().StringVar(&flags.Spreadsheet, "spreadsheet", "", "Spreadsheet ID to bind (env GSHEET_SPREADSHEET_ID)")
	root.PersistentFlags().StringVar(&flags.Worksheet, "worksheet", "", "Worksheet title to bind; defaults to the first worksheet (env GSHEET_WORKSHEET)")
	root.PersistentFlags().StringVar(&flags.Account, "account", "", "Use the key stored in the keyring for this client email (env GSHEET_ACCOUNT)")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", flags.JSON, "Output JSON to stdout (best for scripting)")
	root.PersistentFlags().BoolVar(&flags.Plain, "plain", flags.Plain, "Output stable, parseable text to stdout (TSV; no colors)")
	root.PersistentFlags().BoolVar(&flags.Force, "force", false, "Skip confirmations for destructive commands")
	root.PersistentFlags().BoolVar(&flags.NoInput, "no-input", false, "Never prompt; fail instead (useful for CI)")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(newReadCmd(&flags))
	root.AddCommand(newWriteCmd(&flags))
	root.AddCommand(newCellCmd(&flags))
	root.AddCommand(newInsertCmd(&flags))
	root.AddCommand(newUpdateCmd(&flags))
	root.AddCommand(newRemoveCmd(&flags))
	root.AddCommand(newClearCmd(&flags))
	root.AddCommand(newWorksheetCmd(&flags))
	root.AddCommand(newSpreadsheetCmd(&flags))
	root.AddCommand(newExportCmd(&flags))
	root.AddCommand(newImportCmd(&flags))
	root.AddCommand(newAuthCmd(&flags))
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		// pflag already includes helpful context ("unknown flag", "invalid argument", ...).
		return newUsageError(err)
	})

	err := root.Execute()
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if ExitCode(err) == 1 && isUsageError(err) {
		err = &ExitError{Code: 2, Err: err}
	}

	if u := ui.FromContext(root.Context()); u != nil {
		u.Err().Error(errfmt.Format(err))
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hasExactArg(args []string, target string) bool {
	for _, a := range args {
		if a == target {
			return true
		}
	}
	return false
}

// newUsageError wraps errors in a way main() can map to exit code 2.
func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	// Preserve pflag.ErrHelp (should not be treated as failure).
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &ExitError{Code: 2, Err: err}
}

func isUsageError(err error) bool {
	var outErr *outfmt.ParseError
	if errors.As(err, &outErr) {
		return true
	}
	var uiErr *ui.ParseError
	if errors.As(err, &uiErr) {
		return true
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case strings.HasPrefix(msg, "accepts "),
		strings.HasPrefix(msg, "requires "),
		strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "invalid argument"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"):
		return true
	default:
		return false
	}
}
