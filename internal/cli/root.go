package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/mountstack/mountstack/internal/branding"
	"github.com/mountstack/mountstack/internal/config"
	"github.com/mountstack/mountstack/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates a Turborepo workspace with a Next.js application
(Tailwind, Docker, React Query, next-intl, LogTape, validated env files) and a
Prisma/Drizzle database package. Run it without arguments and answer the prompt.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		setupLogging()
	},
	RunE: runCreate,
}

// setupLogging points the diagnostic logger at the log file. Logging is
// best effort: an unwritable file disables it.
func setupLogging() {
	var out io.Writer = io.Discard
	if f, err := logging.OpenFile(config.LogFilePath()); err == nil {
		out = f
	}
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(config.LogLevel()),
		Output: out,
	})
	logging.Debug().Str("version", buildVersion).Str("commit", buildCommit).Msg("starting")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	reportError(rootCmd.ErrOrStderr(), err)
	return err
}

// reportError prints err unless the console already showed it.
func reportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, errCanceled) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
