package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/mountstack/mountstack/internal/branding"
	"github.com/mountstack/mountstack/internal/config"
	"github.com/mountstack/mountstack/internal/logging"
	"github.com/mountstack/mountstack/internal/pipeline"
	"github.com/mountstack/mountstack/internal/scaffold"
	"github.com/mountstack/mountstack/internal/versions"
	"github.com/spf13/cobra"
)

// errCanceled marks errors the console already reported with a cancel
// notice.
var errCanceled = errors.New("operation canceled")

func runCreate(cmd *cobra.Command, _ []string) error {
	console := pipeline.NewConsole(cmd.OutOrStdout())
	console.Intro(branding.DisplayName())

	if err := versions.Validate(); err != nil {
		console.Cancel(err.Error())
		return fmt.Errorf("%w: %w", errCanceled, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	console.Info("Current directory " + cwd)

	rel, err := promptDestination(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), config.DefaultDestination())
	if err != nil {
		console.Cancel("Operation cancelled")
		return fmt.Errorf("%w: %v", errCanceled, err)
	}

	path := ResolveDestination(cwd, rel)
	appName := AppName(path)
	console.Info("Project path " + path)
	console.Info("App name " + appName)
	logging.Info().Str("path", path).Str("app", appName).Msg("scaffolding workspace")

	tasks := scaffold.Plan(scaffold.Options{
		Path:           path,
		AppName:        appName,
		PackageManager: config.PackageManager(),
	})
	if err := pipeline.Run(cmd.Context(), tasks, pipeline.WithConsole(console)); err != nil {
		console.Cancel(err.Error())
		return fmt.Errorf("%w: %w", errCanceled, err)
	}

	console.Outro("Done !")
	return nil
}
