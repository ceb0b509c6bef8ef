// Command icepatch2client brings a local directory into exact
// content-level agreement with a remote authoritative tree exposed by a
// file-server service (spec §1).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/icepatch2/client/internal/config"
	"github.com/icepatch2/client/internal/logging"
	"github.com/icepatch2/client/internal/patch"
	"github.com/icepatch2/client/internal/patch/rpc"
)

var configPath string
var cleanLog bool

// errCancelled is returned by run when feedback requested cancellation, so
// that main can translate it into exit status 1 after RunE has returned and
// every deferred cleanup (closing the grpc connection, the Patcher's
// decompressActive assertion) has already run. Calling os.Exit directly from
// run would skip those defers.
var errCancelled = errors.New("cancelled")

var rootCommand = &cobra.Command{
	Use:   "icepatch2client",
	Short: "Patch a local directory against a remote file server",
	RunE:  run,
}

func init() {
	rootCommand.Flags().StringVarP(&configPath, "config", "c", "icepatch2client.yml", "path to the configuration file")
	rootCommand.Flags().BoolVar(&cleanLog, "clean-log", false, "remove the diagnostic update log after a successful run")
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.RootLogger.Sublogger("icepatch2client")

	configuration, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	client, err := rpc.Dial(ctx, configuration.Endpoints, configuration.Identity)
	if err != nil {
		return err
	}
	defer client.Close()

	feedback := &patch.CLIFeedback{
		Output: os.Stdout,
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		// Non-interactive output (e.g. redirected to a file or CI log)
		// still uses the same feedback implementation; the progress lines
		// simply accumulate rather than overwriting a terminal line, which
		// is an acceptable degradation for a non-tty consumer.
		logger.Debugln("stdout is not a terminal; progress lines will not overwrite in place")
	}

	patcher, err := patch.New(configuration.Directory, patch.Configuration{
		Thorough:       configuration.Thorough,
		DryRun:         configuration.DryRun,
		ChunkSize:      configuration.ChunkSize,
		IgnorePatterns: configuration.IgnorePatterns,
	}, client, feedback, logger)
	if err != nil {
		return err
	}
	defer patcher.Close()

	ok, err := patcher.Prepare(ctx)
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "cancelled")
		return errCancelled
	}

	ok, err = patcher.Patch(ctx)
	if err != nil {
		return fmt.Errorf("patch failed: %w", err)
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "cancelled")
		return errCancelled
	}

	if cleanLog {
		// The update log is left on disk as a diagnostic record by default
		// (spec §9 second open question); this flag is the explicit,
		// caller-initiated cleanup path.
		if err := patch.RemoveUpdateLog(patcher.DataDirectory()); err != nil {
			logger.Warn(err)
		}
	}

	fmt.Fprintln(os.Stdout, "up to date")
	return nil
}

func main() {
	rootCommand.SetContext(context.Background())
	if err := rootCommand.Execute(); err != nil {
		if !errors.Is(err, errCancelled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
