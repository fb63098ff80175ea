package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docloader/internal/connectors/filesystem"
	"github.com/custodia-labs/docloader/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Load files and reload them when they change",
	Long: `Loads the given paths once, then watches them recursively and reloads
every path after changes settle. Hidden directories are not watched.
Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	addLoadFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce,
		"time to wait for changes to settle before reloading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, store, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	rt, err := buildLoader(settings, store)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchAndLoad(ctx, cmd, rt, args)
}

// watchAndLoad loads paths, then reloads them on every debounced change
// until ctx is cancelled. Reload failures are logged and watching goes on.
func watchAndLoad(ctx context.Context, cmd *cobra.Command, rt *loadRuntime, paths []string) error {
	docs, err := loadWithProgress(ctx, cmd, rt.loader, paths)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	cmd.Printf("Loaded %d documents.\n", len(docs))

	w, err := filesystem.NewWatcher(paths, filesystem.WithDebounce(watchDebounce))
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return err
	}
	cmd.Printf("Watching %d paths for changes. Press Ctrl+C to stop.\n", len(paths))

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped watching.")
			return nil
		case change, ok := <-w.Events():
			if !ok {
				return nil
			}
			cmd.Printf("Detected %d changes, reloading...\n", len(change.Paths))
			for _, p := range change.Paths {
				logger.Debug("Changed: %s", p)
			}

			// Properties files may have changed too.
			rt.replacer.Invalidate()

			docs, err := loadWithProgress(ctx, cmd, rt.loader, paths)
			if err != nil {
				logger.Warn("Reload failed: %v", err)
				cmd.Printf("Reload failed: %v\n", err)
				continue
			}
			cmd.Printf("Reloaded %d documents.\n", len(docs))
		}
	}
}
