package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/assetsync/internal/bridge"
	"github.com/bamsammich/assetsync/internal/dest"
	"github.com/bamsammich/assetsync/internal/engine"
	"github.com/bamsammich/assetsync/internal/event"
	"github.com/bamsammich/assetsync/internal/manifest"
)

func newCopyAssetsCmd() *cobra.Command {
	var (
		manifestName string
		root         string
		policyName   string
		sf           sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "copy-assets <source> <destination>",
		Short: "Deploy through the host bridge, printing one line per file",
		Long: `Run a deployment the way an embedding host does: the copy is started
through the bridge without blocking, progress arrives as callbacks, and a
single completion callback ends the run.

Prints "N/T path" before each copied file and "complete" once the session
has finished.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := engine.ParsePolicy(policyName)
			if err != nil {
				return usageError(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, src, srcCloser, err := openSource(ctx, cmd.Flags(), args[0], sf)
			if err != nil {
				return err
			}
			defer srcCloser.Close()

			target, err := dest.OpenOS(args[1])
			if err != nil {
				return fmt.Errorf("destination %s: %w", args[1], err)
			}

			res, err := copyViaBridge(ctx, cmd.OutOrStdout(), engine.Config{
				Source:   src,
				Target:   target,
				Manifest: manifestName,
				Root:     root,
				Policy:   policy,
			})
			if err != nil {
				return err
			}
			return exitFor(res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&manifestName, "manifest", manifest.DefaultName, "bundle path of the directory manifest")
	f.StringVar(&root, "root", "", "bundle subtree to deploy (default: whole bundle)")
	f.StringVar(&policyName, "policy", "size", "staleness policy: size or digest")
	f.StringVar(&sf.prefix, "prefix", "", "entry prefix inside a zip archive or bucket (default: assets/ for .apk)")
	f.StringVar(&sf.sshKey, "ssh-key", "", "private key for sftp sources")
	f.IntVar(&sf.sshPort, "ssh-port", 0, "SSH port for sftp sources (default: 22)")
	return cmd
}

// copyViaBridge starts cfg through a bridge and blocks until the observer's
// completion callback has fired and the session has returned its result.
func copyViaBridge(ctx context.Context, w io.Writer, cfg engine.Config) (engine.Result, error) {
	completed := make(chan struct{})
	var once sync.Once

	b := bridge.New(ctx, bridge.Config{
		Sync: cfg,
		Observer: event.ObserverFuncs{
			Progress: func(index, total int, path string) {
				fmt.Fprintf(w, "%d/%d %s\n", index+1, total, path)
			},
			Complete: func() {
				fmt.Fprintln(w, "complete")
				once.Do(func() { close(completed) })
			},
		},
	})
	if err := b.CopyAssets(); err != nil {
		return engine.Result{}, err
	}

	<-completed
	return b.LastSession().Wait(), nil
}
