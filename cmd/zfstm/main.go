package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/zfstm/zfstm/internal/config"
	"github.com/zfstm/zfstm/internal/discovery"
	"github.com/zfstm/zfstm/internal/mount"
	"github.com/zfstm/zfstm/internal/snapshot"
)

func main() {
	cmd := generateCommands()

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func generateCommands() *cobra.Command {
	var flagVerbosity int
	var flagAltReplicated bool
	var flagNoLiveVers bool
	var flagSnapDir string
	var flagLocalDir string

	rootCmd := &cobra.Command{
		Use:   "zfstm",
		Short: "Time machine over a ZFS-style snapshot directory convention",
		Long: `zfstm resolves historical versions of a live path, and reconstructs the set
of entries deleted from a directory, by walking a dataset's .zfs/snapshot
convention directly. Read-only: no snapshot mutation, no restore, no UI.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetVerboseMode(flagVerbosity > 0)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&flagVerbosity, "verbose", "v", "issue DEBUG output and print error stacktraces (-v; repeating it changes nothing further)")
	rootCmd.PersistentFlags().BoolVar(&flagAltReplicated, "alt-replicated", false, "also search alternate-replicated mirror mounts")
	rootCmd.PersistentFlags().BoolVar(&flagNoLiveVers, "no-live-vers", false, "do not echo the input path itself as a live version")
	rootCmd.PersistentFlags().StringVar(&flagSnapDir, "snap-dir", "", "explicit snapshot root directory (enables a user-defined topology)")
	rootCmd.PersistentFlags().StringVar(&flagLocalDir, "local-dir", "", "live directory corresponding to --snap-dir")

	buildConfig := func(ctx context.Context, requestedDir string) (config.Config, error) {
		var topo mount.Topology
		switch {
		case flagSnapDir != "" && flagLocalDir != "":
			topo = mount.UserDefinedTopology{SnapDir: flagSnapDir, LocalDir: flagLocalDir}
		case flagSnapDir != "" || flagLocalDir != "":
			return config.Config{}, xerrors.Errorf("--snap-dir and --local-dir must be given together")
		default:
			inv, err := discovery.Native(ctx)
			if err != nil {
				return config.Config{}, xerrors.Errorf("couldn't discover native mount topology: "+config.ErrorFormat, err)
			}
			topo = mount.NativeTopology{Mounts: inv}
		}

		pwd, err := os.Getwd()
		if err != nil {
			return config.Config{}, err
		}

		return config.Config{
			OptAltReplicated: flagAltReplicated,
			OptNoLiveVers:    flagNoLiveVers,
			SnapPoint:        topo,
			Pwd:              pwd,
			OptRequestedDir:  requestedDir,
		}, nil
	}

	versionsCmd := &cobra.Command{
		Use:   "versions <path>",
		Short: "List every historical version of a live path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := buildConfig(ctx, args[0])
			if err != nil {
				return err
			}

			historical, live, err := snapshot.Lookup(ctx, cfg, []string{args[0]})
			if err != nil {
				return xerrors.Errorf("couldn't look up versions: "+config.ErrorFormat, err)
			}

			for _, rec := range live {
				fmt.Printf("live\t%s\t%d\t%s\n", rec.Path, rec.Size, rec.ModTime)
			}
			for _, rec := range historical {
				fmt.Printf("historical\t%s\t%d\t%s\n", rec.Path, rec.Size, rec.ModTime)
			}
			return nil
		},
	}
	rootCmd.AddCommand(versionsCmd)

	deletedCmd := &cobra.Command{
		Use:   "deleted <dir>",
		Short: "List entries present in some snapshot of a directory but absent live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := buildConfig(ctx, args[0])
			if err != nil {
				return err
			}

			entries, err := snapshot.LookupDeleted(ctx, cfg, args[0])
			if err != nil {
				return xerrors.Errorf("couldn't look up deleted entries: "+config.ErrorFormat, err)
			}

			for _, e := range entries {
				fmt.Println(e.Path)
			}
			return nil
		},
	}
	rootCmd.AddCommand(deletedCmd)

	return rootCmd
}
