// Command xfsundelete recovers recently deleted files from an XFS
// filesystem image.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkdwt/xfs-undelete/internal/blockcopy"
	"github.com/bkdwt/xfs-undelete/internal/classify"
	"github.com/bkdwt/xfs-undelete/internal/config"
	"github.com/bkdwt/xfs-undelete/internal/recovery"
	"github.com/bkdwt/xfs-undelete/internal/xfslog"
	"github.com/bkdwt/xfs-undelete/xfs"
	"github.com/bkdwt/xfs-undelete/xfs/utils"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "xfsundelete <image>",
		Short:        "Recover recently deleted files from an XFS filesystem image",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runRecover,
	}
	cmd.Flags().String("output", "xfs_undeleted", "directory to place recovered files in")
	cmd.Flags().String("ignore", "bin", "comma-separated extensions to discard")
	cmd.Flags().String("recover-only", "", "comma-separated extensions to keep exclusively, overrides --ignore when set")
	cmd.Flags().String("min-ctime", "", "RFC3339 timestamp; skip inodes changed before it")
	return cmd
}

func runRecover(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.ImagePath = args[0]
	cfg.OutputDir, _ = cmd.Flags().GetString("output")

	if ignore, _ := cmd.Flags().GetString("ignore"); ignore != "" {
		cfg.IgnoreExt = config.ParseExtList(ignore)
	}
	if recoverOnly, _ := cmd.Flags().GetString("recover-only"); recoverOnly != "" {
		cfg.RecoverOnlyExt = config.ParseExtList(recoverOnly)
	}
	if minCtime, _ := cmd.Flags().GetString("min-ctime"); minCtime != "" {
		t, err := time.Parse(time.RFC3339, minCtime)
		if err != nil {
			return fmt.Errorf("invalid --min-ctime: %w", err)
		}
		cfg.MinCtime = t
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Open(cfg.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	logger := xfslog.New()
	defer logger.Sync()

	geo, err := xfs.ParseSuperBlock(f)
	if err != nil {
		return fmt.Errorf("failed to parse superblock: %w", err)
	}

	cr, err := utils.NewChunkReader(f, int(geo.BlockSize), int(geo.SectorSize))
	if err != nil {
		return fmt.Errorf("failed to build reader: %w", err)
	}

	copier := blockcopy.New(f, geo.BlockSize)
	classifier := recovery.NewHTTPClassifier(classify.Sniff, classify.Extension)
	orchestrator := &recovery.Orchestrator{
		Copier:     copier,
		Classifier: classifier,
		Config:     cfg,
		Log:        logger,
		BlockSize:  geo.BlockSize,
	}

	scanner := xfs.NewScanner(cr, geo, xfs.ScanOptions{
		MinCtime: cfg.MinCtime,
		OnProgress: func(ino uint64, percent float64) {
			fmt.Fprintf(os.Stderr, "\rchecking inode %d (%.1f%%)", ino, percent)
		},
	})

	err = xfs.WalkAGs(cr, geo, func(ag, clusterBlock uint32) error {
		return scanner.ScanClusterBlock(ag, clusterBlock, func(inode xfs.RecoveredInode) error {
			return orchestrator.Recover(inode)
		})
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.Info("Done.")
	return nil
}
