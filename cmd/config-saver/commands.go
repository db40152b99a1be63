package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amt911/config-saver/pkg/backup"
	"github.com/amt911/config-saver/pkg/config"
	"github.com/amt911/config-saver/pkg/display"
	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/filesystem"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/store"
	"github.com/amt911/config-saver/pkg/types"
)

// newManager wires the backup manager from settings and the process
// environment. The settings are also returned for command-level defaults.
func newManager() (*backup.Manager, *config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, fmt.Errorf(MsgErrLoadSettings, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot determine home directory")
	}

	fsys := filesystem.NewOS()
	st := store.New(fsys, settings.StoreRoot)
	return backup.NewManager(fsys, st, home, os.Geteuid()), settings, nil
}

func newCompressCmd() *cobra.Command {
	var (
		input       string
		output      string
		description string
		progress    bool
	)

	cmd := &cobra.Command{
		Use:   "compress [config-or-directory]",
		Short: MsgCompressShort,
		Long:  MsgCompressLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.compress")

			mgr, settings, err := newManager()
			if err != nil {
				return err
			}

			target := input
			if len(args) > 0 {
				target = args[0]
			}
			if target == "" {
				target = settings.SystemConfigsDir
			}
			if target == "" {
				return errors.New(errors.ErrInvalidInput, MsgErrNoInput)
			}

			info, err := os.Stat(target)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileNotFound, "cannot access input %q", target)
			}

			obs := display.NewProgress("Compressing", progress)
			defer obs.Done()
			opts := backup.CompressOptions{
				Output:      output,
				Description: description,
				Observer:    obs,
			}

			if info.IsDir() {
				if output != "" {
					return errors.New(errors.ErrInvalidInput, MsgErrOutputBatchMode)
				}
				results, batch, err := mgr.CompressDirectory(target, opts)
				if err != nil {
					return err
				}
				obs.Done()
				report := types.NewReport()
				report.Merge(batch)
				for _, res := range results {
					fmt.Printf(MsgArchiveWritten, res.ArchivePath, res.Build.Written, res.Build.Skipped)
					report.Merge(res.Report)
				}
				if len(results) == 0 {
					fmt.Println(MsgNothingCompressed)
				}
				display.RenderSummary(report)
				logger.Info().Int("configs", len(results)).Msg("Batch compress finished")
				return nil
			}

			res, err := mgr.CompressConfig(target, opts)
			if err != nil {
				return err
			}
			obs.Done()
			fmt.Printf(MsgArchiveWritten, res.ArchivePath, res.Build.Written, res.Build.Skipped)
			if res.Incremental {
				fmt.Printf(MsgIncrementalNotice, res.Changed, res.Deleted)
			}
			display.RenderSummary(res.Report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", MsgFlagInput)
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	cmd.Flags().StringVarP(&description, "description", "m", "", MsgFlagDescription)
	cmd.Flags().BoolVarP(&progress, "progress", "P", false, MsgFlagProgress)
	return cmd
}

func newExtractCmd() *cobra.Command {
	var (
		dest     string
		progress bool
	)

	cmd := &cobra.Command{
		Use:     "extract <archive-or-config>",
		Aliases: []string{"decompress"},
		Short:   MsgExtractShort,
		Long:    MsgExtractLong,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, settings, err := newManager()
			if err != nil {
				return err
			}

			archivePath := args[0]
			if _, statErr := os.Stat(archivePath); statErr != nil {
				// Not a file on disk; treat the argument as a
				// configuration name and use its latest version.
				fsys := filesystem.NewOS()
				st := store.New(fsys, settings.StoreRoot)
				rec, recErr := st.Latest(args[0])
				if recErr != nil {
					return errors.Wrapf(statErr, errors.ErrFileNotFound, "no archive at %q and no stored configuration named %q", args[0], args[0])
				}
				archivePath = rec.ArchivePath
			}

			obs := display.NewProgress("Extracting", progress)
			defer obs.Done()
			res, err := mgr.Extract(archivePath, dest, obs)
			if err != nil {
				return err
			}
			obs.Done()
			fmt.Printf(MsgExtractDone, res.Extracted, archivePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "output", "o", "", MsgFlagDest)
	cmd.Flags().BoolVarP(&progress, "progress", "P", false, MsgFlagProgress)
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Long:  MsgListLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return fmt.Errorf(MsgErrLoadSettings, err)
			}
			st := store.New(filesystem.NewOS(), settings.StoreRoot)
			records, err := st.List()
			if err != nil {
				return err
			}
			display.RenderRecords(records)
			return nil
		},
	}
}
