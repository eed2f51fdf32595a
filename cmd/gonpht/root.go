package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hed1ad/gonpht/internal/config"
	"github.com/hed1ad/gonpht/pkg/batch"
	"github.com/hed1ad/gonpht/pkg/extract"
	pio "github.com/hed1ad/gonpht/pkg/io"
	"github.com/hed1ad/gonpht/pkg/io/csv"
	"github.com/hed1ad/gonpht/pkg/io/folder"
	"github.com/hed1ad/gonpht/pkg/npht/discrete"
	"github.com/hed1ad/gonpht/pkg/progress"
	"github.com/hed1ad/gonpht/pkg/provider"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "gonpht INPUT_FOLDER OUTPUT_FILE NUMBER_OF_DIRECTIONS",
		Short: "Compute NPHT persistence diagrams for a folder of labeled images",
		Long: `gonpht computes the normalized persistent homology transform of every
image under INPUT_FOLDER and stores the diagrams in OUTPUT_FILE.

INPUT_FOLDER holds one sub-folder per class label; every file in a class
folder is a sample, except ignored names (Thumbs.db by default). For each of
NUMBER_OF_DIRECTIONS directions the output holds one view per homology
dimension, keyed dim_0_dir_i and dim_1_dir_i, that maps label to sample to
diagram.

Samples that cannot be processed are listed on stdout after the run; they do
not stop the batch.

Examples:
  gonpht data/animals out/animals.gob 32
  gonpht data/animals out/animals.json 32 --n_cores 8`,
		Version:      version,
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, cfgFile, args)
		},
	}

	def := config.DefaultConfig()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gonpht.yaml or ~/.gonpht/gonpht.yaml)")
	cmd.PersistentFlags().String(config.KeyLogLevel, def.LogLevel, "log level: debug, info, warn or error")
	cmd.Flags().Int(config.KeyWorkers, def.Workers, "number of worker goroutines")
	cmd.Flags().String(config.KeyFormat, def.Format, "output format: auto, gob, json or yaml")
	cmd.Flags().StringSlice(config.KeyIgnore, def.Ignore, "file names to skip in class folders")
	cmd.Flags().String(config.KeyErrorsCSV, "", "also write failed samples to this CSV file")
	cmd.Flags().Bool(config.KeyNoProgress, false, "do not display the progress counter")

	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runGenerate(cmd *cobra.Command, cfgFile string, args []string) error {
	input, output := args[0], args[1]
	directions, err := strconv.Atoi(args[2])
	if err != nil || directions < 1 {
		return fmt.Errorf("NUMBER_OF_DIRECTIONS must be a positive integer, got %q", args[2])
	}

	outDir := filepath.Dir(output)
	if _, err := os.Stat(outDir); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), outDir, "does not exist.")
		return nil
	}

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := provider.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	transformer := discrete.New(
		discrete.WithNormalize(cfg.Normalize),
		discrete.WithTolerance(cfg.Tolerance),
	)
	opts := []batch.Option{
		batch.WithWorkers(cfg.Workers),
		batch.WithLogger(logger),
	}
	if !cfg.NoProgress {
		opts = append(opts, batch.WithProgress(progress.NewCounter(cmd.ErrOrStderr())))
	}
	orch := batch.New(folder.New(input, folder.WithIgnore(cfg.Ignore...)), extract.New(transformer), opts...)

	report, err := orch.Run(cmd.Context(), directions)
	if err != nil {
		return err
	}

	p := report.Provider()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := p.Write(output, format); err != nil {
		return fmt.Errorf("write provider: %w", err)
	}
	logger.Info("provider written", "path", output, "run_id", p.Meta.RunID)

	if cfg.ErrorsCSV != "" {
		if err := writeFailures(cfg.ErrorsCSV, report.Failures); err != nil {
			return fmt.Errorf("write failures: %w", err)
		}
	}
	for _, f := range report.Failures {
		fmt.Fprintln(cmd.OutOrStdout(), f.Error())
	}

	return nil
}

func writeFailures(path string, failures []*batch.Failure) error {
	w, err := csv.Create(path)
	if err != nil {
		return err
	}
	records := make([]pio.FailureRecord, 0, len(failures))
	for _, f := range failures {
		records = append(records, f.Record())
	}
	if err := w.WriteAll(records); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
