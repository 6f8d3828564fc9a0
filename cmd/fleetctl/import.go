package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpattn/fleetreg/internal/app"
	"github.com/rpattn/fleetreg/internal/config"
	"github.com/rpattn/fleetreg/internal/ingestion"
	"github.com/rpattn/fleetreg/internal/logging"

	"github.com/spf13/cobra"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var resource string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a spreadsheet the same way the upload endpoint does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Imports.Import(ctx, ingestion.Request{
				Resource: resource,
				FileName: filepath.Base(args[0]),
				Data:     file,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&resource, "resource", "", "resource to import: fishing-areas, ships or roles (required)")
	_ = cmd.MarkFlagRequired("resource")
	return cmd
}
