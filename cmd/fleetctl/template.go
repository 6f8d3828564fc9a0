package main

import (
	"fmt"
	"os"

	"github.com/rpattn/fleetreg/internal/export"

	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "template RESOURCE",
		Short: "Write the import template of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			// Templates never touch the database.
			sheet, name, err := export.NewService(nil, nil, nil, nil).Template(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s.%s", name, f)
			}

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := export.Write(out, f, sheet); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <template name>.<format>)")
	return cmd
}
