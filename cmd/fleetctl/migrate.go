package main

import (
	"fmt"

	"github.com/rpattn/fleetreg/internal/config"
	"github.com/rpattn/fleetreg/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDBConfig(opts.configPath)
			if err != nil {
				return err
			}
			return db.RunMigrations(cfg)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDBConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := db.RollbackMigrations(cfg, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
