package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/h2hmarketing/site/internal/adapters/repository"
	"github.com/h2hmarketing/site/internal/sitecheck"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var dbPath, file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load blog posts and projects into the sqlite store",
		Long:  "Upsert fixture rows by slug. Without --file the built-in fixtures are used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				dbPath = cfg.SQLitePath
			}

			var r io.Reader = bytes.NewReader(sitecheck.DefaultFixtures)
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open fixtures: %w", err)
				}
				defer f.Close()
				r = f
			}
			posts, projects, err := sitecheck.LoadFixtures(r)
			if err != nil {
				return err
			}

			s, err := repository.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Seed(cmd.Context(), posts, projects); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d posts and %d projects into %s\n", len(posts), len(projects), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SITE_SQLITE_PATH or data/site.db)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	return cmd
}
