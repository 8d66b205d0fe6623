package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newBackupCmd(withStore storeRunner) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a SQL dump of the sqlite database",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, s *store) error {
			if output == "-" {
				return s.queue.Backup(cmd.Context(), cmd.OutOrStdout())
			}
			if output == "" {
				output = fmt.Sprintf("backup_%s.sql", time.Now().Format("2006-01-02_15-04-05"))
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "create backup file")
			}
			if err := s.queue.Backup(cmd.Context(), f); err != nil {
				_ = f.Close()
				_ = os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "close backup file")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Бэкап базы данных создан: %s\n", output)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `dump file, "-" for stdout (default backup_<timestamp>.sql)`)
	return cmd
}
