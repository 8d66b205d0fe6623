package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ad/go-portfolio-admin/internal/services"
)

func newInitAdminCmd(withStore storeRunner) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "init-admin <telegram_user_id>",
		Short: "Add an administrator directly to the database",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, s *store) error {
			registry := services.NewAdminRegistry(s.settings)
			return initAdmin(cmd.Context(), registry, args[0], yes, cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation when admins already exist")
	return cmd
}

func initAdmin(ctx context.Context, registry *services.AdminRegistry, rawID string, yes bool, in io.Reader, out io.Writer) error {
	id, err := services.ValidateAdminID(rawID)
	if err != nil {
		return errors.Wrapf(err, "invalid telegram id %q", rawID)
	}

	current, err := registry.List(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 && !yes {
		fmt.Fprintf(out, "ℹ️ В системе уже есть админы: %v\n", current)
		ok, err := newPrompter(in, out).confirm("❓ Добавить нового админа?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "❌ Операция отменена.")
			return nil
		}
	}

	_, err = registry.Add(ctx, id)
	if errors.Is(err, services.ErrAdminExists) {
		fmt.Fprintf(out, "ℹ️ Пользователь с ID %s уже является администратором.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Пользователь с ID %s успешно добавлен как администратор!\n", id)
	fmt.Fprintln(out, "📱 Теперь этот пользователь может использовать команду /start в боте.")
	return nil
}
