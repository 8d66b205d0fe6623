package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newCheckCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show administrators, settings and project count",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, s *store) error {
			return check(cmd.Context(), s, cmd.OutOrStdout())
		}),
	}
}

type checkReport struct {
	admins    []string
	menuPhoto string
	projects  int
}

func collectReport(ctx context.Context, s *store) (checkReport, error) {
	var report checkReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.settings.AdminIDs(gctx)
		report.admins = ids
		return err
	})
	g.Go(func() error {
		url, err := s.settings.MenuPhoto(gctx)
		report.menuPhoto = url
		return err
	})
	g.Go(func() error {
		n, err := s.projects.Count(gctx)
		report.projects = n
		return err
	})

	return report, g.Wait()
}

func check(ctx context.Context, s *store, out io.Writer) error {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "🔍 Проверка админов в базе данных")
	fmt.Fprintln(out, rule)

	report, err := collectReport(ctx, s)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "👥 Список админов:")
	if len(report.admins) == 0 {
		fmt.Fprintln(out, "⚠️  Список админов пуст!")
		fmt.Fprintln(out, "❗ Чтобы добавить себя как админа:")
		fmt.Fprintln(out, "   1. Узнайте свой Telegram ID: portfolioctl whoami")
		fmt.Fprintln(out, "   2. Запустите: portfolioctl init-admin <id>")
	} else {
		fmt.Fprintf(out, "✅ Найдено %d админов:\n", len(report.admins))
		for i, id := range report.admins {
			fmt.Fprintf(out, "   %d. Telegram ID: %s\n", i+1, id)
		}
	}

	fmt.Fprintln(out)
	if report.menuPhoto != "" {
		fmt.Fprintf(out, "🖼️ Фото меню: %s\n", report.menuPhoto)
	} else {
		fmt.Fprintln(out, "🖼️ Фото меню: не задано")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📂 Найдено %d проектов в базе данных\n", report.projects)
	fmt.Fprintln(out, rule)
	return nil
}
