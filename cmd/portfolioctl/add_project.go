package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ad/go-portfolio-admin/internal/models"
)

var errTitleRequired = errors.New("title is required")

type projectInput struct {
	title       string
	description string
	projectURL  string
	imageURL    string
}

func (p projectInput) newProject() models.NewProject {
	return models.NewProject{
		Title:       strings.TrimSpace(p.title),
		Description: optional(p.description),
		ProjectURL:  optional(p.projectURL),
		ImageURL:    optional(p.imageURL),
	}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func orDash(s *string) string {
	if s == nil {
		return "(не указано)"
	}
	return *s
}

func newAddProjectCmd(withStore storeRunner) *cobra.Command {
	var (
		input projectInput
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "add-project",
		Short: "Add a project from flags or interactive prompts",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, s *store) error {
			interactive := !cmd.Flags().Changed("title")
			return addProject(cmd.Context(), s, input, interactive, yes, cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
	cmd.Flags().StringVar(&input.title, "title", "", "project title")
	cmd.Flags().StringVar(&input.description, "description", "", "project description")
	cmd.Flags().StringVar(&input.projectURL, "url", "", "project link")
	cmd.Flags().StringVar(&input.imageURL, "image", "", "image URL")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func addProject(ctx context.Context, s *store, input projectInput, interactive, yes bool, in io.Reader, out io.Writer) error {
	p := newPrompter(in, out)

	if interactive {
		var err error
		fields := []struct {
			dst      *string
			question string
		}{
			{&input.title, "📄 Введите название проекта: "},
			{&input.description, "📝 Введите описание проекта (Enter для пропуска): "},
			{&input.projectURL, "🔗 Введите ссылку на проект (Enter для пропуска): "},
			{&input.imageURL, "🖼️  Введите ссылку на изображение (Enter для пропуска): "},
		}
		for i, f := range fields {
			if *f.dst, err = p.ask(f.question); err != nil {
				return err
			}
			if i == 0 && strings.TrimSpace(input.title) == "" {
				return errTitleRequired
			}
		}
	}

	project := input.newProject()
	if project.Title == "" {
		return errTitleRequired
	}

	if !yes {
		rule := strings.Repeat("-", 60)
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, "Проверьте данные:")
		fmt.Fprintf(out, "  Название: %s\n", project.Title)
		fmt.Fprintf(out, "  Описание: %s\n", orDash(project.Description))
		fmt.Fprintf(out, "  Ссылка: %s\n", orDash(project.ProjectURL))
		fmt.Fprintf(out, "  Изображение: %s\n", orDash(project.ImageURL))
		fmt.Fprintln(out, rule)

		ok, err := p.confirm("✅ Добавить проект?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "❌ Отменено")
			return nil
		}
	}

	id, err := s.projects.Create(ctx, project)
	if err != nil {
		return err
	}
	stored, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "✅ Проект успешно добавлен!")
	fmt.Fprintf(out, "  🆔 ID: %d\n", stored.ID)
	fmt.Fprintf(out, "  📄 Название: %s\n", stored.Title)
	fmt.Fprintf(out, "  📅 Создан: %s\n", stored.CreatedAt.Format("02.01.2006 15:04"))
	return nil
}
