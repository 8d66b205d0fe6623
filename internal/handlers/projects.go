package handlers

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/db"
	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/models"
	"github.com/ad/go-portfolio-admin/internal/presenter"
)

const (
	createdAtLayout    = "02.01.2006 15:04"
	projectNotFoundMsg = "❌ Проект не найден!"
)

func (h *PortfolioAdminHandler) listProjects(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.ViewProjects)

	projects, err := h.projects.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load projects")
		h.show(ctx, c, textTurn("❌ Ошибка при загрузке проектов.", backToMenuKeyboard()))
		return advance
	}

	if len(projects) == 0 {
		h.show(ctx, c, textTurn("📂 Список проектов пуст.\nДобавьте первый проект!", [][]button{
			row(button{"➕ Добавить проект", fsm.AddProject{}}),
			row(btnMainMenu),
		}))
		return advance
	}

	pages := (len(projects) + h.perPage - 1) / h.perPage
	page := e.Page
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * h.perPage
	end := start + h.perPage
	if end > len(projects) {
		end = len(projects)
	}

	keyboard := make([][]button, 0, end-start+2)
	for _, p := range projects[start:end] {
		keyboard = append(keyboard, row(button{"📄 " + presenter.Truncate(p.Title, 40), fsm.ViewProject{ProjectID: p.ID}}))
	}
	if pages > 1 {
		nav := []button{}
		if page > 0 {
			nav = append(nav, button{"⬅️ Назад", fsm.ViewProjects{Page: page - 1}})
		}
		nav = append(nav, button{fmt.Sprintf("%d/%d", page+1, pages), fsm.Noop{}})
		if page < pages-1 {
			nav = append(nav, button{"Вперед ➡️", fsm.ViewProjects{Page: page + 1}})
		}
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard, row(button{"🔙 Назад", fsm.MainMenu{}}))

	text := fmt.Sprintf("📂 Список проектов (%d шт.)\nСтраница %d из %d:", len(projects), page+1, pages)
	h.show(ctx, c, textTurn(text, keyboard))
	return advance
}

// loadProject fetches a project for a button press, raising an alert when it
// is gone.
func (h *PortfolioAdminHandler) loadProject(ctx context.Context, c *call, id int64) (*models.Project, bool) {
	project, err := h.projects.GetByID(ctx, id)
	if err == nil {
		return project, true
	}
	if !errors.Is(err, db.ErrProjectNotFound) {
		log.Error().Err(err).Int64("project_id", id).Msg("failed to load project")
	}
	if c.in.CallbackID != "" {
		c.alert = projectNotFoundMsg
	} else {
		h.notify(ctx, c, projectNotFoundMsg)
	}
	return nil, false
}

// cardDescriptionLimit keeps a card within a photo caption in the usual case
// and always within a text message.
const cardDescriptionLimit = 800

func projectCard(p *models.Project) *presenter.Caption {
	c := presenter.NewCaption().Bold("📄 " + p.Title).Line().Line()
	if p.Description != nil && *p.Description != "" {
		c.Text("📝 Описание:").Line().Text(presenter.Truncate(*p.Description, cardDescriptionLimit)).Line().Line()
	}
	if p.ProjectURL != nil && *p.ProjectURL != "" {
		c.Text("🔗 Ссылка на проект: " + *p.ProjectURL).Line().Line()
	}
	c.Text("📅 Создан: " + p.CreatedAt.Format(createdAtLayout))
	return c
}

func (h *PortfolioAdminHandler) showProject(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.ViewProject)
	project, ok := h.loadProject(ctx, c, e.ProjectID)
	if !ok {
		return advance
	}

	turn := presenter.Turn{
		Caption:  projectCard(project),
		Keyboard: inline(projectCardKeyboard(project.ID)),
	}
	if project.ImageURL != nil {
		turn.PhotoURL = *project.ImageURL
	}
	h.show(ctx, c, turn)
	return advance
}

func (h *PortfolioAdminHandler) showEditMenu(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.EditProject)
	project, ok := h.loadProject(ctx, c, e.ProjectID)
	if !ok {
		return advance
	}

	caption := presenter.NewCaption().
		Bold("✏️ Редактирование проекта").Line().Line().
		Text("📄 " + project.Title).Line().Line().
		Text("Выберите что хотите изменить:")
	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline(editMenuKeyboard(project.ID))})
	return advance
}

func (h *PortfolioAdminHandler) askDeleteProject(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.DeleteProject)
	project, ok := h.loadProject(ctx, c, e.ProjectID)
	if !ok {
		return advance
	}

	caption := presenter.NewCaption().
		Bold("🗑️ Удаление проекта").Line().Line().
		Text("📄 " + project.Title).Line().Line().
		Text("⚠️ Вы уверены, что хотите удалить этот проект?").Line().
		Text("Это действие нельзя отменить!")
	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline([][]button{
		row(
			button{"✅ Да, удалить", fsm.ConfirmDeleteProject{ProjectID: project.ID}},
			button{"❌ Отмена", fsm.ViewProject{ProjectID: project.ID}},
		),
	})})
	return advance
}

func (h *PortfolioAdminHandler) deleteProject(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.ConfirmDeleteProject)

	if err := h.projects.Delete(ctx, e.ProjectID); err != nil {
		log.Error().Err(err).Int64("project_id", e.ProjectID).Msg("failed to delete project")
		h.show(ctx, c, textTurn("❌ Ошибка при удалении проекта.", afterDeleteKeyboard()))
		return advance
	}

	log.Info().Int64("project_id", e.ProjectID).Int64("user_id", c.in.UserID).Msg("project deleted")
	h.show(ctx, c, textTurn("✅ Проект успешно удален!", afterDeleteKeyboard()))
	return advance
}
