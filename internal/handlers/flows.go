package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/db"
	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/models"
	"github.com/ad/go-portfolio-admin/internal/presenter"
	"github.com/ad/go-portfolio-admin/internal/services"
)

const resultPreview = 100

var collectPrompts = map[models.Field]string{
	models.FieldTitle:       "📝 Введите название проекта:",
	models.FieldDescription: "📝 Введите описание проекта (или отправьте /skip чтобы пропустить):",
	models.FieldProjectURL:  "🔗 Введите ссылку на проект (или отправьте /skip чтобы пропустить):",
	models.FieldImage:       "📎 Отправьте изображение проекта (фото) или /skip чтобы пропустить:",
}

type fieldTexts struct {
	heading string
	prompt  string
	done    string
	failed  string
}

var editTexts = map[models.Field]fieldTexts{
	models.FieldTitle: {
		heading: "✏️ Редактирование названия",
		prompt:  "📝 Введите новое название проекта:",
		done:    "✅ Название проекта обновлено!",
		failed:  "❌ Ошибка при обновлении названия.",
	},
	models.FieldDescription: {
		heading: "✏️ Редактирование описания",
		prompt:  "📄 Введите новое описание проекта:",
		done:    "✅ Описание проекта обновлено!",
		failed:  "❌ Ошибка при обновлении описания.",
	},
	models.FieldProjectURL: {
		heading: "✏️ Редактирование ссылки",
		prompt:  "🔗 Введите новую ссылку на проект:",
		done:    "✅ Ссылка на проект обновлена!",
		failed:  "❌ Ошибка при обновлении ссылки.",
	},
	models.FieldImage: {
		heading: "✏️ Редактирование изображения",
		prompt:  "🖼️ Отправьте новое изображение проекта (фото):",
		done:    "✅ Изображение проекта обновлено!",
		failed:  "❌ Ошибка при обновлении изображения.",
	},
}

// promptFor rebuilds the question asked in a flow state.
func promptFor(s *models.Session, state string) presenter.Turn {
	if field, ok := fsm.CollectedField(state); ok {
		caption := presenter.Progress(s.Fields, field).Line().Text(collectPrompts[field])
		keyboard := skipCancelKeyboard()
		if field == models.FieldTitle {
			keyboard = cancelKeyboard()
		}
		return presenter.Turn{Caption: caption, Keyboard: inline(keyboard)}
	}

	if field, ok := fsm.EditedField(state); ok {
		texts := editTexts[field]
		caption := presenter.NewCaption().Bold(texts.heading).Line().Line().Text(texts.prompt)
		return presenter.Turn{Caption: caption, Keyboard: inline(cancelKeyboard())}
	}

	switch state {
	case fsm.StateAddingAdmin:
		caption := presenter.NewCaption().Bold("➕ Добавление администратора").Line().Line().
			Text("🔢 Введите Telegram ID нового администратора:")
		return presenter.Turn{Caption: caption, Keyboard: inline(cancelKeyboard())}
	case fsm.StateEditingAdmin:
		caption := presenter.NewCaption().Bold("📝 Редактирование администратора").Line().Line().
			Text("📋 Текущий ID: " + s.AdminTarget).Line().Line().
			Text("🔢 Введите новый Telegram ID:")
		return presenter.Turn{Caption: caption, Keyboard: inline(cancelKeyboard())}
	}

	return textTurn(mainMenuText, mainMenuKeyboard())
}

func (h *PortfolioAdminHandler) startAddProject(ctx context.Context, c *call) outcome {
	c.s.Fields = nil
	h.prompt(ctx, c, promptFor(c.s, c.tr.Next))
	return advance
}

func (h *PortfolioAdminHandler) startEditField(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.EditField)
	if _, ok := h.loadProject(ctx, c, e.ProjectID); !ok {
		return abort
	}

	c.s.SubjectID = e.ProjectID
	h.prompt(ctx, c, promptFor(c.s, c.tr.Next))
	return advance
}

// inputValue returns the text of a text event and nil for /skip.
func inputValue(e fsm.Event) *string {
	if t, ok := e.(fsm.Text); ok {
		return models.StringPtr(t.Body)
	}
	return nil
}

func (h *PortfolioAdminHandler) collectField(ctx context.Context, c *call) outcome {
	field, _ := fsm.CollectedField(c.s.State)
	c.s.Resolve(field, inputValue(c.in.Event))

	h.prompt(ctx, c, promptFor(c.s, c.tr.Next))
	return advance
}

// uploadPhoto downloads a photo from Telegram and re-hosts it.
func (h *PortfolioAdminHandler) uploadPhoto(ctx context.Context, c *call, photo fsm.Photo) (string, error) {
	if h.uploader == nil || !h.uploader.Enabled() {
		return "", services.ErrUploaderDisabled
	}

	status := h.presenter.Send(ctx, c.in.ChatID, presenter.Turn{Caption: presenter.NewCaption().Text("📤 Загрузка изображения...")})
	h.presenter.Track(c.s, status)
	defer h.presenter.Sweep(ctx, c.s, 0)

	data, err := h.fetcher.Fetch(ctx, photo.FileID)
	if err != nil {
		return "", err
	}
	name := "project_" + strconv.FormatInt(c.in.UserID, 10) + "_" + uuid.NewString()
	return h.uploader.Upload(ctx, data, name)
}

func (h *PortfolioAdminHandler) finishProject(ctx context.Context, c *call) outcome {
	h.presenter.Sweep(ctx, c.s, c.in.MessageID)

	var image *string
	if photo, ok := c.in.Event.(fsm.Photo); ok {
		url, err := h.uploadPhoto(ctx, c, photo)
		if err != nil {
			log.Error().Err(err).Int64("user_id", c.in.UserID).Msg("image upload failed, creating project without image")
			h.notify(ctx, c, "❌ Ошибка загрузки изображения\n\nНе удалось загрузить изображение. Проект будет создан без изображения.")
		} else {
			image = &url
		}
	}
	c.s.Resolve(models.FieldImage, image)

	project := models.NewProject{ImageURL: image}
	if title, _ := c.s.Value(models.FieldTitle); title != nil {
		project.Title = *title
	}
	project.Description, _ = c.s.Value(models.FieldDescription)
	project.ProjectURL, _ = c.s.Value(models.FieldProjectURL)

	id, err := h.projects.Create(ctx, project)
	if err != nil {
		log.Error().Err(err).Msg("failed to create project")
		c.shown = h.presenter.Send(ctx, c.in.ChatID, textTurn("❌ Произошла ошибка при добавлении проекта.", backToMenuKeyboard()))
		return advance
	}
	log.Info().Int64("project_id", id).Int64("user_id", c.in.UserID).Msg("project created")

	caption := presenter.NewCaption().Bold("✅ Проект успешно добавлен!").Line().Line().
		Text(fmt.Sprintf("🆔 ID: %d", id)).Line().
		Text("📄 Название: " + project.Title).Line()
	if project.Description != nil {
		caption.Text("📝 Описание: " + presenter.Truncate(*project.Description, resultPreview)).Line()
	}
	if project.ProjectURL != nil {
		caption.Text("🔗 Ссылка: " + *project.ProjectURL).Line()
	}
	if project.ImageURL != nil {
		caption.Text("🖼️ Изображение: загружено").Line()
	}

	c.shown = h.presenter.Send(ctx, c.in.ChatID, presenter.Turn{
		Caption:  caption,
		Keyboard: inline(afterProjectKeyboard(id)),
	})
	return advance
}

func (h *PortfolioAdminHandler) saveField(ctx context.Context, c *call) outcome {
	field, _ := fsm.EditedField(c.s.State)
	texts := editTexts[field]
	projectID := c.s.SubjectID

	h.presenter.Sweep(ctx, c.s, c.in.MessageID)

	var value string
	switch e := c.in.Event.(type) {
	case fsm.Text:
		value = e.Body
	case fsm.Photo:
		url, err := h.uploadPhoto(ctx, c, e)
		if err != nil {
			log.Error().Err(err).Int64("project_id", projectID).Msg("image upload failed")
			c.shown = h.presenter.Send(ctx, c.in.ChatID, textTurn(
				"❌ Ошибка загрузки изображения\n\nНе удалось загрузить изображение. Попробуйте еще раз позже.",
				afterProjectKeyboard(projectID),
			))
			return advance
		}
		value = url
	}

	err := h.projects.Update(ctx, projectID, field.Patch(value))
	if err != nil {
		text := texts.failed
		if errors.Is(err, db.ErrProjectNotFound) {
			text = projectNotFoundMsg
		} else {
			log.Error().Err(err).Int64("project_id", projectID).Str("field", string(field)).Msg("failed to update project")
		}
		c.shown = h.presenter.Send(ctx, c.in.ChatID, textTurn(text, backToMenuKeyboard()))
		return advance
	}
	log.Info().Int64("project_id", projectID).Str("field", string(field)).Msg("project updated")

	caption := presenter.NewCaption().Bold(texts.done)
	switch field {
	case models.FieldTitle:
		caption.Line().Line().Text("📄 Новое название: " + value)
	case models.FieldDescription:
		caption.Line().Line().Text("📝 Новое описание: " + presenter.Truncate(value, resultPreview))
	case models.FieldProjectURL:
		caption.Line().Line().Text("🔗 Новая ссылка: " + value)
	}

	c.shown = h.presenter.Send(ctx, c.in.ChatID, presenter.Turn{
		Caption:  caption,
		Keyboard: inline(afterProjectKeyboard(projectID)),
	})
	return advance
}

// reject explains why the input does not fit the current state and asks again.
func (h *PortfolioAdminHandler) reject(ctx context.Context, c *call) outcome {
	state := c.s.State
	caption := presenter.NewCaption()

	_, isPhoto := c.in.Event.(fsm.Photo)
	editedField, _ := fsm.EditedField(state)

	switch {
	case state == fsm.StateAwaitingImage || editedField == models.FieldImage:
		caption.Bold("❌ Неверный формат").Line().Line().
			Text("Пожалуйста, отправьте изображение как фото, а не как ссылку.")
	case isPhoto:
		caption.Bold("❌ Неверный формат").Line().Line().
			Text("Ожидается текстовое сообщение.")
	default:
		caption.Bold("⚠️ Это поле нельзя пропустить.")
	}

	turn := promptFor(c.s, state)
	turn.Caption = caption.Line().Line().Append(turn.Caption)
	h.prompt(ctx, c, turn)
	return stay
}
