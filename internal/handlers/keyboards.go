package handlers

import (
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/models"
)

type button struct {
	text  string
	event fsm.Event
}

func row(buttons ...button) []button {
	return buttons
}

func inline(rows [][]button) *tgmodels.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	keyboard := make([][]tgmodels.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		out := make([]tgmodels.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			out = append(out, tgmodels.InlineKeyboardButton{
				Text:         b.text,
				CallbackData: fsm.EncodeCallback(b.event),
			})
		}
		keyboard = append(keyboard, out)
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

var (
	btnMainMenu = button{"🔙 В главное меню", fsm.MainMenu{}}
	btnCancel   = button{"❌ Отмена", fsm.Cancel{}}
	btnSkip     = button{"⏭️ Пропустить", fsm.Skip{}}
	btnAdmins   = button{"🔙 Назад", fsm.ManageAdmins{}}
)

func mainMenuKeyboard() [][]button {
	return [][]button{
		row(button{"📂 Просмотреть проекты", fsm.ViewProjects{Page: 0}}),
		row(button{"➕ Добавить проект", fsm.AddProject{}}),
		row(button{"🔧 Управление админами", fsm.ManageAdmins{}}),
	}
}

func backToMenuKeyboard() [][]button {
	return [][]button{row(btnMainMenu)}
}

func cancelKeyboard() [][]button {
	return [][]button{row(btnCancel)}
}

func skipCancelKeyboard() [][]button {
	return [][]button{row(btnSkip), row(btnCancel)}
}

func projectCardKeyboard(id int64) [][]button {
	return [][]button{
		row(
			button{"✏️ Редактировать", fsm.EditProject{ProjectID: id}},
			button{"🗑️ Удалить", fsm.DeleteProject{ProjectID: id}},
		),
		row(button{"🔙 К списку проектов", fsm.ViewProjects{Page: 0}}),
	}
}

func editMenuKeyboard(id int64) [][]button {
	return [][]button{
		row(button{"📝 Изменить название", fsm.EditField{ProjectID: id, Field: models.FieldTitle}}),
		row(button{"📄 Изменить описание", fsm.EditField{ProjectID: id, Field: models.FieldDescription}}),
		row(button{"🔗 Изменить ссылку", fsm.EditField{ProjectID: id, Field: models.FieldProjectURL}}),
		row(button{"🖼️ Изменить изображение", fsm.EditField{ProjectID: id, Field: models.FieldImage}}),
		row(button{"🔙 Назад к проекту", fsm.ViewProject{ProjectID: id}}),
	}
}

func afterProjectKeyboard(id int64) [][]button {
	return [][]button{
		row(button{"📄 К проекту", fsm.ViewProject{ProjectID: id}}),
		row(btnMainMenu),
	}
}

func afterDeleteKeyboard() [][]button {
	return [][]button{
		row(button{"📂 К списку проектов", fsm.ViewProjects{Page: 0}}),
		row(btnMainMenu),
	}
}

func adminMenuKeyboard() [][]button {
	return [][]button{
		row(button{"📝 Редактировать админов", fsm.ListAdmins{}}),
		row(button{"➕ Добавить админа", fsm.AddAdmin{}}),
		row(button{"🗑️ Удалить админа", fsm.ListAdmins{ForDelete: true}}),
		row(button{"🔙 Назад", fsm.MainMenu{}}),
	}
}

func backToAdminsKeyboard() [][]button {
	return [][]button{row(btnAdmins)}
}
