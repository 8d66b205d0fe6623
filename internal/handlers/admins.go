package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/presenter"
	"github.com/ad/go-portfolio-admin/internal/services"
)

const (
	adminNotFoundMsg = "❌ Администратор не найден!"
	invalidIDMsg     = "❌ Ошибка!\n\nTelegram ID должен содержать только цифры.\n\n🔢 Введите корректный Telegram ID:"
)

func adminExistsMsg(id string) string {
	return "⚠️ Администратор уже существует!\n\nID " + id + " уже есть в списке администраторов."
}

// selfRegister handles /add_admin. While the registry is empty anyone may
// register; afterwards only admins may add others.
func (h *PortfolioAdminHandler) selfRegister(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.SelfRegister)
	self := strconv.FormatInt(c.in.UserID, 10)

	if !h.gate.CanSelfRegister(ctx, c.in.UserID) {
		log.Warn().Int64("user_id", c.in.UserID).Msg("rejected /add_admin from non-admin")
		h.notify(ctx, c, "❌ У вас нет прав для добавления админов!")
		return advance
	}

	target := self
	if e.Arg != "" {
		id, err := services.ValidateAdminID(e.Arg)
		if err != nil {
			h.notify(ctx, c, "❌ Неверный формат ID!")
			return advance
		}
		target = id
	}

	_, err := h.admins.Add(ctx, target)
	switch {
	case errors.Is(err, services.ErrAdminExists):
		if target == self {
			h.notify(ctx, c, "ℹ️ Вы уже являетесь админом!")
		} else {
			h.notify(ctx, c, "ℹ️ Пользователь "+target+" уже является админом!")
		}
	case err != nil:
		log.Error().Err(err).Str("admin_id", target).Msg("failed to add admin")
		h.notify(ctx, c, "❌ Ошибка при добавлении администратора.")
	case target == self:
		log.Info().Str("admin_id", target).Msg("admin self-registered")
		h.notify(ctx, c, "✅ Вы добавлены в админы!")
	default:
		log.Info().Str("admin_id", target).Int64("by", c.in.UserID).Msg("admin added")
		h.notify(ctx, c, "✅ Пользователь "+target+" добавлен в админы!")
	}
	return advance
}

func (h *PortfolioAdminHandler) listAdminIDs(ctx context.Context, c *call) ([]string, bool) {
	ids, err := h.admins.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load admins")
		h.show(ctx, c, textTurn("❌ Ошибка при загрузке администраторов.", backToMenuKeyboard()))
		return nil, false
	}
	return ids, true
}

func (h *PortfolioAdminHandler) showAdminMenu(ctx context.Context, c *call) outcome {
	ids, ok := h.listAdminIDs(ctx, c)
	if !ok {
		return advance
	}

	caption := presenter.NewCaption().
		Bold("🔧 Управление администраторами").Line().Line().
		Text("📋 Список администраторов:").Line()
	if len(ids) == 0 {
		caption.Italic("Нет администраторов").Line()
	}
	for i, id := range ids {
		caption.Text(fmt.Sprintf("%d. %s", i+1, id)).Line()
	}
	caption.Line().Text("Выберите действие:")

	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline(adminMenuKeyboard())})
	return advance
}

func (h *PortfolioAdminHandler) listAdmins(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.ListAdmins)
	ids, ok := h.listAdminIDs(ctx, c)
	if !ok {
		return advance
	}

	if e.ForDelete && len(ids) <= 1 {
		h.show(ctx, c, textTurn(
			"⚠️ Нельзя удалить единственного администратора\n\nВ системе должен остаться хотя бы один администратор.",
			backToAdminsKeyboard(),
		))
		return advance
	}

	keyboard := make([][]button, 0, len(ids)+1)
	for i, id := range ids {
		if e.ForDelete {
			keyboard = append(keyboard, row(button{fmt.Sprintf("🗑️ %d. %s", i+1, id), fsm.DeleteAdmin{AdminID: id}}))
		} else {
			keyboard = append(keyboard, row(button{fmt.Sprintf("%d. %s", i+1, id), fsm.EditAdmin{AdminID: id}}))
		}
	}
	keyboard = append(keyboard, row(btnAdmins))

	caption := presenter.NewCaption()
	if e.ForDelete {
		caption.Bold("🗑️ Удаление администратора").Line().Line().
			Text("⚠️ Внимание: Удаление администратора нельзя отменить!").Line().Line().
			Text("Выберите номер администратора для удаления:")
	} else {
		caption.Bold("📝 Редактирование администраторов").Line().Line().
			Text("Выберите администратора для изменения:")
	}

	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline(keyboard)})
	return advance
}

func (h *PortfolioAdminHandler) startAddAdmin(ctx context.Context, c *call) outcome {
	h.prompt(ctx, c, promptFor(c.s, c.tr.Next))
	return advance
}

func (h *PortfolioAdminHandler) startEditAdmin(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.EditAdmin)
	ids, ok := h.listAdminIDs(ctx, c)
	if !ok {
		return abort
	}
	if indexOf(ids, e.AdminID) < 0 {
		c.alert = adminNotFoundMsg
		return abort
	}

	c.s.AdminTarget = e.AdminID
	h.prompt(ctx, c, promptFor(c.s, c.tr.Next))
	return advance
}

func removalRefusal(err error) string {
	switch {
	case errors.Is(err, services.ErrLastAdmin):
		return "⚠️ Нельзя удалить единственного администратора\n\nВ системе должен остаться хотя бы один администратор."
	case errors.Is(err, services.ErrSelfRemoval):
		return "❌ Нельзя удалить самого себя\n\nВы не можете удалить свой собственный аккаунт администратора."
	case errors.Is(err, services.ErrAdminNotFound):
		return adminNotFoundMsg
	}
	return "❌ Ошибка при удалении администратора."
}

func (h *PortfolioAdminHandler) askDeleteAdmin(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.DeleteAdmin)
	ids, ok := h.listAdminIDs(ctx, c)
	if !ok {
		return advance
	}

	if err := services.CheckRemoval(ids, e.AdminID, strconv.FormatInt(c.in.UserID, 10)); err != nil {
		h.show(ctx, c, textTurn(removalRefusal(err), backToAdminsKeyboard()))
		return advance
	}

	caption := presenter.NewCaption().
		Bold("🗑️ Подтверждение удаления").Line().Line().
		Text("📋 Администратор: " + e.AdminID).Line().Line().
		Text("⚠️ Вы уверены, что хотите удалить этого администратора?")
	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline([][]button{
		row(
			button{"✅ Да, удалить", fsm.ConfirmDeleteAdmin{AdminID: e.AdminID}},
			button{"❌ Отмена", fsm.ListAdmins{ForDelete: true}},
		),
	})})
	return advance
}

func (h *PortfolioAdminHandler) deleteAdmin(ctx context.Context, c *call) outcome {
	e := c.in.Event.(fsm.ConfirmDeleteAdmin)

	ids, err := h.admins.Remove(ctx, e.AdminID, strconv.FormatInt(c.in.UserID, 10))
	if err != nil {
		if !errors.Is(err, services.ErrLastAdmin) && !errors.Is(err, services.ErrSelfRemoval) && !errors.Is(err, services.ErrAdminNotFound) {
			log.Error().Err(err).Str("admin_id", e.AdminID).Msg("failed to remove admin")
		}
		h.show(ctx, c, textTurn(removalRefusal(err), backToAdminsKeyboard()))
		return advance
	}

	log.Info().Str("admin_id", e.AdminID).Int64("by", c.in.UserID).Msg("admin removed")
	text := fmt.Sprintf("✅ Администратор удален!\n\n🗑️ Удален: %s\n\n📊 Осталось администраторов: %d", e.AdminID, len(ids))
	h.show(ctx, c, textTurn(text, backToAdminsKeyboard()))
	return advance
}

// saveAdmin handles the id typed in the add and edit admin flows. Invalid
// input keeps the flow waiting and never touches the registry.
func (h *PortfolioAdminHandler) saveAdmin(ctx context.Context, c *call) outcome {
	body := c.in.Event.(fsm.Text).Body

	id, err := services.ValidateAdminID(body)
	if err != nil {
		turn := promptFor(c.s, c.s.State)
		turn.Caption = presenter.NewCaption().Text(invalidIDMsg)
		h.prompt(ctx, c, turn)
		return stay
	}

	h.presenter.Sweep(ctx, c.s, c.in.MessageID)

	var text string
	if c.s.State == fsm.StateAddingAdmin {
		_, err = h.admins.Add(ctx, id)
		text = "✅ Администратор добавлен!\n\n🆕 Новый админ: " + id
	} else {
		_, err = h.admins.Replace(ctx, c.s.AdminTarget, id)
		text = "✅ Администратор обновлен!\n\n🔄 Изменено: " + c.s.AdminTarget + " → " + id
	}

	switch {
	case errors.Is(err, services.ErrAdminExists):
		text = adminExistsMsg(id)
	case errors.Is(err, services.ErrAdminNotFound):
		text = adminNotFoundMsg
	case err != nil:
		log.Error().Err(err).Str("admin_id", id).Msg("failed to save admin")
		text = "❌ Ошибка при сохранении администратора."
	default:
		log.Info().Str("admin_id", id).Int64("by", c.in.UserID).Str("state", c.s.State).Msg("admin registry changed")
	}

	c.shown = h.presenter.Send(ctx, c.in.ChatID, presenter.Turn{
		Caption:  presenter.NewCaption().Text(text),
		Keyboard: inline(backToAdminsKeyboard()),
	})
	return advance
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
