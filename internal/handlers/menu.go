package handlers

import (
	"context"

	"github.com/ad/go-portfolio-admin/internal/presenter"
)

const mainMenuText = "🏠 Главное меню администратора:"

func (h *PortfolioAdminHandler) showWelcome(ctx context.Context, c *call) outcome {
	caption := presenter.NewCaption().
		Text("🎉 Добро пожаловать в админ-панель Codev!").Line().Line().
		Text("👋 Привет, " + c.in.FirstName + "!").Line().
		Text("Здесь вы можете управлять портфолио проектов компании.").Line().Line().
		Text(mainMenuText)

	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline(mainMenuKeyboard())})
	return advance
}

func (h *PortfolioAdminHandler) showMainMenu(ctx context.Context, c *call) outcome {
	h.show(ctx, c, textTurn(mainMenuText, mainMenuKeyboard()))
	return advance
}

func (h *PortfolioAdminHandler) cancel(ctx context.Context, c *call) outcome {
	caption := presenter.NewCaption()
	if c.tr.Reset {
		caption.Text("❌ Действие отменено.").Line().Line()
	}
	caption.Text(mainMenuText)

	h.show(ctx, c, presenter.Turn{Caption: caption, Keyboard: inline(mainMenuKeyboard())})
	return advance
}
