package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/presenter"
)

// InboundFromUpdate decodes a Telegram update. It reports false for updates
// the admin panel does not react to.
func InboundFromUpdate(update *tgmodels.Update) (Inbound, bool) {
	switch {
	case update.CallbackQuery != nil:
		return fromCallback(update.CallbackQuery)
	case update.Message != nil:
		return fromMessage(update.Message)
	}
	return Inbound{}, false
}

func fromMessage(msg *tgmodels.Message) (Inbound, bool) {
	if msg.From == nil {
		return Inbound{}, false
	}

	var fileID, uniqueID string
	if n := len(msg.Photo); n > 0 {
		fileID = msg.Photo[n-1].FileID
		uniqueID = msg.Photo[n-1].FileUniqueID
	}
	if fileID == "" && msg.Text == "" {
		return Inbound{}, false
	}

	return Inbound{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		MessageID: msg.ID,
		Event:     fsm.DecodeMessage(msg.Text, fileID, uniqueID),
	}, true
}

func fromCallback(cb *tgmodels.CallbackQuery) (Inbound, bool) {
	event, err := fsm.DecodeCallback(cb.Data)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", cb.From.ID).Msg("unknown callback")
		event = fsm.Noop{}
	}

	in := Inbound{
		UserID:     cb.From.ID,
		FirstName:  cb.From.FirstName,
		CallbackID: cb.ID,
		Event:      event,
	}

	switch {
	case cb.Message.Message != nil:
		msg := cb.Message.Message
		in.ChatID = msg.Chat.ID
		in.Screen = &presenter.Screen{MessageID: msg.ID, HasPhoto: len(msg.Photo) > 0}
	case cb.Message.InaccessibleMessage != nil:
		in.ChatID = cb.Message.InaccessibleMessage.Chat.ID
	default:
		in.ChatID = cb.From.ID
	}
	return in, true
}

// HandleUpdate is a bot.HandlerFunc for every update.
func (h *PortfolioAdminHandler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	in, ok := InboundFromUpdate(update)
	if !ok {
		return
	}
	h.Handle(ctx, in)
}

// Register attaches the handler to every update b receives.
func (h *PortfolioAdminHandler) Register(b *bot.Bot, middlewares ...bot.Middleware) {
	b.RegisterHandlerMatchFunc(func(*tgmodels.Update) bool {
		return true
	}, h.HandleUpdate, middlewares...)
}
