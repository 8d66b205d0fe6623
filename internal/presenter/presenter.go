package presenter

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/models"
)

const captionLimit = 1024

// Transport is the part of *bot.Bot the presenter needs.
type Transport interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*tgmodels.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*tgmodels.Message, error)
	EditMessageMedia(ctx context.Context, params *bot.EditMessageMediaParams) (*tgmodels.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// MenuPhotoSource returns the configured menu photo URL, empty when unset.
type MenuPhotoSource interface {
	MenuPhoto(ctx context.Context) (string, error)
}

// Screen describes the message a turn replaces.
type Screen struct {
	MessageID int
	HasPhoto  bool
}

type Turn struct {
	Caption  *Caption
	Keyboard *tgmodels.InlineKeyboardMarkup
	// PhotoURL overrides the menu photo, e.g. with a project's own image.
	PhotoURL string
	TextOnly bool
}

type Presenter struct {
	transport Transport
	photos    MenuPhotoSource
}

func New(transport Transport, photos MenuPhotoSource) *Presenter {
	return &Presenter{transport: transport, photos: photos}
}

func (p *Presenter) photoFor(ctx context.Context, turn Turn) string {
	if turn.TextOnly {
		return ""
	}
	if turn.PhotoURL != "" {
		return turn.PhotoURL
	}
	if p.photos == nil {
		return ""
	}
	url, err := p.photos.MenuPhoto(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load menu photo")
		return ""
	}
	return url
}

// Render shows turn in place of screen and returns the id of the message now
// on display, or 0 when nothing could be delivered. A nil screen sends a new
// message. Failures degrade to simpler renderings and are only logged.
func (p *Presenter) Render(ctx context.Context, chatID int64, screen *Screen, turn Turn) int {
	photo := p.photoFor(ctx, turn)
	if screen == nil || screen.MessageID == 0 {
		return p.send(ctx, chatID, turn, photo)
	}

	wantPhoto := photo != "" && fitsCaption(turn.Caption)

	switch {
	case wantPhoto && screen.HasPhoto:
		_, err := p.transport.EditMessageMedia(ctx, &bot.EditMessageMediaParams{
			ChatID:    chatID,
			MessageID: screen.MessageID,
			Media: &tgmodels.InputMediaPhoto{
				Media:     photo,
				Caption:   turn.Caption.Markdown(),
				ParseMode: tgmodels.ParseModeMarkdown,
			},
			ReplyMarkup: markup(turn.Keyboard),
		})
		if err == nil || isNotModified(err) {
			return screen.MessageID
		}
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to edit media, falling back to text")
		p.delete(ctx, chatID, screen.MessageID)
		return p.sendText(ctx, chatID, turn)

	case wantPhoto != screen.HasPhoto:
		p.delete(ctx, chatID, screen.MessageID)
		return p.send(ctx, chatID, turn, photo)
	}

	_, err := p.transport.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   screen.MessageID,
		Text:        turn.Caption.Markdown(),
		ParseMode:   tgmodels.ParseModeMarkdown,
		ReplyMarkup: markup(turn.Keyboard),
	})
	if err == nil || isNotModified(err) {
		return screen.MessageID
	}
	log.Debug().Err(err).Int64("chat_id", chatID).Msg("markdown edit failed, retrying as plain text")

	_, err = p.transport.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   screen.MessageID,
		Text:        turn.Caption.Plain(),
		ReplyMarkup: markup(turn.Keyboard),
	})
	if err == nil || isNotModified(err) {
		return screen.MessageID
	}
	log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to edit message, sending a new one")

	return p.sendText(ctx, chatID, turn)
}

// Send delivers turn as a new message and returns its id, or 0.
func (p *Presenter) Send(ctx context.Context, chatID int64, turn Turn) int {
	return p.send(ctx, chatID, turn, p.photoFor(ctx, turn))
}

func (p *Presenter) send(ctx context.Context, chatID int64, turn Turn, photo string) int {
	if photo != "" && fitsCaption(turn.Caption) {
		msg, err := p.transport.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       &tgmodels.InputFileString{Data: photo},
			Caption:     turn.Caption.Markdown(),
			ParseMode:   tgmodels.ParseModeMarkdown,
			ReplyMarkup: markup(turn.Keyboard),
		})
		if err == nil && msg != nil {
			return msg.ID
		}
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send photo, falling back to text")
	}
	return p.sendText(ctx, chatID, turn)
}

func (p *Presenter) sendText(ctx context.Context, chatID int64, turn Turn) int {
	msg, err := p.transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        turn.Caption.Markdown(),
		ParseMode:   tgmodels.ParseModeMarkdown,
		ReplyMarkup: markup(turn.Keyboard),
	})
	if err == nil && msg != nil {
		return msg.ID
	}
	log.Debug().Err(err).Int64("chat_id", chatID).Msg("markdown send failed, retrying as plain text")

	msg, err = p.transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        turn.Caption.Plain(),
		ReplyMarkup: markup(turn.Keyboard),
	})
	if err == nil && msg != nil {
		return msg.ID
	}
	log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	return 0
}

// Track registers a bot message for removal by the next Sweep.
func (p *Presenter) Track(session *models.Session, messageID int) {
	if messageID <= 0 {
		return
	}
	session.PendingMessageIDs = append(session.PendingMessageIDs, messageID)
}

// Sweep deletes the user's message and every tracked bot message, then
// forgets them. Deletion failures are ignored.
func (p *Presenter) Sweep(ctx context.Context, session *models.Session, userMessageID int) {
	if userMessageID > 0 {
		p.delete(ctx, session.ChatID, userMessageID)
	}
	for _, id := range session.PendingMessageIDs {
		p.delete(ctx, session.ChatID, id)
	}
	session.PendingMessageIDs = nil
}

func (p *Presenter) delete(ctx context.Context, chatID int64, messageID int) {
	_, err := p.transport.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("failed to delete message")
	}
}

// markup keeps a nil keyboard from reaching the API as a typed nil.
func markup(keyboard *tgmodels.InlineKeyboardMarkup) tgmodels.ReplyMarkup {
	if keyboard == nil {
		return nil
	}
	return keyboard
}

func fitsCaption(c *Caption) bool {
	return utf16Length(c.Plain()) <= captionLimit
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
