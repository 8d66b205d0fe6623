package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/ad/go-portfolio-admin/internal/db"
	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/models"
	"github.com/ad/go-portfolio-admin/internal/presenter"
	"github.com/ad/go-portfolio-admin/internal/services"
	"github.com/ad/go-portfolio-admin/internal/session"
)

type botMessage struct {
	id       int
	chatID   int64
	text     string
	photo    string
	keyboard *tgmodels.InlineKeyboardMarkup
}

// fakeBot keeps the chat as Telegram would show it. Markdown text messages
// are rejected so they carry the plain rendering; photo captions are
// accepted and stored unescaped.
type fakeBot struct {
	mu       sync.Mutex
	nextID   int
	live     map[int]*botMessage
	history  []string
	photos   []string
	lastID   int
	deleted  []int
	answers  []bot.AnswerCallbackQueryParams
	editFail bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{live: map[int]*botMessage{}}
}

var errMarkdown = errors.New("Bad Request: can't parse entities")

func keyboardOf(m tgmodels.ReplyMarkup) *tgmodels.InlineKeyboardMarkup {
	if k, ok := m.(*tgmodels.InlineKeyboardMarkup); ok {
		return k
	}
	return nil
}

func chatIDOf(v any) int64 {
	id, _ := v.(int64)
	return id
}

func (f *fakeBot) SendMessage(_ context.Context, p *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ParseMode != "" {
		return nil, errMarkdown
	}
	f.nextID++
	msg := &botMessage{id: f.nextID, chatID: chatIDOf(p.ChatID), text: p.Text, keyboard: keyboardOf(p.ReplyMarkup)}
	f.live[msg.id] = msg
	f.history = append(f.history, p.Text)
	f.lastID = msg.id
	return &tgmodels.Message{ID: msg.id}, nil
}

// plainCaption strips MarkdownV2 styling and escapes from a caption.
func plainCaption(md string) string {
	var b strings.Builder
	escaped := false
	for _, r := range md {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*' || r == '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (f *fakeBot) SendPhoto(_ context.Context, p *bot.SendPhotoParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	photo, ok := p.Photo.(*tgmodels.InputFileString)
	if !ok || photo.Data == "" {
		return nil, errors.New("Bad Request: wrong file identifier")
	}
	f.nextID++
	text := plainCaption(p.Caption)
	msg := &botMessage{id: f.nextID, chatID: chatIDOf(p.ChatID), text: text, photo: photo.Data, keyboard: keyboardOf(p.ReplyMarkup)}
	f.live[msg.id] = msg
	f.history = append(f.history, text)
	f.photos = append(f.photos, photo.Data)
	f.lastID = msg.id
	return &tgmodels.Message{ID: msg.id}, nil
}

func (f *fakeBot) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ParseMode != "" {
		return nil, errMarkdown
	}
	msg, ok := f.live[p.MessageID]
	if !ok || f.editFail {
		return nil, errors.New("Bad Request: message to edit not found")
	}
	if msg.photo != "" {
		return nil, errors.New("Bad Request: there is no text in the message to edit")
	}
	msg.text = p.Text
	msg.keyboard = keyboardOf(p.ReplyMarkup)
	f.history = append(f.history, p.Text)
	f.lastID = msg.id
	return &tgmodels.Message{ID: msg.id}, nil
}

func (f *fakeBot) EditMessageMedia(_ context.Context, p *bot.EditMessageMediaParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.live[p.MessageID]
	if !ok || f.editFail {
		return nil, errors.New("Bad Request: message to edit not found")
	}
	media, ok := p.Media.(*tgmodels.InputMediaPhoto)
	if !ok {
		return nil, errors.New("Bad Request: unsupported media")
	}
	msg.text = plainCaption(media.Caption)
	msg.photo = media.Media
	msg.keyboard = keyboardOf(p.ReplyMarkup)
	f.history = append(f.history, msg.text)
	f.photos = append(f.photos, media.Media)
	f.lastID = msg.id
	return &tgmodels.Message{ID: msg.id}, nil
}

func (f *fakeBot) DeleteMessage(_ context.Context, p *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, p.MessageID)
	f.deleted = append(f.deleted, p.MessageID)
	return true, nil
}

func (f *fakeBot) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, *p)
	return true, nil
}

func (f *fakeBot) last() *botMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[f.lastID]
}

func (f *fakeBot) liveTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.live))
	for _, m := range f.live {
		out = append(out, m.text)
	}
	return out
}

func (f *fakeBot) photoCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.photos)
}

func (f *fakeBot) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

type fakeUploader struct {
	url   string
	err   error
	names []string
}

func (u *fakeUploader) Enabled() bool { return true }

func (u *fakeUploader) Upload(_ context.Context, _ []byte, name string) (string, error) {
	u.names = append(u.names, name)
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type fakeFetcher struct {
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, fileID string) ([]byte, error) {
	f.fetched = append(f.fetched, fileID)
	return []byte("jpeg"), nil
}

type harness struct {
	t        testing.TB
	ctx      context.Context
	bot      *fakeBot
	handler  *PortfolioAdminHandler
	projects *db.ProjectRepository
	settings *db.SettingsRepository
	sessions *session.MemoryStore
	uploader *fakeUploader
	fetcher  *fakeFetcher
	userMsg  int
}

func newHarness(t testing.TB, admins ...string) *harness {
	t.Helper()

	conn, dialect, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn, dialect))
	queue := db.NewDBQueue(conn)
	t.Cleanup(func() {
		queue.Close()
		_ = conn.Close()
	})

	settings := db.NewSettingsRepository(queue)
	ctx := context.Background()
	if len(admins) > 0 {
		require.NoError(t, settings.SetAdminIDs(ctx, admins))
	}

	h := &harness{
		t:        t,
		ctx:      ctx,
		bot:      newFakeBot(),
		projects: db.NewProjectRepository(queue),
		settings: settings,
		sessions: session.NewMemoryStore(),
		uploader: &fakeUploader{url: "https://i.ibb.co/x/demo.png"},
		fetcher:  &fakeFetcher{},
		userMsg:  10000,
	}
	h.handler = NewPortfolioAdminHandler(
		h.bot,
		services.NewAccessGate(settings),
		services.NewAdminRegistry(settings),
		h.projects,
		h.sessions,
		presenter.New(h.bot, settings),
		h.uploader,
		h.fetcher,
		5,
	)
	return h
}

func (h *harness) send(user int64, text string) {
	h.userMsg++
	h.handler.Handle(h.ctx, Inbound{
		ChatID:    user,
		UserID:    user,
		FirstName: "Tester",
		MessageID: h.userMsg,
		Event:     fsm.DecodeMessage(text, "", ""),
	})
}

func (h *harness) sendPhoto(user int64, fileID string) {
	h.userMsg++
	h.handler.Handle(h.ctx, Inbound{
		ChatID:    user,
		UserID:    user,
		MessageID: h.userMsg,
		Event:     fsm.DecodeMessage("", fileID, fileID+"-u"),
	})
}

// press taps the button labelled label on the most recent bot message.
func (h *harness) press(user int64, label string) {
	h.t.Helper()
	msg := h.bot.last()
	require.NotNil(h.t, msg, "no message on screen")
	require.NotNil(h.t, msg.keyboard, "message %q has no keyboard", msg.text)

	for _, r := range msg.keyboard.InlineKeyboard {
		for _, b := range r {
			if b.Text != label {
				continue
			}
			event, err := fsm.DecodeCallback(b.CallbackData)
			require.NoError(h.t, err)
			h.handler.Handle(h.ctx, Inbound{
				ChatID:     user,
				UserID:     user,
				CallbackID: "cb-" + b.CallbackData,
				Screen:     &presenter.Screen{MessageID: msg.id, HasPhoto: msg.photo != ""},
				Event:      event,
			})
			return
		}
	}
	h.t.Fatalf("button %q not found on %q", label, msg.text)
}

// tap delivers event as a button press on the most recent bot message.
func (h *harness) tap(user int64, event fsm.Event) {
	screen := &presenter.Screen{MessageID: h.bot.lastID}
	if msg := h.bot.last(); msg != nil {
		screen.HasPhoto = msg.photo != ""
	}
	h.handler.Handle(h.ctx, Inbound{
		ChatID:     user,
		UserID:     user,
		CallbackID: "cb",
		Screen:     screen,
		Event:      event,
	})
}

func (h *harness) lastText() string {
	h.t.Helper()
	msg := h.bot.last()
	require.NotNil(h.t, msg)
	return msg.text
}

func (h *harness) state(user int64) string {
	s, err := h.sessions.Get(h.ctx, models.SessionKey{ChatID: user, UserID: user})
	if errors.Is(err, session.ErrNotFound) {
		return fsm.StateIdle
	}
	require.NoError(h.t, err)
	return s.State
}

func (h *harness) admins() []string {
	ids, err := h.settings.AdminIDs(h.ctx)
	require.NoError(h.t, err)
	return ids
}

func (h *harness) allProjects() []models.Project {
	projects, err := h.projects.GetAll(h.ctx)
	require.NoError(h.t, err)
	return projects
}

func containsText(texts []string, part string) bool {
	for _, t := range texts {
		if strings.Contains(t, part) {
			return true
		}
	}
	return false
}
