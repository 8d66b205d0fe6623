package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/models"
	"github.com/ad/go-portfolio-admin/internal/presenter"
	"github.com/ad/go-portfolio-admin/internal/session"
)

const DefaultProjectsPerPage = 10

const accessDeniedMsg = "❌ Нет доступа!"

// Transport is the part of *bot.Bot the handler talks to.
type Transport interface {
	presenter.Transport
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type Gate interface {
	IsAuthorized(ctx context.Context, userID int64) bool
	CanSelfRegister(ctx context.Context, userID int64) bool
}

type ProjectStore interface {
	GetAll(ctx context.Context) ([]models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, p models.NewProject) (int64, error)
	Update(ctx context.Context, id int64, patch models.ProjectPatch) error
	Delete(ctx context.Context, id int64) error
}

type AdminDirectory interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, id string) ([]string, error)
	Replace(ctx context.Context, oldID, newID string) ([]string, error)
	Remove(ctx context.Context, id, actorID string) ([]string, error)
}

type ImageUploader interface {
	Enabled() bool
	Upload(ctx context.Context, image []byte, name string) (string, error)
}

type PhotoFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Inbound is one user interaction decoded from a Telegram update.
type Inbound struct {
	ChatID    int64
	UserID    int64
	FirstName string
	// MessageID is the user's own message, 0 for button presses.
	MessageID int
	// Screen is the bot message whose button was pressed, nil for messages.
	Screen     *presenter.Screen
	CallbackID string
	Event      fsm.Event
}

func (in Inbound) key() models.SessionKey {
	return models.SessionKey{ChatID: in.ChatID, UserID: in.UserID}
}

type outcome int

const (
	// advance moves the session to the transition target.
	advance outcome = iota
	// stay keeps the current state, e.g. after invalid input.
	stay
	// abort drops the flow and returns to idle.
	abort
)

// call carries one interaction through an action.
type call struct {
	in    Inbound
	s     *models.Session
	tr    fsm.Transition
	shown int
	alert string
}

type actionFunc func(ctx context.Context, c *call) outcome

// PortfolioAdminHandler runs the admin panel conversation: it authorizes the
// user, looks up the transition for the current state, runs its action and
// stores the resulting session.
type PortfolioAdminHandler struct {
	transport Transport
	gate      Gate
	admins    AdminDirectory
	projects  ProjectStore
	sessions  session.Store
	presenter *presenter.Presenter
	uploader  ImageUploader
	fetcher   PhotoFetcher
	perPage   int
	actions   map[fsm.Action]actionFunc
}

func NewPortfolioAdminHandler(
	transport Transport,
	gate Gate,
	admins AdminDirectory,
	projects ProjectStore,
	sessions session.Store,
	pres *presenter.Presenter,
	uploader ImageUploader,
	fetcher PhotoFetcher,
	perPage int,
) *PortfolioAdminHandler {
	if perPage <= 0 {
		perPage = DefaultProjectsPerPage
	}

	h := &PortfolioAdminHandler{
		transport: transport,
		gate:      gate,
		admins:    admins,
		projects:  projects,
		sessions:  sessions,
		presenter: pres,
		uploader:  uploader,
		fetcher:   fetcher,
		perPage:   perPage,
	}

	h.actions = map[fsm.Action]actionFunc{
		fsm.ActShowWelcome:  h.showWelcome,
		fsm.ActShowMainMenu: h.showMainMenu,
		fsm.ActCancel:       h.cancel,
		fsm.ActNoop:         func(context.Context, *call) outcome { return advance },
		fsm.ActSelfRegister: h.selfRegister,

		fsm.ActListProjects:     h.listProjects,
		fsm.ActShowProject:      h.showProject,
		fsm.ActStartAddProject:  h.startAddProject,
		fsm.ActShowEditMenu:     h.showEditMenu,
		fsm.ActStartEditField:   h.startEditField,
		fsm.ActAskDeleteProject: h.askDeleteProject,
		fsm.ActDeleteProject:    h.deleteProject,

		fsm.ActShowAdminMenu:  h.showAdminMenu,
		fsm.ActListAdmins:     h.listAdmins,
		fsm.ActStartAddAdmin:  h.startAddAdmin,
		fsm.ActStartEditAdmin: h.startEditAdmin,
		fsm.ActAskDeleteAdmin: h.askDeleteAdmin,
		fsm.ActDeleteAdmin:    h.deleteAdmin,

		fsm.ActCollectField:  h.collectField,
		fsm.ActFinishProject: h.finishProject,
		fsm.ActSaveField:     h.saveField,
		fsm.ActSaveAdmin:     h.saveAdmin,
		fsm.ActReject:        h.reject,
	}

	return h
}

// Handle processes one interaction. It never returns an error: failures are
// logged and reported to the user.
func (h *PortfolioAdminHandler) Handle(ctx context.Context, in Inbound) {
	if in.Event == nil {
		return
	}
	c := &call{in: in}
	defer h.answer(ctx, c)

	kind := in.Event.Kind()
	if kind != fsm.KindSelfRegister && !h.gate.IsAuthorized(ctx, in.UserID) {
		h.deny(ctx, c)
		return
	}

	s, err := h.sessions.Get(ctx, in.key())
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			log.Error().Err(err).Str("session", in.key().String()).Msg("failed to load session, starting over")
		}
		s = models.NewSession(in.key(), fsm.StateIdle)
	}

	tr, ok := fsm.Lookup(s.State, kind)
	if !ok {
		log.Debug().Str("state", s.State).Str("event", string(kind)).Msg("no transition, ignoring")
		return
	}
	if tr.Reset {
		log.Info().Str("session", s.Key().String()).Str("state", s.State).Str("event", string(kind)).Msg("flow abandoned")
		s.Reset()
	}

	c.s = s
	c.tr = tr

	action, ok := h.actions[tr.Action]
	if !ok {
		log.Error().Str("action", string(tr.Action)).Msg("no handler for action")
		return
	}

	switch action(ctx, c) {
	case advance:
		s.State = tr.Next
	case abort:
		s.State = fsm.StateIdle
	}

	h.persist(ctx, c)
}

func (h *PortfolioAdminHandler) deny(ctx context.Context, c *call) {
	log.Warn().Int64("user_id", c.in.UserID).Str("event", string(c.in.Event.Kind())).Msg("unauthorized access attempt")

	if c.in.CallbackID != "" {
		c.alert = accessDeniedMsg
		return
	}
	text := accessDeniedMsg
	if _, ok := c.in.Event.(fsm.Start); ok {
		text = "❌ У вас нет доступа к этому боту.\nОбратитесь к администратору для получения доступа."
	}
	h.presenter.Send(ctx, c.in.ChatID, presenter.Turn{
		Caption:  presenter.NewCaption().Text(text),
		TextOnly: true,
	})
}

// persist stores a session that is mid-flow. An idle session is removed
// along with every tracked message except the one on display.
func (h *PortfolioAdminHandler) persist(ctx context.Context, c *call) {
	if !fsm.IsIdle(c.s.State) {
		if err := h.sessions.Save(ctx, c.s); err != nil {
			log.Error().Err(err).Str("session", c.s.Key().String()).Msg("failed to save session")
		}
		return
	}

	h.sweepExcept(ctx, c.s, c.shown)
	if err := h.sessions.Clear(ctx, c.s.Key()); err != nil {
		log.Error().Err(err).Str("session", c.s.Key().String()).Msg("failed to clear session")
	}
}

func (h *PortfolioAdminHandler) answer(ctx context.Context, c *call) {
	if c.in.CallbackID == "" {
		return
	}
	_, err := h.transport.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: c.in.CallbackID,
		Text:            c.alert,
		ShowAlert:       c.alert != "",
	})
	if err != nil {
		log.Debug().Err(err).Msg("failed to answer callback")
	}
}

// sweepExcept deletes tracked messages other than keep.
func (h *PortfolioAdminHandler) sweepExcept(ctx context.Context, s *models.Session, keep int) {
	if len(s.PendingMessageIDs) == 0 {
		return
	}
	pending := s.PendingMessageIDs[:0]
	for _, id := range s.PendingMessageIDs {
		if id != keep {
			pending = append(pending, id)
		}
	}
	s.PendingMessageIDs = pending
	h.presenter.Sweep(ctx, s, 0)
}

// show puts turn on screen: a button press replaces the pressed message, a
// typed message gets a fresh reply. Stale flow messages are removed.
func (h *PortfolioAdminHandler) show(ctx context.Context, c *call, turn presenter.Turn) int {
	var id int
	if c.in.Screen != nil {
		h.sweepExcept(ctx, c.s, c.in.Screen.MessageID)
		id = h.presenter.Render(ctx, c.in.ChatID, c.in.Screen, turn)
	} else {
		if c.s != nil {
			h.presenter.Sweep(ctx, c.s, c.in.MessageID)
		}
		id = h.presenter.Send(ctx, c.in.ChatID, turn)
	}
	c.shown = id
	return id
}

// prompt shows turn and tracks it so the next answer can clean it up.
func (h *PortfolioAdminHandler) prompt(ctx context.Context, c *call, turn presenter.Turn) {
	id := h.show(ctx, c, turn)
	h.presenter.Track(c.s, id)
}

// notify sends a standalone message that stays in the chat.
func (h *PortfolioAdminHandler) notify(ctx context.Context, c *call, text string) {
	h.presenter.Send(ctx, c.in.ChatID, presenter.Turn{Caption: presenter.NewCaption().Text(text)})
}

func textTurn(text string, keyboard [][]button) presenter.Turn {
	return presenter.Turn{
		Caption:  presenter.NewCaption().Text(text),
		Keyboard: inline(keyboard),
	}
}
