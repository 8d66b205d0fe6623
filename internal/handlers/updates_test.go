package handlers

import (
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad/go-portfolio-admin/internal/fsm"
	"github.com/ad/go-portfolio-admin/internal/models"
)

func TestInboundFromTextMessage(t *testing.T) {
	in, ok := InboundFromUpdate(&tgmodels.Update{Message: &tgmodels.Message{
		ID:   77,
		Chat: tgmodels.Chat{ID: 10},
		From: &tgmodels.User{ID: 20, FirstName: "Ann"},
		Text: "/add_admin@portfolio_bot 42",
	}})

	require.True(t, ok)
	assert.Equal(t, int64(10), in.ChatID)
	assert.Equal(t, int64(20), in.UserID)
	assert.Equal(t, "Ann", in.FirstName)
	assert.Equal(t, 77, in.MessageID)
	assert.Nil(t, in.Screen)
	assert.Equal(t, fsm.SelfRegister{Arg: "42"}, in.Event)
}

func TestInboundFromPhotoUsesLargestSize(t *testing.T) {
	in, ok := InboundFromUpdate(&tgmodels.Update{Message: &tgmodels.Message{
		ID:   1,
		Chat: tgmodels.Chat{ID: 10},
		From: &tgmodels.User{ID: 20},
		Photo: []tgmodels.PhotoSize{
			{FileID: "small", FileUniqueID: "s"},
			{FileID: "large", FileUniqueID: "l"},
		},
	}})

	require.True(t, ok)
	assert.Equal(t, fsm.Photo{FileID: "large", FileUniqueID: "l"}, in.Event)
}

func TestInboundIgnoresEmptyMessages(t *testing.T) {
	_, ok := InboundFromUpdate(&tgmodels.Update{Message: &tgmodels.Message{
		Chat: tgmodels.Chat{ID: 10},
		From: &tgmodels.User{ID: 20},
	}})
	assert.False(t, ok)

	_, ok = InboundFromUpdate(&tgmodels.Update{Message: &tgmodels.Message{Text: "hi"}})
	assert.False(t, ok)

	_, ok = InboundFromUpdate(&tgmodels.Update{})
	assert.False(t, ok)
}

func TestInboundFromCallback(t *testing.T) {
	in, ok := InboundFromUpdate(&tgmodels.Update{CallbackQuery: &tgmodels.CallbackQuery{
		ID:   "cb1",
		From: tgmodels.User{ID: 20},
		Data: fsm.EncodeCallback(fsm.EditField{ProjectID: 3, Field: models.FieldImage}),
		Message: tgmodels.MaybeInaccessibleMessage{
			Message: &tgmodels.Message{
				ID:    55,
				Chat:  tgmodels.Chat{ID: 10},
				Photo: []tgmodels.PhotoSize{{FileID: "menu"}},
			},
		},
	}})

	require.True(t, ok)
	assert.Equal(t, "cb1", in.CallbackID)
	assert.Equal(t, int64(10), in.ChatID)
	require.NotNil(t, in.Screen)
	assert.Equal(t, 55, in.Screen.MessageID)
	assert.True(t, in.Screen.HasPhoto)
	assert.Equal(t, fsm.EditField{ProjectID: 3, Field: models.FieldImage}, in.Event)
}

func TestInboundFromUnknownCallbackIsNoop(t *testing.T) {
	in, ok := InboundFromUpdate(&tgmodels.Update{CallbackQuery: &tgmodels.CallbackQuery{
		ID:   "cb2",
		From: tgmodels.User{ID: 20},
		Data: "settings_backup",
	}})

	require.True(t, ok)
	assert.Equal(t, fsm.Noop{}, in.Event)
	assert.Equal(t, int64(20), in.ChatID)
	assert.Nil(t, in.Screen)
}
