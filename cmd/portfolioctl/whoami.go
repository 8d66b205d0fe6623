package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ad/go-portfolio-admin/internal/config"
	"github.com/ad/go-portfolio-admin/internal/services"
)

const pollTimeout = 15 * time.Second

func newWhoamiCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Run a bot that replies with the sender's Telegram id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := cfg()
			if err := c.RequireBotToken(); err != nil {
				return err
			}

			b, err := bot.New(c.BotToken,
				bot.WithHTTPClient(pollTimeout, services.BuildHTTPClient(c.HTTPTimeout())),
				bot.WithDefaultHandler(whoamiHandler),
			)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Send any message to the bot; press Ctrl+C to stop.")
			b.Start(cmd.Context())
			return nil
		},
	}
}

func whoamiHandler(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	user := update.Message.From
	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("whoami")

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   whoamiReply(user),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to reply")
	}
}

func whoamiReply(user *tgmodels.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	username := user.Username
	if username == "" {
		username = "не указан"
	}
	return fmt.Sprintf(
		"👤 Ваша информация:\n\n🆔 Telegram ID: %d\n👤 Имя: %s\n📝 Username: @%s\n\nИспользуйте этот ID для добавления себя как админа: portfolioctl init-admin %d",
		user.ID, name, username, user.ID,
	)
}
