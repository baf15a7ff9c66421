package server

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
)

// SendNotification posts a message to the configured webhook. It is a no-op
// when notifications are disabled.
func (s *Server) SendNotification(ctx context.Context, message string) {
	if s.webhookClient == nil {
		return
	}

	if _, err := s.webhookClient.CreateMessage(discord.WebhookMessageCreate{
		Content: message,
	}, rest.WithCtx(ctx)); err != nil {
		slog.ErrorContext(ctx, "Failed to send notification", slog.Any("err", err))
	}
}
