package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/usecase"
	"github.com/vasapolrittideah/linkbridge/shared/mailer"
)

// MailAlerter emails operators about conditions users cannot fix themselves.
// Sends happen in the background so a slow SMTP server never delays a response.
type MailAlerter struct {
	logger     *zerolog.Logger
	sender     mailer.Sender
	recipients []string

	wg sync.WaitGroup
}

// NewMailAlerter creates a MailAlerter that sends to recipients.
func NewMailAlerter(logger *zerolog.Logger, sender mailer.Sender, recipients []string) *MailAlerter {
	return &MailAlerter{
		logger:     logger,
		sender:     sender,
		recipients: recipients,
	}
}

func (a *MailAlerter) Alert(_ context.Context, alert usecase.Alert) {
	email := mailer.Email{
		To:      a.recipients,
		Subject: subjectFor(alert.Kind),
		Body:    bodyFor(alert),
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.sender.Send(email); err != nil {
			a.logger.Error().Err(err).Str("alert", string(alert.Kind)).Msg("failed to send operator alert")
		}
	}()
}

// Close waits for alerts that are still being sent.
func (a *MailAlerter) Close() {
	a.wg.Wait()
}

func subjectFor(kind usecase.AlertKind) string {
	switch kind {
	case usecase.AlertLinkedRoleGrantFailed:
		return "[link-service] role grant failed after link"
	case usecase.AlertRoleUnavailable:
		return "[link-service] authorization role is not resolvable"
	case usecase.AlertGrantFailed:
		return "[link-service] role reconciliation failed"
	default:
		return "[link-service] " + string(kind)
	}
}

func bodyFor(alert usecase.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "condition: %s\n", alert.Kind)
	fmt.Fprintf(&b, "identity: %s\n", alert.Identity)
	if alert.AccountID != "" {
		fmt.Fprintf(&b, "account: %s\n", alert.AccountID)
	}
	if alert.Err != nil {
		fmt.Fprintf(&b, "error: %v\n", alert.Err)
	}
	if alert.Kind == usecase.AlertRoleUnavailable {
		b.WriteString("\nCheck DISCORD_GUILD_ID and DISCORD_ROLE_ID and the bot's permissions.\n")
	} else {
		b.WriteString("\nThe link is stored. The member can retry with reconcile.\n")
	}
	return b.String()
}
