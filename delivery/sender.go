// ABOUTME: Outbound email sender abstraction and Gmail implementation
// ABOUTME: Sends scheduled emails through the Gmail API with RFC 2822 framing
package delivery

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/profitum/outreach/models"
)

// Sender delivers one scheduled email to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, email *models.ScheduledEmail) error
}

// GmailSender sends through the authenticated user's Gmail account.
type GmailSender struct {
	service *gmail.Service
	from    string
}

// NewGmailSender builds a sender from a stored OAuth token. The from
// address appears in the message header; Gmail enforces that it belongs to
// the authenticated account.
func NewGmailSender(ctx context.Context, token *oauth2.Token, from string) (*GmailSender, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	if from == "" {
		return nil, fmt.Errorf("from address cannot be empty")
	}

	config := NewOAuthConfig()
	client := config.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailSender{service: service, from: from}, nil
}

// Send composes and sends one message.
func (g *GmailSender) Send(ctx context.Context, to string, email *models.ScheduledEmail) error {
	if to == "" {
		return fmt.Errorf("recipient address cannot be empty")
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		g.from, to, email.Subject, email.Body)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := g.service.Users.Messages.Send("me", message).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
