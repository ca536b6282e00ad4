package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

var (
	errAPIKeyRequired = errors.New("sendgrid api key is required")
	errFromRequired   = errors.New("sendgrid from address is required")
	errLoggerRequired = errors.New("mailer logger is required")
)

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client sends transactional email through SendGrid with a fixed sender.
type Client struct {
	sender sendClient
	from   *mail.Email
	logger *logger.Logger
}

// Message is one outbound transactional email.
type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	HTMLBody string
}

// NewClient validates the SendGrid configuration and builds the wrapper.
func NewClient(ctx context.Context, cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errFromRequired
	}

	c := &Client{
		sender: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(cfg.FromName, from),
		logger: logg,
	}

	logg.Info(ctx, "sendgrid client initialized")
	return c, nil
}

// Send delivers one templated email and maps provider rejections.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.sender == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer not configured")
	}
	to := strings.TrimSpace(msg.ToEmail)
	if to == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}

	email := mail.NewSingleEmail(c.from, msg.Subject, mail.NewEmail(msg.ToName, to), "", msg.HTMLBody)

	logCtx := c.logger.WithFields(ctx, map[string]any{
		"operation": "send_email",
		"subject":   msg.Subject,
	})

	resp, err := c.sender.SendWithContext(ctx, email)
	if err != nil {
		c.logger.Error(logCtx, "sendgrid send failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sendgrid send failed")
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid responded %d", resp.StatusCode)
		c.logger.Error(logCtx, "sendgrid send rejected", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sendgrid send rejected")
	}

	c.logger.Info(logCtx, "email dispatched")
	return nil
}
