package mailer

import (
	"context"
	"io"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &rest.Response{StatusCode: 202}, nil
}

func newTestClient(sender sendClient) *Client {
	return &Client{
		sender: sender,
		from:   mail.NewEmail("Quote Desk", "quotes@example.com"),
		logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	if _, err := NewClient(context.Background(), config.SendgridConfig{From: "a@b.c"}, logg); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient(context.Background(), config.SendgridConfig{APIKey: "SG.x"}, logg); err == nil {
		t.Fatal("expected error for missing from address")
	}
}

func TestSendBuildsSingleEmail(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(sender)

	err := client.Send(context.Background(), Message{
		ToEmail:  "seller@example.com",
		ToName:   "Jordan",
		Subject:  "Quote received",
		HTMLBody: "<p>Thanks</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	email := sender.sent[0]
	if email.Subject != "Quote received" {
		t.Fatalf("unexpected subject %q", email.Subject)
	}
	if len(email.Personalizations) != 1 || len(email.Personalizations[0].To) != 1 {
		t.Fatalf("unexpected personalizations %+v", email.Personalizations)
	}
	if email.Personalizations[0].To[0].Address != "seller@example.com" {
		t.Fatalf("unexpected recipient %q", email.Personalizations[0].To[0].Address)
	}
}

func TestSendRejectsMissingRecipient(t *testing.T) {
	client := newTestClient(&fakeSender{})
	err := client.Send(context.Background(), Message{Subject: "x"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestSendMapsProviderRejection(t *testing.T) {
	client := newTestClient(&fakeSender{response: &rest.Response{StatusCode: 401}})
	err := client.Send(context.Background(), Message{ToEmail: "a@b.c", Subject: "x"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}
