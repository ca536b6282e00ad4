package tasks

import (
	"fmt"
	"html"
	"strings"

	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	"github.com/quotedesk/quotedesk-backend/pkg/mailer"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
)

const (
	subjectQuoteConfirm   = "We received your quote request"
	subjectLabelReady     = "Your shipping label is ready"
	subjectAddressProblem = "We could not generate your shipping label"
)

// composeEmail renders the message for an email task kind. Payload values
// are HTML-escaped before interpolation.
func composeEmail(kind enums.OutboxTaskKind, payload outbox.EmailPayload) (mailer.Message, error) {
	greeting := "Hi"
	if name := strings.TrimSpace(payload.ToName); name != "" {
		greeting = "Hi " + html.EscapeString(name)
	}

	switch kind {
	case enums.TaskEmailQuoteConfirm:
		item := strings.TrimSpace(strings.Join([]string{
			html.EscapeString(payload.Vendor),
			html.EscapeString(payload.ProductType),
		}, " "))
		if item == "" {
			item = "your item"
		}
		body := fmt.Sprintf(
			"<p>%s,</p><p>Thanks for submitting %s for a quote. Our team is reviewing it and will follow up with offers shortly.</p>",
			greeting, item)
		return mailer.Message{
			ToEmail:  payload.ToEmail,
			ToName:   payload.ToName,
			Subject:  subjectQuoteConfirm,
			HTMLBody: body,
		}, nil

	case enums.TaskEmailLabelReady:
		if payload.LabelURL == "" {
			return mailer.Message{}, fmt.Errorf("label ready email without label url")
		}
		body := fmt.Sprintf(
			"<p>%s,</p><p>Your prepaid shipping label is ready. <a href=%q>Download your label</a> and attach it to the package.</p><p>Tracking number: %s</p>",
			greeting, payload.LabelURL, html.EscapeString(payload.TrackingNumber))
		return mailer.Message{
			ToEmail:  payload.ToEmail,
			ToName:   payload.ToName,
			Subject:  subjectLabelReady,
			HTMLBody: body,
		}, nil

	case enums.TaskEmailAddressProblem:
		body := fmt.Sprintf(
			"<p>%s,</p><p>We were unable to generate a shipping label for the address you provided. Please double-check the address and submit it again, or reply to this email for help.</p>",
			greeting)
		return mailer.Message{
			ToEmail:  payload.ToEmail,
			ToName:   payload.ToName,
			Subject:  subjectAddressProblem,
			HTMLBody: body,
		}, nil

	default:
		return mailer.Message{}, fmt.Errorf("no email template for task kind %s", kind)
	}
}
