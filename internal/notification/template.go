// Package notification tells customers about order status changes.
package notification

import (
	"bytes"
	"html/template"
)

// StatusChange is everything needed to write one status e-mail.
type StatusChange struct {
	Email    string
	Name     string
	OrderRef string
	Status   string
}

// Message is a rendered e-mail ready for a Transport. An empty From lets the
// transport use its configured sender.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

type statusTemplate struct {
	subject string
	line    string
}

var (
	inProgressTemplate = statusTemplate{
		subject: "Your Order is Being Processed",
		line:    "We are currently preparing your order and it will be delivered soon.",
	}
	deliveredTemplate = statusTemplate{
		subject: "Your Order Has Been Delivered",
		line:    "Your order has been delivered. Thank you for shopping with us!",
	}
	fallbackTemplate = statusTemplate{
		subject: "Order Status Update",
		line:    "Your order is now being reviewed.",
	}
)

func templateFor(status string) statusTemplate {
	switch status {
	case "In Progress":
		return inProgressTemplate
	case "Delivered":
		return deliveredTemplate
	default:
		return fallbackTemplate
	}
}

var bodyTemplate = template.Must(template.New("status").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #333;">Hello {{.Name}}!</h2>
  <p>Your order <strong>#{{.OrderRef}}</strong> has been updated to <strong>{{.Status}}</strong>.</p>
  <p>{{.Line}}</p>
  <p>If you have any questions about your order, please contact our customer support.</p>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0;">
    <p style="color: #777; font-size: 14px;">Thank you for shopping with us!</p>
  </div>
</div>
`))

// Render picks the subject by status and fills the HTML body.
func Render(sc StatusChange) (Message, error) {
	t := templateFor(sc.Status)

	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Name     string
		OrderRef string
		Status   string
		Line     string
	}{sc.Name, sc.OrderRef, sc.Status, t.line})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      sc.Email,
		Subject: t.subject,
		HTML:    buf.String(),
	}, nil
}
