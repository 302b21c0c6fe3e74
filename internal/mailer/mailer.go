package mailer

import "embed"

const (
	FromName                  = "Bakehouse"
	maxRetries                = 3
	UserWelcomeTemplate       = "user_welcome.tmpl"
	OrderConfirmationTemplate = "order_confirmation.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
