package mailer

import "embed"

const (
	FromName             = "Courtside"
	maxRetries           = 3
	SlotApprovedTemplate = "slot_approved.tmpl"
	SlotRejectedTemplate = "slot_rejected.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
