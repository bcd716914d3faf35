package entity

// Webhook event types delivered by the provider. Only package.signed is
// acted on; everything else is acknowledged and ignored.
const (
	WebhookEventPackageSigned = "package.signed"
)

// WebhookPayload is the inbound notification body.
type WebhookPayload struct {
	Event   string         `json:"event"`
	Package WebhookPackage `json:"package"`
}

type WebhookPackage struct {
	ID string `json:"id"`
}
