// Package queue defines message payloads exchanged over the message broker.
package queue

// Event names published to the user.events queue.
const (
	EventUserCreated            = "user.created"
	EventPasswordChanged        = "user.password_changed"
	EventPasswordResetRequested = "user.password_reset_requested"
)

// UserEvent is published for account lifecycle changes. It carries
// enough information for downstream consumers to log, notify, or send
// mail without querying the primary database. The reset token is only
// present on password_reset_requested events; the mail consumer embeds
// it in the reset link.
type UserEvent struct {
	Name       string `json:"name"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
