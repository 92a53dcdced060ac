package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeVerificationEmail = "email:verification"
	TypePurgeUnverified   = "maintenance:purge_unverified"
)

// VerificationEmailPayload contains the data for a verification email task
type VerificationEmailPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	VerifyURL string    `json:"verify_url"`
}

func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeVerificationEmail, data, asynq.Queue("mail")), nil
}

// NewPurgeUnverifiedTask builds the periodic sweep that removes stale
// unverified accounts. It carries no payload; retention comes from worker
// configuration.
func NewPurgeUnverifiedTask() *asynq.Task {
	return asynq.NewTask(TypePurgeUnverified, nil, asynq.Queue("low"))
}
