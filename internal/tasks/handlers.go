package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/mail"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	logger    *slog.Logger
	sender    mail.Sender
	retention time.Duration
}

func NewHandler(db *gorm.DB, logger *slog.Logger, sender mail.Sender, retention time.Duration) *Handler {
	return &Handler{
		db:        db,
		logger:    logger,
		sender:    sender,
		retention: retention,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVerificationEmail, h.HandleVerificationEmail)
	mux.HandleFunc(TypePurgeUnverified, h.HandlePurgeUnverified)
}

func (h *Handler) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var payload VerificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	// Skip delivery if the account verified (or vanished) while the task
	// was queued.
	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", payload.UserID).Error; err != nil {
		h.logger.Warn("verification email target missing, dropping task", "user_id", payload.UserID)
		return nil
	}
	if user.IsVerified {
		h.logger.Info("account verified before delivery, dropping task", "user_id", payload.UserID)
		return nil
	}

	if err := h.sender.SendVerification(ctx, payload.Email, payload.Username, payload.VerifyURL); err != nil {
		h.logger.Error("verification email delivery failed", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}

// HandlePurgeUnverified deletes unverified accounts older than the retention
// window. Unverified accounts cannot log in, so they own no boards and a plain
// row delete is safe.
func (h *Handler) HandlePurgeUnverified(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().Add(-h.retention)

	result := h.db.WithContext(ctx).
		Where("is_verified = ? AND created_at < ?", false, cutoff).
		Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("purging unverified accounts: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		h.logger.Info("purged unverified accounts", "count", result.RowsAffected, "cutoff", cutoff)
	}
	return nil
}
