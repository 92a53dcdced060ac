package kanban

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/database/models"
	"gorm.io/gorm"
)

// CurrentBoard resolves which board the caller is viewing. A remembered board
// id that still belongs to the caller wins; otherwise the caller's first board
// (created_at, id ascending) is used. Owning no boards is reported as
// ErrNoBoards rather than an internal error so callers can render the
// create-a-board empty state.
func (s *Service) CurrentBoard(ctx context.Context, ownerID, rememberedID uuid.UUID) (*models.Board, error) {
	if rememberedID != uuid.Nil {
		board, err := s.GetBoard(ctx, ownerID, rememberedID)
		if err == nil {
			return board, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	var board models.Board
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoBoards
		}
		return nil, err
	}

	return &board, nil
}
