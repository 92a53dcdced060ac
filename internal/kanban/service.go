package kanban

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrNotOwner          = errors.New("resource does not belong to caller")
	ErrNoBoards          = errors.New("user owns no boards")
	ErrLastBoard         = errors.New("cannot delete the only board")
	ErrDuplicateCategory = errors.New("category name already exists")
)

// Service implements the board/lane/card hierarchy with transitive ownership
// checks on every mutation. A card's owner is its lane's board's owner.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// laneForOwner resolves a lane and enforces that its board belongs to ownerID.
// Unknown ids map to ErrNotFound, foreign lanes to ErrNotOwner.
func laneForOwner(tx *gorm.DB, laneID, ownerID uuid.UUID) (*models.Lane, error) {
	var lane models.Lane
	if err := tx.First(&lane, "id = ?", laneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var board models.Board
	if err := tx.First(&board, "id = ?", lane.BoardID).Error; err != nil {
		return nil, err
	}
	if board.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	return &lane, nil
}

// cardForOwner resolves a card through its lane and board.
func cardForOwner(tx *gorm.DB, cardID, ownerID uuid.UUID) (*models.Card, error) {
	var card models.Card
	if err := tx.First(&card, "id = ?", cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := laneForOwner(tx, card.LaneID, ownerID); err != nil {
		return nil, err
	}

	return &card, nil
}

// Boards

func (s *Service) ListBoards(ctx context.Context, ownerID uuid.UUID) ([]models.Board, error) {
	var boards []models.Board
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&boards).Error
	return boards, err
}

type BoardInput struct {
	Name        string
	Description string
	Color       string
}

func (s *Service) CreateBoard(ctx context.Context, ownerID uuid.UUID, input BoardInput) (*models.Board, error) {
	color := input.Color
	if color == "" {
		color = models.DefaultBoardColor
	}

	board := models.Board{
		Name:        input.Name,
		Description: input.Description,
		Color:       color,
		OwnerID:     ownerID,
	}

	if err := s.db.WithContext(ctx).Create(&board).Error; err != nil {
		return nil, err
	}

	return &board, nil
}

// GetBoard is owner-scoped by query: unknown and foreign boards are both
// reported as not found so existence never leaks.
func (s *Service) GetBoard(ctx context.Context, ownerID, boardID uuid.UUID) (*models.Board, error) {
	var board models.Board
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", boardID, ownerID).
		First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &board, nil
}

func (s *Service) UpdateBoard(ctx context.Context, ownerID, boardID uuid.UUID, input BoardInput) (*models.Board, error) {
	board, err := s.GetBoard(ctx, ownerID, boardID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Color != "" {
		updates["color"] = input.Color
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(board).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return board, nil
}

// DeleteBoard removes a board and everything it transitively contains in one
// transaction. The caller's last remaining board cannot be deleted.
func (s *Service) DeleteBoard(ctx context.Context, ownerID, boardID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.Where("id = ? AND owner_id = ?", boardID, ownerID).First(&board).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var owned int64
		if err := tx.Model(&models.Board{}).Where("owner_id = ?", ownerID).Count(&owned).Error; err != nil {
			return err
		}
		if owned <= 1 {
			return ErrLastBoard
		}

		return deleteBoardCascade(tx, board.ID)
	})
}

// deleteBoardCascade deletes a board's cards, lanes, then the board itself.
// The cascade is explicit so it does not rely on the driver enforcing
// foreign-key actions.
func deleteBoardCascade(tx *gorm.DB, boardID uuid.UUID) error {
	var laneIDs []uuid.UUID
	if err := tx.Model(&models.Lane{}).
		Where("board_id = ?", boardID).
		Pluck("id", &laneIDs).Error; err != nil {
		return err
	}

	if len(laneIDs) > 0 {
		if err := deleteCardsInLanes(tx, laneIDs); err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&models.Lane{}).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&models.Board{}, "id = ?", boardID).Error
}

func deleteCardsInLanes(tx *gorm.DB, laneIDs []uuid.UUID) error {
	var cardIDs []uuid.UUID
	if err := tx.Model(&models.Card{}).
		Where("lane_id IN ?", laneIDs).
		Pluck("id", &cardIDs).Error; err != nil {
		return err
	}
	if len(cardIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM card_categories WHERE card_id IN ?", cardIDs).Error; err != nil {
		return err
	}
	return tx.Where("lane_id IN ?", laneIDs).Delete(&models.Card{}).Error
}

// BoardView returns a board with its lanes and cards in display order and card
// categories preloaded.
func (s *Service) BoardView(ctx context.Context, ownerID, boardID uuid.UUID) (*models.Board, []models.Lane, error) {
	board, err := s.GetBoard(ctx, ownerID, boardID)
	if err != nil {
		return nil, nil, err
	}

	var lanes []models.Lane
	if err := s.db.WithContext(ctx).
		Where("board_id = ?", board.ID).
		Order(siblingOrder).
		Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order(siblingOrder)
		}).
		Preload("Cards.Categories").
		Find(&lanes).Error; err != nil {
		return nil, nil, err
	}

	return board, lanes, nil
}

// Lanes

func (s *Service) CreateLane(ctx context.Context, ownerID, boardID uuid.UUID, title string) (*models.Lane, error) {
	var lane models.Lane
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.Where("id = ? AND owner_id = ?", boardID, ownerID).First(&board).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		position, err := nextLanePosition(tx, board.ID)
		if err != nil {
			return err
		}

		lane = models.Lane{
			Title:    title,
			Position: position,
			BoardID:  board.ID,
		}
		return tx.Create(&lane).Error
	})
	if err != nil {
		return nil, err
	}
	return &lane, nil
}

func (s *Service) DeleteLane(ctx context.Context, ownerID, laneID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lane, err := laneForOwner(tx, laneID, ownerID)
		if err != nil {
			return err
		}
		if err := deleteCardsInLanes(tx, []uuid.UUID{lane.ID}); err != nil {
			return err
		}
		return tx.Delete(&models.Lane{}, "id = ?", lane.ID).Error
	})
}

// ReorderLanes sets each listed lane's position to its index in the list.
// Lanes that do not exist or belong to another user are skipped and reported;
// the updates that do apply commit as one transaction.
func (s *Service) ReorderLanes(ctx context.Context, ownerID uuid.UUID, laneIDs []uuid.UUID) ([]uuid.UUID, error) {
	var skipped []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for index, laneID := range laneIDs {
			lane, err := laneForOwner(tx, laneID, ownerID)
			if err != nil {
				if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotOwner) {
					skipped = append(skipped, laneID)
					continue
				}
				return err
			}
			if err := tx.Model(&models.Lane{}).
				Where("id = ?", lane.ID).
				Update("position", float64(index)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		s.logger.Warn("lane reorder skipped entries", "owner_id", ownerID, "skipped", len(skipped))
	}
	return skipped, nil
}

// Cards

type CardInput struct {
	Title       string
	Description string
	CategoryIDs []uuid.UUID
}

func (s *Service) CreateCard(ctx context.Context, ownerID, laneID uuid.UUID, input CardInput) (*models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lane, err := laneForOwner(tx, laneID, ownerID)
		if err != nil {
			return err
		}

		position, err := nextCardPosition(tx, lane.ID)
		if err != nil {
			return err
		}

		card = models.Card{
			Title:       input.Title,
			Description: input.Description,
			Position:    position,
			LaneID:      lane.ID,
		}
		if err := tx.Create(&card).Error; err != nil {
			return err
		}

		return replaceCardCategories(tx, &card, input.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.loadCard(ctx, card.ID)
}

func (s *Service) GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*models.Card, error) {
	if _, err := cardForOwner(s.db.WithContext(ctx), cardID, ownerID); err != nil {
		return nil, err
	}
	return s.loadCard(ctx, cardID)
}

// UpdateCard updates title, description and the category set. An explicitly
// empty category set clears all categories.
func (s *Service) UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, input CardInput) (*models.Card, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := cardForOwner(tx, cardID, ownerID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"description": input.Description,
		}
		if input.Title != "" {
			updates["title"] = input.Title
		}
		if err := tx.Model(&models.Card{}).Where("id = ?", card.ID).Updates(updates).Error; err != nil {
			return err
		}

		return replaceCardCategories(tx, card, input.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.loadCard(ctx, cardID)
}

func (s *Service) DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := cardForOwner(tx, cardID, ownerID)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM card_categories WHERE card_id = ?", card.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Card{}, "id = ?", card.ID).Error
	})
}

// MoveCard changes a card's lane and/or position. Both fields apply in one
// transaction so a cross-lane drag never half-commits.
func (s *Service) MoveCard(ctx context.Context, ownerID, cardID uuid.UUID, laneID *uuid.UUID, position *float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := cardForOwner(tx, cardID, ownerID)
		if err != nil {
			return err
		}

		targetLane := card.LaneID
		updates := map[string]interface{}{}

		if laneID != nil && *laneID != card.LaneID {
			lane, err := laneForOwner(tx, *laneID, ownerID)
			if err != nil {
				return err
			}
			targetLane = lane.ID
			updates["lane_id"] = lane.ID
		}

		if position != nil {
			resolved, err := resolveCardPosition(tx, targetLane, card.ID, *position)
			if err != nil {
				return err
			}
			updates["position"] = resolved
		} else if laneID != nil && *laneID != card.LaneID {
			// Lane change without an explicit slot appends to the target lane.
			next, err := nextCardPosition(tx, targetLane)
			if err != nil {
				return err
			}
			updates["position"] = next
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Card{}).Where("id = ?", card.ID).Updates(updates).Error
	})
}

// CardReorderUpdate is one entry of a bulk card reorder request.
type CardReorderUpdate struct {
	CardID   uuid.UUID
	LaneID   *uuid.UUID
	Position *float64
}

// ReorderCards applies a batch of card moves in one transaction. Entries whose
// card or target lane is unknown or foreign are skipped and reported.
func (s *Service) ReorderCards(ctx context.Context, ownerID uuid.UUID, updates []CardReorderUpdate) ([]uuid.UUID, error) {
	var skipped []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			card, err := cardForOwner(tx, update.CardID, ownerID)
			if err != nil {
				if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotOwner) {
					skipped = append(skipped, update.CardID)
					continue
				}
				return err
			}

			targetLane := card.LaneID
			fields := map[string]interface{}{}

			if update.LaneID != nil && *update.LaneID != card.LaneID {
				lane, err := laneForOwner(tx, *update.LaneID, ownerID)
				if err != nil {
					if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotOwner) {
						skipped = append(skipped, update.CardID)
						continue
					}
					return err
				}
				targetLane = lane.ID
				fields["lane_id"] = lane.ID
			}

			if update.Position != nil {
				resolved, err := resolveCardPosition(tx, targetLane, card.ID, *update.Position)
				if err != nil {
					return err
				}
				fields["position"] = resolved
			}

			if len(fields) == 0 {
				continue
			}
			if err := tx.Model(&models.Card{}).Where("id = ?", card.ID).Updates(fields).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		s.logger.Warn("card reorder skipped entries", "owner_id", ownerID, "skipped", len(skipped))
	}
	return skipped, nil
}

func (s *Service) loadCard(ctx context.Context, cardID uuid.UUID) (*models.Card, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).
		Preload("Categories").
		First(&card, "id = ?", cardID).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func replaceCardCategories(tx *gorm.DB, card *models.Card, categoryIDs []uuid.UUID) error {
	var categories []models.Category
	if len(categoryIDs) > 0 {
		if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return err
		}
	}
	return tx.Model(card).Association("Categories").Replace(categories)
}

// Categories. These are global and deliberately not ownership-scoped.

func (s *Service) CreateCategory(ctx context.Context, name, color string) (*models.Category, error) {
	if color == "" {
		color = models.DefaultBoardColor
	}

	var existing models.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, ErrDuplicateCategory
	}

	category := models.Category{Name: name, Color: color}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Exec("DELETE FROM card_categories WHERE category_id = ?", category.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, "id = ?", category.ID).Error
	})
}
