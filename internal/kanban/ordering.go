package kanban

import (
	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/database/models"
	"gorm.io/gorm"
)

// minPositionGap is the smallest float spacing tolerated between two sibling
// positions. Inserting into a gap tighter than this triggers re-normalization
// so repeated fractional insertions never exhaust float precision.
const minPositionGap = 1e-9

// siblingOrder is the canonical sort for lanes and cards. The id column breaks
// position ties deterministically.
const siblingOrder = "position ASC, id ASC"

func nextLanePosition(tx *gorm.DB, boardID uuid.UUID) (float64, error) {
	var max float64
	err := tx.Model(&models.Lane{}).
		Where("board_id = ?", boardID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func nextCardPosition(tx *gorm.DB, laneID uuid.UUID) (float64, error) {
	var max float64
	err := tx.Model(&models.Card{}).
		Where("lane_id = ?", laneID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// renormalizeLanes rewrites a board's lane positions to evenly spaced integers
// starting at 1, preserving the current order.
func renormalizeLanes(tx *gorm.DB, boardID uuid.UUID) error {
	var lanes []models.Lane
	if err := tx.Where("board_id = ?", boardID).Order(siblingOrder).Find(&lanes).Error; err != nil {
		return err
	}
	for i := range lanes {
		if err := tx.Model(&models.Lane{}).
			Where("id = ?", lanes[i].ID).
			Update("position", float64(i+1)).Error; err != nil {
			return err
		}
	}
	return nil
}

// renormalizeCards rewrites a lane's card positions to evenly spaced integers
// starting at 1, preserving the current order.
func renormalizeCards(tx *gorm.DB, laneID uuid.UUID) error {
	var cards []models.Card
	if err := tx.Where("lane_id = ?", laneID).Order(siblingOrder).Find(&cards).Error; err != nil {
		return err
	}
	for i := range cards {
		if err := tx.Model(&models.Card{}).
			Where("id = ?", cards[i].ID).
			Update("position", float64(i+1)).Error; err != nil {
			return err
		}
	}
	return nil
}

// resolveCardPosition returns the position to store for a card placed at the
// requested value within a lane. When the requested value falls between two
// siblings whose gap has collapsed below minPositionGap, the lane is
// re-normalized first and the card lands halfway between the renumbered
// neighbors.
func resolveCardPosition(tx *gorm.DB, laneID, excludeID uuid.UUID, requested float64) (float64, error) {
	var cards []models.Card
	if err := tx.Where("lane_id = ? AND id <> ?", laneID, excludeID).
		Order(siblingOrder).
		Find(&cards).Error; err != nil {
		return 0, err
	}

	lowerIdx := -1
	for i := range cards {
		if cards[i].Position < requested {
			lowerIdx = i
		}
	}

	// No neighbor on one side means the gap cannot be exhausted.
	if lowerIdx == -1 || lowerIdx == len(cards)-1 {
		return requested, nil
	}

	gap := cards[lowerIdx+1].Position - cards[lowerIdx].Position
	if gap >= minPositionGap {
		return requested, nil
	}

	if err := renormalizeCards(tx, laneID); err != nil {
		return 0, err
	}
	// After re-normalization the lower neighbor sits at lowerIdx+1 (positions
	// are 1-based), so halfway to the next integer keeps the intended slot.
	return float64(lowerIdx+1) + 0.5, nil
}
