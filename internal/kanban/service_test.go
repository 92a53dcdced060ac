package kanban_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/kanban"
	"github.com/hugh/flowboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKanban(t *testing.T) (*kanban.Service, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	svc := kanban.NewService(tc.DB, testutil.NewTestLogger())
	return svc, tc
}

func TestService_Boards(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("create applies default color", func(t *testing.T) {
		board, err := svc.CreateBoard(ctx, tc.User.ID, kanban.BoardInput{Name: "Colorless"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultBoardColor, board.Color)
	})

	t.Run("create keeps an explicit color", func(t *testing.T) {
		board, err := svc.CreateBoard(ctx, tc.User.ID, kanban.BoardInput{Name: "Red", Color: "#EF4444"})
		require.NoError(t, err)
		assert.Equal(t, "#EF4444", board.Color)
	})

	t.Run("list returns only the caller's boards in creation order", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Not Yours")

		boards, err := svc.ListBoards(ctx, tc.User.ID)
		require.NoError(t, err)
		require.Len(t, boards, 3)
		assert.Equal(t, tc.Board.ID, boards[0].ID)
		for _, b := range boards {
			assert.Equal(t, tc.User.ID, b.OwnerID)
		}
	})

	t.Run("get hides foreign boards as not found", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		foreign := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")

		_, err := svc.GetBoard(ctx, tc.User.ID, foreign.ID)
		assert.ErrorIs(t, err, kanban.ErrNotFound)
	})

	t.Run("update changes only provided fields", func(t *testing.T) {
		board, err := svc.CreateBoard(ctx, tc.User.ID, kanban.BoardInput{Name: "Before", Description: "keep me"})
		require.NoError(t, err)

		updated, err := svc.UpdateBoard(ctx, tc.User.ID, board.ID, kanban.BoardInput{Name: "After"})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Name)

		var stored models.Board
		require.NoError(t, tc.DB.First(&stored, "id = ?", board.ID).Error)
		assert.Equal(t, "After", stored.Name)
		assert.Equal(t, "keep me", stored.Description)
	})
}

func TestService_DeleteBoard(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("refuses to delete the only board", func(t *testing.T) {
		loner := testutil.CreateTestUser(t, tc.DB)
		only := testutil.CreateTestBoard(t, tc.DB, loner.ID, "Only")

		err := svc.DeleteBoard(ctx, loner.ID, only.ID)
		assert.ErrorIs(t, err, kanban.ErrLastBoard)

		var count int64
		tc.DB.Model(&models.Board{}).Where("owner_id = ?", loner.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("cascades through lanes, cards and category links", func(t *testing.T) {
		board := testutil.CreateTestBoard(t, tc.DB, tc.User.ID, "Doomed")
		lane := testutil.CreateTestLane(t, tc.DB, board.ID, "Lane", 1)
		card := testutil.CreateTestCard(t, tc.DB, lane.ID, "Card", 1)
		category := testutil.CreateTestCategory(t, tc.DB, "Sticky", "#10B981")
		require.NoError(t, tc.DB.Model(card).Association("Categories").Append(category))

		require.NoError(t, svc.DeleteBoard(ctx, tc.User.ID, board.ID))

		var lanes, cards, links int64
		tc.DB.Model(&models.Lane{}).Where("board_id = ?", board.ID).Count(&lanes)
		tc.DB.Model(&models.Card{}).Where("lane_id = ?", lane.ID).Count(&cards)
		tc.DB.Table("card_categories").Where("card_id = ?", card.ID).Count(&links)
		assert.Zero(t, lanes)
		assert.Zero(t, cards)
		assert.Zero(t, links)

		// The category itself is global and survives the cascade.
		var stored models.Category
		assert.NoError(t, tc.DB.First(&stored, "id = ?", category.ID).Error)
	})

	t.Run("cannot delete a foreign board", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Spare")
		target := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Target")

		err := svc.DeleteBoard(ctx, tc.User.ID, target.ID)
		assert.ErrorIs(t, err, kanban.ErrNotFound)

		var stored models.Board
		assert.NoError(t, tc.DB.First(&stored, "id = ?", target.ID).Error)
	})
}

func TestService_Lanes(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("create appends with strictly increasing positions", func(t *testing.T) {
		first, err := svc.CreateLane(ctx, tc.User.ID, tc.Board.ID, "To Do")
		require.NoError(t, err)
		second, err := svc.CreateLane(ctx, tc.User.ID, tc.Board.ID, "In Progress")
		require.NoError(t, err)
		third, err := svc.CreateLane(ctx, tc.User.ID, tc.Board.ID, "Done")
		require.NoError(t, err)

		assert.Equal(t, 1.0, first.Position)
		assert.Equal(t, 2.0, second.Position)
		assert.Equal(t, 3.0, third.Position)
	})

	t.Run("create on a foreign board is not found", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		foreign := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")

		_, err := svc.CreateLane(ctx, tc.User.ID, foreign.ID, "Nope")
		assert.ErrorIs(t, err, kanban.ErrNotFound)
	})

	t.Run("delete removes the lane and its cards", func(t *testing.T) {
		lane := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "Doomed", 9)
		card := testutil.CreateTestCard(t, tc.DB, lane.ID, "Inside", 1)

		require.NoError(t, svc.DeleteLane(ctx, tc.User.ID, lane.ID))

		var count int64
		tc.DB.Model(&models.Card{}).Where("id = ?", card.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("delete on a foreign lane is forbidden", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		board := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")
		lane := testutil.CreateTestLane(t, tc.DB, board.ID, "Theirs", 1)

		err := svc.DeleteLane(ctx, tc.User.ID, lane.ID)
		assert.ErrorIs(t, err, kanban.ErrNotOwner)

		var stored models.Lane
		assert.NoError(t, tc.DB.First(&stored, "id = ?", lane.ID).Error)
	})
}

func TestService_ReorderLanes(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	a := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "A", 1)
	b := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "B", 2)
	c := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "C", 3)

	t.Run("positions follow list index", func(t *testing.T) {
		skipped, err := svc.ReorderLanes(ctx, tc.User.ID, []uuid.UUID{c.ID, a.ID, b.ID})
		require.NoError(t, err)
		assert.Empty(t, skipped)

		var lanes []models.Lane
		require.NoError(t, tc.DB.Where("board_id = ?", tc.Board.ID).Order("position ASC, id ASC").Find(&lanes).Error)
		require.Len(t, lanes, 3)
		assert.Equal(t, c.ID, lanes[0].ID)
		assert.Equal(t, 0.0, lanes[0].Position)
		assert.Equal(t, a.ID, lanes[1].ID)
		assert.Equal(t, 1.0, lanes[1].Position)
		assert.Equal(t, b.ID, lanes[2].ID)
		assert.Equal(t, 2.0, lanes[2].Position)
	})

	t.Run("unknown and foreign lanes are skipped, the rest apply", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		board := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")
		foreign := testutil.CreateTestLane(t, tc.DB, board.ID, "Theirs", 1)
		ghost := uuid.New()

		skipped, err := svc.ReorderLanes(ctx, tc.User.ID, []uuid.UUID{a.ID, ghost, foreign.ID, b.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{ghost, foreign.ID}, skipped)

		// The foreign lane keeps its original position.
		var stored models.Lane
		require.NoError(t, tc.DB.First(&stored, "id = ?", foreign.ID).Error)
		assert.Equal(t, 1.0, stored.Position)

		// Owned lanes in the list were renumbered by index.
		stored = models.Lane{}
		require.NoError(t, tc.DB.First(&stored, "id = ?", a.ID).Error)
		assert.Equal(t, 0.0, stored.Position)
		stored = models.Lane{}
		require.NoError(t, tc.DB.First(&stored, "id = ?", b.ID).Error)
		assert.Equal(t, 3.0, stored.Position)
	})
}

func TestService_Cards(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	lane := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "Lane", 1)

	t.Run("create appends to the lane", func(t *testing.T) {
		first, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{Title: "First"})
		require.NoError(t, err)
		second, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{Title: "Second"})
		require.NoError(t, err)

		assert.Equal(t, 1.0, first.Position)
		assert.Equal(t, 2.0, second.Position)
	})

	t.Run("create with categories preloads them", func(t *testing.T) {
		bug := testutil.CreateTestCategory(t, tc.DB, "Bug", "#EF4444")

		card, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{
			Title:       "Tagged",
			CategoryIDs: []uuid.UUID{bug.ID},
		})
		require.NoError(t, err)
		require.Len(t, card.Categories, 1)
		assert.Equal(t, "Bug", card.Categories[0].Name)
	})

	t.Run("update with empty category set clears categories", func(t *testing.T) {
		feature := testutil.CreateTestCategory(t, tc.DB, "Feature", "#3B82F6")
		card, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{
			Title:       "Labelled",
			CategoryIDs: []uuid.UUID{feature.ID},
		})
		require.NoError(t, err)
		require.Len(t, card.Categories, 1)

		updated, err := svc.UpdateCard(ctx, tc.User.ID, card.ID, kanban.CardInput{
			Title:       "Labelled",
			CategoryIDs: []uuid.UUID{},
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Categories)
	})

	t.Run("update keeps the title when none is given", func(t *testing.T) {
		card, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{Title: "Keep Me"})
		require.NoError(t, err)

		updated, err := svc.UpdateCard(ctx, tc.User.ID, card.ID, kanban.CardInput{Description: "new text"})
		require.NoError(t, err)
		assert.Equal(t, "Keep Me", updated.Title)
		assert.Equal(t, "new text", updated.Description)
	})

	t.Run("foreign card access is forbidden and leaves data intact", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		board := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")
		theirLane := testutil.CreateTestLane(t, tc.DB, board.ID, "Theirs", 1)
		theirCard := testutil.CreateTestCard(t, tc.DB, theirLane.ID, "Secret", 1)

		_, err := svc.GetCard(ctx, tc.User.ID, theirCard.ID)
		assert.ErrorIs(t, err, kanban.ErrNotOwner)

		_, err = svc.UpdateCard(ctx, tc.User.ID, theirCard.ID, kanban.CardInput{Title: "Hijacked"})
		assert.ErrorIs(t, err, kanban.ErrNotOwner)

		err = svc.DeleteCard(ctx, tc.User.ID, theirCard.ID)
		assert.ErrorIs(t, err, kanban.ErrNotOwner)

		var stored models.Card
		require.NoError(t, tc.DB.First(&stored, "id = ?", theirCard.ID).Error)
		assert.Equal(t, "Secret", stored.Title)
	})

	t.Run("unknown card is not found", func(t *testing.T) {
		_, err := svc.GetCard(ctx, tc.User.ID, uuid.New())
		assert.ErrorIs(t, err, kanban.ErrNotFound)
	})

	t.Run("delete removes the card and its category links", func(t *testing.T) {
		urgent := testutil.CreateTestCategory(t, tc.DB, "Urgent", "#DC2626")
		card, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{
			Title:       "Doomed",
			CategoryIDs: []uuid.UUID{urgent.ID},
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCard(ctx, tc.User.ID, card.ID))

		var cards, links int64
		tc.DB.Model(&models.Card{}).Where("id = ?", card.ID).Count(&cards)
		tc.DB.Table("card_categories").Where("card_id = ?", card.ID).Count(&links)
		assert.Zero(t, cards)
		assert.Zero(t, links)
	})
}

func TestService_MoveCard(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	source := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "Source", 1)
	target := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "Target", 2)
	testutil.CreateTestCard(t, tc.DB, target.ID, "Existing", 1)

	t.Run("lane change without position appends to the target", func(t *testing.T) {
		card := testutil.CreateTestCard(t, tc.DB, source.ID, "Mover", 1)

		require.NoError(t, svc.MoveCard(ctx, tc.User.ID, card.ID, &target.ID, nil))

		var stored models.Card
		require.NoError(t, tc.DB.First(&stored, "id = ?", card.ID).Error)
		assert.Equal(t, target.ID, stored.LaneID)
		assert.Equal(t, 2.0, stored.Position)
	})

	t.Run("lane and position change apply together", func(t *testing.T) {
		card := testutil.CreateTestCard(t, tc.DB, source.ID, "Precise", 1)
		pos := 0.5

		require.NoError(t, svc.MoveCard(ctx, tc.User.ID, card.ID, &target.ID, &pos))

		var stored models.Card
		require.NoError(t, tc.DB.First(&stored, "id = ?", card.ID).Error)
		assert.Equal(t, target.ID, stored.LaneID)
		assert.Equal(t, 0.5, stored.Position)
	})

	t.Run("move to a foreign lane is forbidden and changes nothing", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		board := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")
		theirLane := testutil.CreateTestLane(t, tc.DB, board.ID, "Theirs", 1)
		card := testutil.CreateTestCard(t, tc.DB, source.ID, "Stays", 3)

		err := svc.MoveCard(ctx, tc.User.ID, card.ID, &theirLane.ID, nil)
		assert.ErrorIs(t, err, kanban.ErrNotOwner)

		var stored models.Card
		require.NoError(t, tc.DB.First(&stored, "id = ?", card.ID).Error)
		assert.Equal(t, source.ID, stored.LaneID)
		assert.Equal(t, 3.0, stored.Position)
	})

	t.Run("no-op move succeeds", func(t *testing.T) {
		card := testutil.CreateTestCard(t, tc.DB, source.ID, "Still", 4)
		assert.NoError(t, svc.MoveCard(ctx, tc.User.ID, card.ID, nil, nil))
	})
}

func TestService_ReorderCards(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	laneA := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "A", 1)
	laneB := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "B", 2)

	one := testutil.CreateTestCard(t, tc.DB, laneA.ID, "One", 1)
	two := testutil.CreateTestCard(t, tc.DB, laneA.ID, "Two", 2)

	t.Run("batch applies lane and position updates", func(t *testing.T) {
		p0, p1 := 0.0, 1.0
		skipped, err := svc.ReorderCards(ctx, tc.User.ID, []kanban.CardReorderUpdate{
			{CardID: one.ID, LaneID: &laneB.ID, Position: &p0},
			{CardID: two.ID, Position: &p1},
		})
		require.NoError(t, err)
		assert.Empty(t, skipped)

		var stored models.Card
		require.NoError(t, tc.DB.First(&stored, "id = ?", one.ID).Error)
		assert.Equal(t, laneB.ID, stored.LaneID)
		assert.Equal(t, 0.0, stored.Position)

		stored = models.Card{}
		require.NoError(t, tc.DB.First(&stored, "id = ?", two.ID).Error)
		assert.Equal(t, laneA.ID, stored.LaneID)
		assert.Equal(t, 1.0, stored.Position)
	})

	t.Run("unknown cards and foreign targets are skipped", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		board := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")
		theirLane := testutil.CreateTestLane(t, tc.DB, board.ID, "Theirs", 1)
		ghost := uuid.New()
		p := 5.0

		skipped, err := svc.ReorderCards(ctx, tc.User.ID, []kanban.CardReorderUpdate{
			{CardID: ghost, Position: &p},
			{CardID: two.ID, LaneID: &theirLane.ID, Position: &p},
			{CardID: one.ID, Position: &p},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{ghost, two.ID}, skipped)

		// The skipped card kept its lane and position.
		var stored models.Card
		require.NoError(t, tc.DB.First(&stored, "id = ?", two.ID).Error)
		assert.Equal(t, laneA.ID, stored.LaneID)
		assert.Equal(t, 1.0, stored.Position)

		// The valid entry still applied.
		stored = models.Card{}
		require.NoError(t, tc.DB.First(&stored, "id = ?", one.ID).Error)
		assert.Equal(t, 5.0, stored.Position)
	})
}

func TestService_Categories(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("create applies default color", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, "Plain", "")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultBoardColor, category.Color)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "Dup", "#111111")
		require.NoError(t, err)

		_, err = svc.CreateCategory(ctx, "Dup", "#222222")
		assert.ErrorIs(t, err, kanban.ErrDuplicateCategory)
	})

	t.Run("list is sorted by name", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "Zebra", "#111111")
		require.NoError(t, err)
		_, err = svc.CreateCategory(ctx, "Alpha", "#222222")
		require.NoError(t, err)

		categories, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(categories), 2)
		assert.Equal(t, "Alpha", categories[0].Name)
	})

	t.Run("delete removes category links from cards", func(t *testing.T) {
		lane := testutil.CreateTestLane(t, tc.DB, tc.Board.ID, "Lane", 1)
		category := testutil.CreateTestCategory(t, tc.DB, "Linked", "#333333")
		card, err := svc.CreateCard(ctx, tc.User.ID, lane.ID, kanban.CardInput{
			Title:       "Tagged",
			CategoryIDs: []uuid.UUID{category.ID},
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCategory(ctx, category.ID))

		var links int64
		tc.DB.Table("card_categories").Where("card_id = ?", card.ID).Count(&links)
		assert.Zero(t, links)

		got, err := svc.GetCard(ctx, tc.User.ID, card.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Categories)
	})

	t.Run("delete unknown category is not found", func(t *testing.T) {
		err := svc.DeleteCategory(ctx, uuid.New())
		assert.ErrorIs(t, err, kanban.ErrNotFound)
	})
}
