package kanban_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/kanban"
	"github.com/hugh/flowboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CurrentBoard(t *testing.T) {
	svc, tc := setupKanban(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("remembered board wins when still owned", func(t *testing.T) {
		second := testutil.CreateTestBoard(t, tc.DB, tc.User.ID, "Second")

		board, err := svc.CurrentBoard(ctx, tc.User.ID, second.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, board.ID)
	})

	t.Run("falls back to the first board without a remembered id", func(t *testing.T) {
		board, err := svc.CurrentBoard(ctx, tc.User.ID, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, tc.Board.ID, board.ID)
	})

	t.Run("falls back when the remembered board no longer exists", func(t *testing.T) {
		board, err := svc.CurrentBoard(ctx, tc.User.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, tc.Board.ID, board.ID)
	})

	t.Run("falls back when the remembered board belongs to someone else", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		foreign := testutil.CreateTestBoard(t, tc.DB, stranger.ID, "Private")

		board, err := svc.CurrentBoard(ctx, tc.User.ID, foreign.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.Board.ID, board.ID)
	})

	t.Run("first board means earliest created", func(t *testing.T) {
		fresh := testutil.CreateTestUser(t, tc.DB)

		older := &models.Board{
			Base:    models.Base{ID: uuid.New(), CreatedAt: time.Now().Add(-2 * time.Hour)},
			Name:    "Older",
			Color:   models.DefaultBoardColor,
			OwnerID: fresh.ID,
		}
		require.NoError(t, tc.DB.Create(older).Error)
		testutil.CreateTestBoard(t, tc.DB, fresh.ID, "Newer")

		board, err := svc.CurrentBoard(ctx, fresh.ID, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, older.ID, board.ID)
	})

	t.Run("no boards at all", func(t *testing.T) {
		lonely := testutil.CreateTestUser(t, tc.DB)

		_, err := svc.CurrentBoard(ctx, lonely.ID, uuid.Nil)
		assert.ErrorIs(t, err, kanban.ErrNoBoards)
	})
}
