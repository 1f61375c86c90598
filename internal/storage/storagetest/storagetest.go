// Package storagetest содержит общие проверки для реализаций storage.Storage.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/storage"
)

// Run проверяет хранилище st. Init должен быть уже вызван.
func Run(t *testing.T, st storage.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		rec := &models.SessionRecord{
			ID:    uuid.NewString(),
			Token: "token-1",
			User: models.User{
				ID:       7,
				Email:    "s@example.com",
				FullName: "Мария Иванова",
				Role:     models.RoleStudent,
			},
			ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second).UTC(),
			CreatedAt: time.Now().Truncate(time.Second).UTC(),
		}
		require.NoError(t, st.SaveSession(ctx, rec))

		got, err := st.GetSession(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Token, got.Token)
		assert.Equal(t, rec.User, got.User)
		assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("overwrite", func(t *testing.T) {
		rec := &models.SessionRecord{
			ID:        uuid.NewString(),
			Token:     "old",
			User:      models.User{ID: 1, Email: "t@example.com", FullName: "T", Role: models.RoleTeacher},
			CreatedAt: time.Now().Truncate(time.Second).UTC(),
		}
		require.NoError(t, st.SaveSession(ctx, rec))

		rec.Token = "new"
		require.NoError(t, st.SaveSession(ctx, rec))

		got, err := st.GetSession(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Token)
		assert.True(t, got.ExpiresAt.IsZero())
	})

	t.Run("missing", func(t *testing.T) {
		got, err := st.GetSession(ctx, uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		rec := &models.SessionRecord{
			ID:        uuid.NewString(),
			Token:     "x",
			User:      models.User{ID: 2, Email: "x@example.com", FullName: "X", Role: models.RoleStudent},
			CreatedAt: time.Now().Truncate(time.Second).UTC(),
		}
		require.NoError(t, st.SaveSession(ctx, rec))
		require.NoError(t, st.DeleteSession(ctx, rec.ID))
		require.NoError(t, st.DeleteSession(ctx, rec.ID))

		_, err := st.GetSession(ctx, rec.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
