package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"NotifyLink/internal/modules/notification/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notification.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.Notification{}))
	return db
}

func seed(t *testing.T, db *gorm.DB, recipient string, createdAt time.Time, read bool) *entity.Notification {
	t.Helper()
	n := &entity.Notification{
		RecipientId: recipient,
		Type:        entity.TypeCommentReply,
		EntityType:  entity.EntityComment,
		EntityId:    42,
		Message:     "reply",
		IsRead:      read,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestNotificationRepository_CreateAndGetScoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	sender := "u9"
	n := &entity.Notification{
		RecipientId: "u1",
		SenderId:    &sender,
		Type:        entity.TypeLike,
		EntityType:  entity.EntityRating,
		EntityId:    7,
		Message:     "Ваш комментарий получил ответ",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, n))
	require.NotZero(t, n.Id)

	got, err := repo.GetByIDAndRecipient(ctx, n.Id, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.TypeLike, got.Type)
	assert.Equal(t, entity.EntityRating, got.EntityType)
	assert.Equal(t, "Ваш комментарий получил ответ", got.Message)
	assert.False(t, got.IsRead)
	require.NotNil(t, got.SenderId)
	assert.Equal(t, "u9", *got.SenderId)

	_, err = repo.GetByIDAndRecipient(ctx, n.Id, "u2")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestNotificationRepository_ListOrderNewestFirstTieByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	old := seed(t, db, "u1", base, false)
	tieA := seed(t, db, "u1", base.Add(time.Minute), false)
	tieB := seed(t, db, "u1", base.Add(time.Minute), false)
	newest := seed(t, db, "u1", base.Add(time.Hour), true)
	seed(t, db, "u2", base.Add(2*time.Hour), false)

	list, err := repo.ListByRecipient(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 4)

	ids := []int64{list[0].Id, list[1].Id, list[2].Id, list[3].Id}
	assert.Equal(t, []int64{newest.Id, tieB.Id, tieA.Id, old.Id}, ids)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
}

func TestNotificationRepository_MarkReadIsScoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	n := seed(t, db, "u1", time.Now().UTC(), false)

	require.NoError(t, repo.MarkRead(ctx, n.Id, "intruder"))
	got, err := repo.GetByIDAndRecipient(ctx, n.Id, "u1")
	require.NoError(t, err)
	assert.False(t, got.IsRead)

	require.NoError(t, repo.MarkRead(ctx, n.Id, "u1"))
	got, err = repo.GetByIDAndRecipient(ctx, n.Id, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestNotificationRepository_MarkAllReadIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		seed(t, db, "u1", now.Add(time.Duration(i)*time.Second), false)
	}
	other := seed(t, db, "u2", now, false)

	n, err := repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	got, err := repo.GetByIDAndRecipient(ctx, other.Id, "u2")
	require.NoError(t, err)
	assert.False(t, got.IsRead)
}

func TestNotificationRepository_DeleteScoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	n := seed(t, db, "u1", time.Now().UTC(), false)

	affected, err := repo.DeleteByIDAndRecipient(ctx, n.Id, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	affected, err = repo.DeleteByIDAndRecipient(ctx, n.Id, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = repo.GetByIDAndRecipient(ctx, n.Id, "u1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
