package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByUserReturnsAllEndpoints(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "endpoint", "p256dh", "auth", "created_at"}).
		AddRow(uuid.New().String(), userID.String(), "https://push.example.com/a", "key-a", "auth-a", now).
		AddRow(uuid.New().String(), userID.String(), "https://push.example.com/b", "key-b", "auth-b", now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, endpoint, p256dh, auth, created_at")).
		WithArgs(userID).
		WillReturnRows(rows)

	repo := NewPostgresSubscriptionRepository(db)
	subs, err := repo.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "https://push.example.com/a", subs[0].Endpoint)
	assert.Equal(t, userID, subs[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserNoSubscriptions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, endpoint, p256dh, auth, created_at")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "endpoint", "p256dh", "auth", "created_at"}))

	repo := NewPostgresSubscriptionRepository(db)
	subs, err := repo.ListByUser(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, subs)
}
