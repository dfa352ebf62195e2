package database

import (
	"context"
	"regexp"
	"testing"

	"meditation_notification_service/internal/domain/audience"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAllReturnsEveryProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM profiles")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))

	resolver := NewPostgresAudienceResolver(db)
	recipients, err := resolver.Resolve(context.Background(), audience.TypeAll, "")

	require.NoError(t, err)
	require.Len(t, recipients, 2)
	assert.Equal(t, a, recipients[0].UserID)
	assert.Equal(t, b, recipients[1].UserID)
}

func TestResolveCountryFiltersByCountry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM profiles WHERE country = $1")).
		WithArgs("JP").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

	resolver := NewPostgresAudienceResolver(db)
	recipients, err := resolver.Resolve(context.Background(), audience.TypeCountry, `{"country":"JP"}`)

	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, id, recipients[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveCountryWithEmptyFilterResolvesNobody(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	resolver := NewPostgresAudienceResolver(db)
	recipients, err := resolver.Resolve(context.Background(), audience.TypeCountry, `{}`)

	require.NoError(t, err)
	assert.Empty(t, recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveUsersRestrictsToExistingProfiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	known := uuid.New()
	unknown := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM profiles WHERE id = ANY($1::uuid[])")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(known.String()))

	resolver := NewPostgresAudienceResolver(db)
	filter := `{"user_ids":["` + known.String() + `","` + unknown.String() + `"]}`
	recipients, err := resolver.Resolve(context.Background(), audience.TypeUsers, filter)

	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, known, recipients[0].UserID)
}

func TestResolveUnknownAudienceTypeResolvesNobody(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	resolver := NewPostgresAudienceResolver(db)
	recipients, err := resolver.Resolve(context.Background(), "segment", `{"whatever":true}`)

	require.NoError(t, err)
	assert.Empty(t, recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveInvalidFilterIsAnError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	resolver := NewPostgresAudienceResolver(db)
	_, err = resolver.Resolve(context.Background(), audience.TypeCountry, `{not json`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid audience filter")
}
