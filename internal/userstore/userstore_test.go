package userstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestInterests_ReturnsRowFromDatabase(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	rows := pgxmock.NewRows([]string{"category_interests"}).
		AddRow([]string{"AI", "Macro"})
	mock.ExpectQuery("SELECT category_interests FROM users").
		WithArgs(userID).
		WillReturnRows(rows)

	s := New(mock, nil, testLogger())
	got := s.Interests(context.Background(), userID)

	assert.Equal(t, []string{"AI", "Macro"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterests_NoRowReturnsEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery("SELECT category_interests FROM users").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"category_interests"}))

	s := New(mock, nil, testLogger())
	got := s.Interests(context.Background(), userID)

	assert.Empty(t, got)
}

func TestInterests_QueryErrorDegradesToEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery("SELECT category_interests FROM users").
		WithArgs(userID).
		WillReturnError(assert.AnError)

	s := New(mock, nil, testLogger())
	got := s.Interests(context.Background(), userID)

	assert.Empty(t, got)
}
