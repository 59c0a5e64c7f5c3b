package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestLog_AppendWritesRow(t *testing.T) {
	mockPG, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPG.Close()

	l := New(mockPG, nil, testLogger())

	userID := uuid.New()
	episodeID := uuid.New()

	mockPG.ExpectExec("INSERT INTO engagements").
		WithArgs(pgxmock.AnyArg(), userID, episodeID, models.EngagementBookmark, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = l.Append(context.Background(), models.Engagement{
		UserID:    userID,
		EpisodeID: episodeID,
		Type:      models.EngagementBookmark,
	})
	require.NoError(t, err)
	assert.NoError(t, mockPG.ExpectationsWereMet())
}

func TestLog_SnapshotReturnsReverseChronological(t *testing.T) {
	mockPG, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPG.Close()

	l := New(mockPG, nil, testLogger())

	userID := uuid.New()
	e1ID, e2ID := uuid.New(), uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "user_id", "episode_id", "type", "timestamp"}).
		AddRow(uuid.New(), userID, e2ID, models.EngagementView, now).
		AddRow(uuid.New(), userID, e1ID, models.EngagementBookmark, now.Add(-time.Hour))

	mockPG.ExpectQuery("SELECT id, user_id, episode_id, type, timestamp").
		WithArgs(userID).
		WillReturnRows(rows)

	snapshot, err := l.Snapshot(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, e2ID, snapshot[0].EpisodeID)
	assert.Equal(t, e1ID, snapshot[1].EpisodeID)
}

func TestLog_ResetDeletesAllForUser(t *testing.T) {
	mockPG, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPG.Close()

	l := New(mockPG, nil, testLogger())
	userID := uuid.New()

	mockPG.ExpectExec("DELETE FROM engagements").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, l.Reset(context.Background(), userID))
	assert.NoError(t, mockPG.ExpectationsWereMet())
}

func TestExcludedIDs_CollectsEveryEngagementType(t *testing.T) {
	e1, e2, e3 := uuid.New(), uuid.New(), uuid.New()
	snapshot := []models.Engagement{
		{EpisodeID: e1, Type: models.EngagementView},
		{EpisodeID: e2, Type: models.EngagementBookmark},
		{EpisodeID: e3, Type: models.EngagementDismiss},
	}

	excluded := ExcludedIDs(snapshot)
	assert.Len(t, excluded, 3)
	_, ok := excluded[e2]
	assert.True(t, ok)
}
