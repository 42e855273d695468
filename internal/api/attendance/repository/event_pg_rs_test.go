package attendanceRepository

import (
	"FaceAttendance/internal/entity"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventColumns = []string{
	"id", "registered_face_id", "room_id", "note", "checkin_time", "is_check_out", "snapshot_url", "created_at", "updated_at",
}

func setupSQLRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgres(sqlx.NewDb(db, "postgres"), quietLogger()), mock
}

func TestSQLCreateEventInTransaction(t *testing.T) {
	repo, mock := setupSQLRepository(t)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_events")).
		WithArgs("01HXEVENT", "01HXFACE", "room-1", "Manual attendance recorded for room room-1",
			sqlmock.AnyArg(), true, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	client, err := repo.NewClient(true)
	require.NoError(t, err)

	err = client.Events.CreateEvent(context.Background(), entity.AttendanceEvent{
		ID:               "01HXEVENT",
		RegisteredFaceID: "01HXFACE",
		RoomID:           "room-1",
		Note:             "Manual attendance recorded for room room-1",
		CheckinTime:      at,
		IsCheckOut:       true,
		CreatedAt:        at,
		UpdatedAt:        at,
	})
	require.NoError(t, err)
	require.NoError(t, client.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCreateEventError(t *testing.T) {
	repo, mock := setupSQLRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_events")).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	client, err := repo.NewClient(true)
	require.NoError(t, err)

	err = client.Events.CreateEvent(context.Background(), entity.AttendanceEvent{ID: "dup"})
	assert.EqualError(t, err, "unique violation")
	require.NoError(t, client.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLListEvents(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("without room", func(t *testing.T) {
		repo, mock := setupSQLRepository(t)

		mock.ExpectQuery(`FROM attendance_events\s+ORDER BY checkin_time DESC\s+LIMIT \$1`).
			WithArgs(int64(50)).
			WillReturnRows(sqlmock.NewRows(eventColumns).
				AddRow("02", "01HXFACE", "room-1", "second", at.Add(time.Hour), false, "https://bucket/snapshots/02.jpg", at, at).
				AddRow("01", "01HXFACE", nil, nil, at, true, nil, at, at))

		client, err := repo.NewClient(false)
		require.NoError(t, err)

		events, err := client.Events.ListEvents(context.Background(), entity.AttendanceFilter{Limit: 50})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "02", events[0].ID)
		assert.Equal(t, "https://bucket/snapshots/02.jpg", events[0].SnapshotURL)
		assert.Equal(t, "", events[1].RoomID)
		assert.Equal(t, "", events[1].Note)
		assert.True(t, events[1].IsCheckOut)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without limit", func(t *testing.T) {
		repo, mock := setupSQLRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
			WithArgs(nil).
			WillReturnRows(sqlmock.NewRows(eventColumns))

		client, err := repo.NewClient(false)
		require.NoError(t, err)

		events, err := client.Events.ListEvents(context.Background(), entity.AttendanceFilter{})
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by room escapes like wildcards", func(t *testing.T) {
		repo, mock := setupSQLRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE room_id = $1")).
			WithArgs("R_1%", `%R\_1\%%`, int64(50)).
			WillReturnRows(sqlmock.NewRows(eventColumns).
				AddRow("01", "01HXFACE", nil, "Automatic check-in via facial recognition for room R_1%", at, false, nil, at, at))

		client, err := repo.NewClient(false)
		require.NoError(t, err)

		events, err := client.Events.ListEvents(context.Background(), entity.AttendanceFilter{RoomID: "R_1%", Limit: 50})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := setupSQLRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_events")).
			WillReturnError(errors.New("connection refused"))

		client, err := repo.NewClient(false)
		require.NoError(t, err)

		_, err = client.Events.ListEvents(context.Background(), entity.AttendanceFilter{Limit: 50})
		assert.EqualError(t, err, "connection refused")
	})
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"room-1", "%room-1%"},
		{"R_1", `%R\_1%`},
		{"100%", `%100\%%`},
		{`a\b`, `%a\\b%`},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, containsPattern(tc.in), tc.in)
	}
}
