//go:build integration

package postgres_test

import (
	"context"
	"io"
	"testing"
	"time"

	"FaceAttendance/database/postgres"
	attendanceRepository "FaceAttendance/internal/api/attendance/repository"
	"FaceAttendance/internal/api/face"
	faceRepository "FaceAttendance/internal/api/face/repository"
	"FaceAttendance/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) *sqlx.DB {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "attendance",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil || container == nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := postgres.New(postgres.Config{
		Host:     host,
		Port:     port.Port(),
		User:     "test",
		Password: "test",
		Name:     "attendance",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSchemaCreatesTables(t *testing.T) {
	db := setupTestContainer(t)

	_, err := db.Exec(`SELECT id, room_id, note FROM attendance_events LIMIT 1`)
	assert.NoError(t, err)
	_, err = db.Exec(`SELECT id, face, code FROM registered_faces LIMIT 1`)
	assert.NoError(t, err)
}

func TestFacesRepository(t *testing.T) {
	db := setupTestContainer(t)
	ctx := context.Background()
	repo := faceRepository.NewPostgres(db, quietLogger())
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	age := 36

	client, err := repo.NewClient(true)
	require.NoError(t, err)
	require.NoError(t, client.Faces.CreateFace(ctx, entity.RegisteredFace{
		ID: "01HXFACE000000000000000001", Face: "f1", Name: "Ada", Age: &age, Code: "uuid-1",
		CreatedAt: base, UpdatedAt: base,
	}))
	require.NoError(t, client.Faces.CreateFace(ctx, entity.RegisteredFace{
		ID: "01HXFACE000000000000000002", Face: "f2", Name: "Ada", Code: "uuid-1",
		CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, client.Commit())

	reader, err := repo.NewClient(false)
	require.NoError(t, err)

	latest, err := reader.Faces.GetFaceByCode(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "01HXFACE000000000000000002", latest.ID)
	assert.Nil(t, latest.Age)

	first, err := reader.Faces.GetFaceByID(ctx, "01HXFACE000000000000000001")
	require.NoError(t, err)
	require.NotNil(t, first.Age)
	assert.Equal(t, 36, *first.Age)

	_, err = reader.Faces.GetFaceByCode(ctx, "missing")
	assert.ErrorIs(t, err, face.ErrFaceNotFound)

	byIDs, err := reader.Faces.GetFacesByIDs(ctx, []string{"01HXFACE000000000000000001", "01HXFACE000000000000000002"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	for _, f := range byIDs {
		assert.Empty(t, f.Face)
	}

	all, err := reader.Faces.ListFaces(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "01HXFACE000000000000000002", all[0].ID)
}

func TestEventsRepository(t *testing.T) {
	db := setupTestContainer(t)
	ctx := context.Background()
	repo := attendanceRepository.NewPostgres(db, quietLogger())
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	events := []entity.AttendanceEvent{
		{ID: "E1", RoomID: "R_1", Note: "Automatic check-in via facial recognition for room R_1", CheckinTime: base},
		{ID: "E2", RoomID: "RX1", Note: "Automatic check-in via facial recognition for room RX1", CheckinTime: base.Add(time.Minute)},
		{ID: "E3", Note: "Manual attendance recorded for room r_1", CheckinTime: base.Add(2 * time.Minute)},
		{ID: "E4", Note: "Manual attendance recorded for room RX1", CheckinTime: base.Add(3 * time.Minute)},
		{ID: "E5", RoomID: "other", Note: "mentions R_1 but belongs elsewhere", CheckinTime: base.Add(4 * time.Minute)},
	}

	client, err := repo.NewClient(true)
	require.NoError(t, err)
	for _, e := range events {
		e.RegisteredFaceID = "01HXFACE000000000000000001"
		e.CreatedAt = e.CheckinTime
		e.UpdatedAt = e.CheckinTime
		require.NoError(t, client.Events.CreateEvent(ctx, e))
	}
	require.NoError(t, client.Commit())

	reader, err := repo.NewClient(false)
	require.NoError(t, err)

	ids := func(list []entity.AttendanceEvent) []string {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, e.ID)
		}
		return out
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := reader.Events.ListEvents(ctx, entity.AttendanceFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"E5", "E4", "E3", "E2", "E1"}, ids(got))
	})

	t.Run("limit", func(t *testing.T) {
		got, err := reader.Events.ListEvents(ctx, entity.AttendanceFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"E5", "E4"}, ids(got))
	})

	t.Run("room with underscore matches literally", func(t *testing.T) {
		got, err := reader.Events.ListEvents(ctx, entity.AttendanceFilter{RoomID: "R_1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"E3", "E1"}, ids(got))
	})

	t.Run("room filter honours limit", func(t *testing.T) {
		got, err := reader.Events.ListEvents(ctx, entity.AttendanceFilter{RoomID: "RX1", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"E4"}, ids(got))
	})
}
