package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	attendanceRepository "FaceAttendance/internal/api/attendance/repository"
	"FaceAttendance/internal/api/events"
	"FaceAttendance/internal/api/face"
	faceRepository "FaceAttendance/internal/api/face/repository"
	"FaceAttendance/internal/entity"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/response"
	"FaceAttendance/pkg/s3"
	"FaceAttendance/pkg/utils"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	checkInRoom  = "7e20a2de-3aa8-11f0-8493-0242ac160002"
	checkOutRoom = "237602cf-e844-11ee-8061-0242ac160003"
)

type fakeFaces struct {
	mu    sync.Mutex
	faces map[string]entity.RegisteredFace
}

func (f *fakeFaces) CreateFace(_ context.Context, rf entity.RegisteredFace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faces[rf.ID] = rf
	return nil
}

func (f *fakeFaces) GetFaceByID(_ context.Context, id string) (entity.RegisteredFace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rf, ok := f.faces[id]
	if !ok {
		return entity.RegisteredFace{}, face.ErrFaceNotFound
	}
	return rf, nil
}

func (f *fakeFaces) GetFaceByCode(_ context.Context, code string) (entity.RegisteredFace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rf := range f.faces {
		if rf.Code == code {
			return rf, nil
		}
	}
	return entity.RegisteredFace{}, face.ErrFaceNotFound
}

func (f *fakeFaces) GetFacesByIDs(_ context.Context, ids []string) ([]entity.RegisteredFace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.RegisteredFace
	for _, id := range ids {
		if rf, ok := f.faces[id]; ok {
			out = append(out, rf)
		}
	}
	return out, nil
}

func (f *fakeFaces) ListFaces(_ context.Context) ([]entity.RegisteredFace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.RegisteredFace, 0, len(f.faces))
	for _, rf := range f.faces {
		out = append(out, rf)
	}
	return out, nil
}

type fakeFaceRepo struct {
	faces *fakeFaces
}

func (r *fakeFaceRepo) NewClient(_ bool) (faceRepository.Client, error) {
	return faceRepository.Client{
		Faces:    r.faces,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeEvents struct {
	mu      sync.Mutex
	events  []entity.AttendanceEvent
	failErr error
}

func (f *fakeEvents) CreateEvent(_ context.Context, event entity.AttendanceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) ListEvents(_ context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.AttendanceEvent
	for _, e := range f.events {
		if filter.RoomID != "" && e.RoomID != filter.RoomID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckinTime.After(out[j].CheckinTime) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeAttendanceRepo struct {
	events *fakeEvents
}

func (r *fakeAttendanceRepo) NewClient(_ bool) (attendanceRepository.Client, error) {
	return attendanceRepository.Client{
		Events:   r.events,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type published struct {
	eventType events.EventType
	payload   interface{}
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *fakePublisher) Publish(eventType events.EventType, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{eventType, payload})
}

type fakeS3 struct {
	uploads map[string][]byte
	deleted []string
}

func (f *fakeS3) UploadSnapshot(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.uploads[key] = data
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

func (f *fakeS3) PresignUrl(fileUrl string) (string, error) {
	return fileUrl + "?signed=1", nil
}

func (f *fakeS3) DeleteFile(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	svc       IAttendanceService
	faces     *fakeFaces
	events    *fakeEvents
	publisher *fakePublisher
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupService(t *testing.T, provider luxand.ILuxand, s3Client *fakeS3) fixture {
	t.Helper()

	faces := &fakeFaces{faces: map[string]entity.RegisteredFace{}}
	evs := &fakeEvents{}
	pub := &fakePublisher{}

	var storage s3.ItfS3
	if s3Client != nil {
		storage = s3Client
	}

	svc := &attendanceService{
		log:            newLogger(),
		attendanceRepo: &fakeAttendanceRepo{events: evs},
		faceRepo:       &fakeFaceRepo{faces: faces},
		luxand:         provider,
		s3Client:       storage,
		publisher:      pub,
		utils:          utils.New(),
		rooms:          Rooms{AttendanceRoomID: checkInRoom, CheckoutRoomID: checkOutRoom},
	}

	return fixture{svc: svc, faces: faces, events: evs, publisher: pub}
}

func setupPresenceProvider(t *testing.T, status int, body string) (luxand.ILuxand, *string) {
	t.Helper()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return luxand.New(luxand.Config{BaseURL: srv.URL, Token: "test-token"}), &gotPath
}

func TestListAttendanceLabelsMissingIdentity(t *testing.T) {
	fx := setupService(t, nil, nil)
	now := time.Now()

	fx.faces.faces["01ALICE"] = entity.RegisteredFace{ID: "01ALICE", Name: "Alice"}
	fx.events.events = []entity.AttendanceEvent{
		{ID: "e1", RegisteredFaceID: "01ALICE", CheckinTime: now.Add(-time.Minute), Note: "first"},
		{ID: "e2", RegisteredFaceID: "01GONE", CheckinTime: now, Note: "second"},
	}

	resp, err := fx.svc.ListAttendance(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "e2", resp.AttendanceRecords[0].ID)
	assert.Equal(t, attendance.UnknownUserName, resp.AttendanceRecords[0].UserName)
	assert.Equal(t, "Alice", resp.AttendanceRecords[1].UserName)
}

func TestListAttendancePresignsSnapshots(t *testing.T) {
	storage := &fakeS3{uploads: map[string][]byte{}}
	fx := setupService(t, nil, storage)

	fx.faces.faces["01ALICE"] = entity.RegisteredFace{ID: "01ALICE", Name: "Alice"}
	fx.events.events = []entity.AttendanceEvent{
		{ID: "e1", RegisteredFaceID: "01ALICE", CheckinTime: time.Now(), SnapshotURL: "https://bucket.s3.amazonaws.com/snapshots/e1.jpg"},
	}

	resp, err := fx.svc.ListAttendance(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, resp.AttendanceRecords, 1)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/snapshots/e1.jpg?signed=1", resp.AttendanceRecords[0].SnapshotURL)
}

func TestRoomPresenceEmptyBody(t *testing.T) {
	provider, gotPath := setupPresenceProvider(t, http.StatusOK, "  \n")
	fx := setupService(t, provider, nil)

	resp, err := fx.svc.RoomPresence(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, checkInRoom, resp.RoomID)
	assert.Equal(t, attendance.RoomTypeCheckIn, resp.RoomType)
	assert.JSONEq(t, `[]`, string(resp.AttendanceData))
	assert.Equal(t, "/attendance/room/"+checkInRoom+"/presence", *gotPath)
}

func TestRoomPresenceCheckoutRoom(t *testing.T) {
	provider, _ := setupPresenceProvider(t, http.StatusOK, `[{"name":"Alice"}]`)
	fx := setupService(t, provider, nil)

	resp, err := fx.svc.RoomPresence(context.Background(), checkOutRoom)
	require.NoError(t, err)

	assert.Equal(t, attendance.RoomTypeCheckOut, resp.RoomType)
	assert.JSONEq(t, `[{"name":"Alice"}]`, string(resp.AttendanceData))
}

func TestRoomPresenceUpstreamError(t *testing.T) {
	provider, _ := setupPresenceProvider(t, http.StatusUnauthorized, "invalid token")
	fx := setupService(t, provider, nil)

	_, err := fx.svc.RoomPresence(context.Background(), checkInRoom)

	var upstreamErr *luxand.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestRecordAttendanceUnknownUser(t *testing.T) {
	fx := setupService(t, nil, nil)

	_, err := fx.svc.RecordAttendance(context.Background(), attendance.RecordAttendanceRequest{UserID: "missing", RoomID: checkInRoom})

	require.ErrorIs(t, err, attendance.ErrUserNotFound)
	assert.Equal(t, http.StatusNotFound, response.StatusCode(err))
	assert.Empty(t, fx.events.events)
}

func TestRecordAttendanceRequiresUser(t *testing.T) {
	fx := setupService(t, nil, nil)

	_, err := fx.svc.RecordAttendance(context.Background(), attendance.RecordAttendanceRequest{})
	assert.ErrorIs(t, err, attendance.ErrUserIDRequired)
}

func TestRecordAttendanceWritesManualNote(t *testing.T) {
	fx := setupService(t, nil, nil)
	fx.faces.faces["01ALICE"] = entity.RegisteredFace{ID: "01ALICE", Name: "Alice"}

	resp, err := fx.svc.RecordAttendance(context.Background(), attendance.RecordAttendanceRequest{UserID: "01ALICE", RoomID: "R1"})
	require.NoError(t, err)

	assert.Equal(t, "Alice checked in successfully", resp.Message)
	require.Len(t, fx.events.events, 1)
	assert.Equal(t, "Manual attendance recorded for room R1", fx.events.events[0].Note)
	assert.Equal(t, "R1", fx.events.events[0].RoomID)
	require.Len(t, fx.publisher.sent, 1)
	assert.Equal(t, events.TypeAttendance, fx.publisher.sent[0].eventType)
}

func TestRecordArchivesSnapshot(t *testing.T) {
	storage := &fakeS3{uploads: map[string][]byte{}}
	fx := setupService(t, nil, storage)
	fx.faces.faces["01ALICE"] = entity.RegisteredFace{ID: "01ALICE", Name: "Alice"}

	event, err := fx.svc.Record(context.Background(), attendance.RecordInput{
		FaceID:     "01ALICE",
		RoomID:     checkInRoom,
		Note:       "Automatic check-out via facial recognition for room " + checkInRoom,
		IsCheckOut: true,
		Snapshot:   &attendance.Snapshot{Data: []byte{0xff, 0xd8, 0xff}, MimeType: "image/jpeg", Ext: ".jpg"},
	})
	require.NoError(t, err)

	assert.True(t, event.IsCheckOut)
	assert.True(t, strings.HasPrefix(event.SnapshotURL, "https://bucket.s3.amazonaws.com/snapshots/"))
	assert.Contains(t, storage.uploads, "snapshots/"+event.ID+".jpg")
}

func TestRecordDiscardsSnapshotWhenWriteFails(t *testing.T) {
	storage := &fakeS3{uploads: map[string][]byte{}}
	fx := setupService(t, nil, storage)
	fx.faces.faces["01ALICE"] = entity.RegisteredFace{ID: "01ALICE", Name: "Alice"}
	fx.events.failErr = errors.New("disk full")

	_, err := fx.svc.Record(context.Background(), attendance.RecordInput{
		FaceID:   "01ALICE",
		RoomID:   checkInRoom,
		Note:     "Automatic check-in via facial recognition for room " + checkInRoom,
		Snapshot: &attendance.Snapshot{Data: []byte{0xff, 0xd8, 0xff}, MimeType: "image/jpeg", Ext: ".jpg"},
	})
	require.Error(t, err)

	require.Len(t, storage.uploads, 1)
	require.Len(t, storage.deleted, 1)
	_, uploaded := storage.uploads[storage.deleted[0]]
	assert.True(t, uploaded)
}

func TestRecordRejectsVanishedIdentity(t *testing.T) {
	fx := setupService(t, nil, nil)

	_, err := fx.svc.Record(context.Background(), attendance.RecordInput{FaceID: "gone", RoomID: checkInRoom})

	assert.ErrorIs(t, err, attendance.ErrUserNotFound)
	assert.Empty(t, fx.events.events)
}

func TestCreateCheckinKeepsGivenTime(t *testing.T) {
	fx := setupService(t, nil, nil)
	fx.faces.faces["01ALICE"] = entity.RegisteredFace{ID: "01ALICE", Name: "Alice"}
	at := time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC)

	resp, err := fx.svc.CreateCheckin(context.Background(), attendance.CreateCheckinRequest{UserID: "01ALICE", CheckinTime: &at, Note: "early"})
	require.NoError(t, err)

	assert.True(t, resp.CheckinTime.Equal(at))
	assert.Equal(t, "Alice", resp.UserName)

	list, err := fx.svc.ListCheckins(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "early", list.Data[0].Note)
}
