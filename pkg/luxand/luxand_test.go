package luxand

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	Token       string
	ContentType string
	Form        map[string]string
	Files       map[string][]byte
	Body        []byte
}

func setupProvider(t *testing.T, handler func(w http.ResponseWriter, r *recordedRequest)) (ILuxand, *[]recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Token:       r.Header.Get("token"),
			ContentType: r.Header.Get("Content-Type"),
			Form:        map[string]string{},
			Files:       map[string][]byte{},
		}

		if err := r.ParseMultipartForm(10 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				rec.Form[k] = v[0]
			}
			for k, headers := range r.MultipartForm.File {
				f, err := headers[0].Open()
				require.NoError(t, err)
				data, _ := io.ReadAll(f)
				_ = f.Close()
				rec.Files[k] = data
			}
		} else {
			rec.Body, _ = io.ReadAll(r.Body)
		}

		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		handler(w, &rec)
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, Token: "secret-token", Timeout: 5 * time.Second})
	return client, &requests
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func TestSearchFaceSendsMultipartPhoto(t *testing.T) {
	client, requests := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		_, _ = w.Write([]byte(`[{"uuid":"u-1","name":"Ada","probability":0.98}]`))
	})

	outcome, err := client.SearchFace(context.Background(), jpegBytes)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/photo/search/v2", req.Path)
	assert.Equal(t, "secret-token", req.Token)
	assert.Equal(t, jpegBytes, req.Files["photo"])

	assert.Equal(t, ShapeProbabilityArray, outcome.Shape)
	best, ok := outcome.Best()
	require.True(t, ok)
	assert.Equal(t, "u-1", best.IdentityCode)
}

func TestSearchFaceLegacySendsJSON(t *testing.T) {
	client, requests := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		_, _ = w.Write([]byte(`[{"id":"7","similarity":0.75}]`))
	})

	outcome, err := client.SearchFaceLegacy(context.Background(), jpegBytes)
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "/photo/search", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	assert.JSONEq(t, `{"photo":"/9j/4AAQSkZJRgA=","limit":1,"threshold":0.7}`, string(req.Body))
	assert.Equal(t, ShapeLegacyArray, outcome.Shape)
}

func TestSearchFaceSurfacesUpstreamError(t *testing.T) {
	client, _ := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"failure","message":"invalid token"}`))
	})

	_, err := client.SearchFace(context.Background(), jpegBytes)
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, `Luxand recognition failed: 401 - {"status":"failure","message":"invalid token"}`, err.Error())
}

func TestSearchFaceMalformedBody(t *testing.T) {
	client, _ := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		_, _ = w.Write([]byte(`{"faces": [}`))
	})

	_, err := client.SearchFace(context.Background(), jpegBytes)

	var formatErr *UpstreamFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestCreateSubjectThenAddPhoto(t *testing.T) {
	client, requests := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		switch r.Path {
		case "/subject":
			_, _ = w.Write([]byte(`{"id": 1001, "uuid": "subj-uuid", "status": "success"}`))
		default:
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}
	})

	subject, err := client.CreateSubject(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, "1001", subject.ID)
	assert.Equal(t, "subj-uuid", subject.UUID)

	require.NoError(t, client.AddSubjectPhoto(context.Background(), subject.UUID, jpegBytes, true))

	require.Len(t, *requests, 2)
	assert.JSONEq(t, `{"name":"Ada"}`, string((*requests)[0].Body))
	assert.Equal(t, "/v2/person/subj-uuid", (*requests)[1].Path)
	assert.Equal(t, "1", (*requests)[1].Form["store"])
	assert.Equal(t, jpegBytes, (*requests)[1].Files["photos"])
}

func TestCreateSubjectFallsBackToID(t *testing.T) {
	client, _ := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		_, _ = w.Write([]byte(`{"id": "abc"}`))
	})

	subject, err := client.CreateSubject(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, "abc", subject.UUID)
}

func TestCreateSubjectReportsProviderFailure(t *testing.T) {
	client, _ := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		_, _ = w.Write([]byte(`{"status":"failure","message":"Subject limit reached"}`))
	})

	_, err := client.CreateSubject(context.Background(), "Ada")

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Subject limit reached", rejected.Message)
	assert.Equal(t, "Luxand subject creation", rejected.Operation)
	assert.EqualError(t, err, "Subject limit reached")
}

func TestDeleteAndListSubjects(t *testing.T) {
	client, requests := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":1,"name":"Ada"},{"id":2,"name":"Bob"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, client.DeleteSubject(context.Background(), "subj-1"))
	subjects, err := client.ListSubjects(context.Background())
	require.NoError(t, err)

	assert.Len(t, subjects, 2)
	assert.Equal(t, http.MethodDelete, (*requests)[0].Method)
	assert.Equal(t, "/subject/subj-1", (*requests)[0].Path)
}

func TestMarkAttendancePicksEndpoint(t *testing.T) {
	client, requests := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, client.MarkAttendance(context.Background(), jpegBytes, "room-1", false))
	require.NoError(t, client.MarkAttendance(context.Background(), jpegBytes, "room-1", true))

	assert.Equal(t, "/attendance/check/in", (*requests)[0].Path)
	assert.Equal(t, "/attendance/check/out", (*requests)[1].Path)
	assert.Equal(t, "room-1", (*requests)[1].Form["room"])
}

func TestRoomPresenceEmptyBody(t *testing.T) {
	client, requests := setupProvider(t, func(w http.ResponseWriter, r *recordedRequest) {
		w.WriteHeader(http.StatusOK)
	})

	raw, err := client.RoomPresence(context.Background(), "room-7")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
	assert.Equal(t, "/attendance/room/room-7/presence", (*requests)[0].Path)
}

func TestObserveReceivesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	var gotOp string
	var gotStatus int
	client := New(Config{
		BaseURL: srv.URL,
		Observe: func(operation string, status int, _ time.Duration) {
			gotOp, gotStatus = operation, status
		},
	})

	err := client.DeleteSubject(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "Luxand subject removal", gotOp)
	assert.Equal(t, http.StatusBadGateway, gotStatus)
}
