package kiosk

import (
	"FaceAttendance/internal/api/attendance"
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/api/greeting"
	"FaceAttendance/internal/api/recognition"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// API is the slice of the server surface the kiosk drives.
type API interface {
	Detect(ctx context.Context, image, roomID string) (*recognition.RecognitionResult, error)
	Register(ctx context.Context, req face.RegisterFaceRequest) (*face.RegisterFaceResponse, error)
	Greeting(ctx context.Context, req greeting.GreetingRequest) (*greeting.GreetingResponse, error)
	Speech(ctx context.Context, text string) ([]byte, error)
	Attendance(ctx context.Context, roomID string) (*attendance.AttendanceListResponse, error)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient targets a server root such as http://localhost:3000.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) Detect(ctx context.Context, image, roomID string) (*recognition.RecognitionResult, error) {
	var out recognition.RecognitionResult
	err := c.postJSON(ctx, "/recognition/detect", recognition.RecognizeRequest{Image: image, RoomID: roomID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Register(ctx context.Context, req face.RegisterFaceRequest) (*face.RegisterFaceResponse, error) {
	var out face.RegisterFaceResponse
	if err := c.postJSON(ctx, "/faces/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Greeting(ctx context.Context, req greeting.GreetingRequest) (*greeting.GreetingResponse, error) {
	var out greeting.GreetingResponse
	if err := c.postJSON(ctx, "/greeting", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Speech(ctx context.Context, text string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/greeting/speech", greeting.SpeechRequest{Text: text})
}

func (c *APIClient) Attendance(ctx context.Context, roomID string) (*attendance.AttendanceListResponse, error) {
	path := "/attendance"
	if roomID != "" {
		path += "?roomId=" + url.QueryEscape(roomID)
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out attendance.AttendanceListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return &out, nil
}

func (c *APIClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := c.do(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
			apiErr.Code = envelope.Code
		}
		return nil, apiErr
	}

	return body, nil
}
