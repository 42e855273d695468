package luxand

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultBaseURL = "https://api.luxand.cloud"

// ILuxand is the subset of the Luxand.cloud API the application talks to.
type ILuxand interface {
	SearchFace(ctx context.Context, image []byte) (SearchOutcome, error)
	SearchFaceLegacy(ctx context.Context, image []byte) (SearchOutcome, error)
	CreateSubject(ctx context.Context, name string) (Subject, error)
	AddSubjectPhoto(ctx context.Context, subjectUUID string, image []byte, store bool) error
	DeleteSubject(ctx context.Context, subjectID string) error
	ListSubjects(ctx context.Context) ([]jsoniter.RawMessage, error)
	MarkAttendance(ctx context.Context, image []byte, roomID string, checkOut bool) error
	RoomPresence(ctx context.Context, roomID string) (jsoniter.RawMessage, error)
}

// ObserveFunc receives the outcome of every provider call. Status is 0
// when the request never got a response.
type ObserveFunc func(operation string, status int, elapsed time.Duration)

type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observe    ObserveFunc
}

type client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	observe ObserveFunc
}

func New(cfg Config) ILuxand {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	observe := cfg.Observe
	if observe == nil {
		observe = func(string, int, time.Duration) {}
	}

	return &client{
		baseURL: baseURL,
		token:   cfg.Token,
		timeout: timeout,
		http:    httpClient,
		observe: observe,
	}
}

// UpstreamError is a non-2xx answer from the provider. The body is kept
// verbatim so callers can surface it.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Operation, e.StatusCode, e.Body)
}

// UpstreamFormatError is a 2xx answer whose body could not be decoded.
type UpstreamFormatError struct {
	Operation string
	Err       error
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("%s returned a malformed body: %v", e.Operation, e.Err)
}

func (e *UpstreamFormatError) Unwrap() error {
	return e.Err
}

// RejectedError is a 2xx answer with status "failure". Message is the
// provider's own text.
type RejectedError struct {
	Operation string
	Message   string
}

func (e *RejectedError) Error() string {
	return e.Message
}

type formFile struct {
	field    string
	filename string
	data     []byte
}

func (c *client) do(ctx context.Context, operation, method, path string, body io.Reader, contentType string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("token", c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(operation, 0, time.Since(start))
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return data, nil
}

func (c *client) doJSON(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode payload: %w", operation, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, operation, method, path, body, contentType)
}

func (c *client) doMultipart(ctx context.Context, operation, path string, fields map[string]string, files ...formFile) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("%s: write field %s: %w", operation, key, err)
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		header.Set("Content-Type", http.DetectContentType(f.data))
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("%s: create part %s: %w", operation, f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, fmt.Errorf("%s: write part %s: %w", operation, f.field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%s: close multipart: %w", operation, err)
	}

	return c.do(ctx, operation, http.MethodPost, path, &buf, writer.FormDataContentType())
}
