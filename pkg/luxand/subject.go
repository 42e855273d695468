package luxand

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
)

type Subject struct {
	ID      string `json:"id"`
	UUID    string `json:"uuid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *client) CreateSubject(ctx context.Context, name string) (Subject, error) {
	body, err := c.doJSON(ctx, "Luxand subject creation", http.MethodPost, "/subject", map[string]string{"name": name})
	if err != nil {
		return Subject{}, err
	}

	var raw struct {
		ID      flexibleID `json:"id"`
		UUID    string     `json:"uuid"`
		Status  string     `json:"status"`
		Message string     `json:"message"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Subject{}, &UpstreamFormatError{Operation: "Luxand subject creation", Err: err}
	}

	if raw.Status == "failure" {
		message := raw.Message
		if message == "" {
			message = "Luxand API reported failure"
		}
		return Subject{}, &RejectedError{Operation: "Luxand subject creation", Message: message}
	}

	subject := Subject{
		ID:      string(raw.ID),
		UUID:    raw.UUID,
		Status:  raw.Status,
		Message: raw.Message,
	}
	if subject.UUID == "" {
		subject.UUID = subject.ID
	}
	if subject.UUID == "" {
		return Subject{}, &UpstreamFormatError{
			Operation: "Luxand subject creation",
			Err:       errors.New("response carries neither uuid nor id"),
		}
	}

	return subject, nil
}

func (c *client) AddSubjectPhoto(ctx context.Context, subjectUUID string, image []byte, store bool) error {
	storeFlag := "0"
	if store {
		storeFlag = "1"
	}

	_, err := c.doMultipart(ctx, "Luxand photo upload", "/v2/person/"+url.PathEscape(subjectUUID),
		map[string]string{"store": storeFlag},
		formFile{field: "photos", filename: "face.jpeg", data: image},
	)
	return err
}

func (c *client) DeleteSubject(ctx context.Context, subjectID string) error {
	_, err := c.do(ctx, "Luxand subject removal", http.MethodDelete, "/subject/"+url.PathEscape(subjectID), nil, "")
	return err
}

func (c *client) ListSubjects(ctx context.Context) ([]jsoniter.RawMessage, error) {
	body, err := c.do(ctx, "Luxand connection test", http.MethodGet, "/subject", nil, "")
	if err != nil {
		return nil, err
	}

	var subjects []jsoniter.RawMessage
	if err := json.Unmarshal(body, &subjects); err != nil {
		return nil, &UpstreamFormatError{Operation: "Luxand connection test", Err: err}
	}
	return subjects, nil
}
