package luxand

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
)

func (c *client) MarkAttendance(ctx context.Context, image []byte, roomID string, checkOut bool) error {
	path := "/attendance/check/in"
	if checkOut {
		path = "/attendance/check/out"
	}

	_, err := c.doMultipart(ctx, "Luxand attendance", path,
		map[string]string{"room": roomID},
		formFile{field: "photo", filename: "face.jpeg", data: image},
	)
	return err
}

// RoomPresence returns the raw presence document for a room. An empty
// body means nobody is present and yields an empty array.
func (c *client) RoomPresence(ctx context.Context, roomID string) (jsoniter.RawMessage, error) {
	body, err := c.do(ctx, "Luxand room presence", http.MethodGet,
		"/attendance/room/"+url.PathEscape(roomID)+"/presence", nil, "")
	if err != nil {
		return nil, err
	}

	return DecodePresence(body)
}

func DecodePresence(body []byte) (jsoniter.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return jsoniter.RawMessage("[]"), nil
	}

	if trimmed[0] != '[' && trimmed[0] != '{' {
		return nil, &UpstreamFormatError{Operation: "Luxand room presence", Err: errUnknownShape}
	}
	if !json.Valid(trimmed) {
		return nil, &UpstreamFormatError{Operation: "Luxand room presence", Err: errors.New("invalid JSON")}
	}

	return jsoniter.RawMessage(trimmed), nil
}
