package greeting

import (
	"FaceAttendance/pkg/response"
	"net/http"
)

var (
	ErrTextRequired      = response.NewError(http.StatusBadRequest, "Text is required")
	ErrSpeechUnavailable = response.NewError(http.StatusServiceUnavailable, "Speech synthesis is not configured")
)
