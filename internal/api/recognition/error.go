package recognition

import (
	"FaceAttendance/pkg/response"
	"net/http"
)

var (
	ErrImageRequired = response.NewError(http.StatusBadRequest, "No image provided")
	ErrInvalidImage  = response.NewError(http.StatusBadRequest, "Invalid image payload")
)
