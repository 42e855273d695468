package face

import (
	"FaceAttendance/pkg/response"
	"net/http"
)

var (
	ErrFaceNotFound     = response.NewError(http.StatusNotFound, "registered face not found")
	ErrImageRequired    = response.NewError(http.StatusBadRequest, "image is required")
	ErrNameRequired     = response.NewError(http.StatusBadRequest, "name is required")
	ErrInvalidImage     = response.NewError(http.StatusBadRequest, "image must be a base64 encoded picture")
	ErrPersonIDRequired = response.NewError(http.StatusBadRequest, "luxandPersonId is required")
)
