package attendance

import (
	"FaceAttendance/pkg/response"
	"net/http"
)

var (
	ErrUserNotFound   = response.NewError(http.StatusNotFound, "User not found")
	ErrUserIDRequired = response.NewError(http.StatusBadRequest, "User ID is required")
)
