package recognition

import (
	"FaceAttendance/internal/entity"
	"encoding/json"
	"time"
)

const (
	AttendanceTypeCheckIn  = "check-in"
	AttendanceTypeCheckOut = "check-out"

	WarningNotInLocalStore = "User recognized by Luxand but not found in local database"
)

type RecognizeRequest struct {
	Image  string `json:"image"`
	RoomID string `json:"roomId" conform:"trim"`
}

type RecognitionResult struct {
	Outcome        entity.OutcomeKind  `json:"outcome"`
	Recognized     bool                `json:"recognized"`
	FaceDetected   bool                `json:"faceDetected"`
	CanRegister    bool                `json:"canRegister"`
	User           string              `json:"user,omitempty"`
	UserID         string              `json:"userId,omitempty"`
	LuxandPersonID string              `json:"luxandPersonId,omitempty"`
	Confidence     float64             `json:"confidence,omitempty"`
	Message        string              `json:"message,omitempty"`
	Warning        string              `json:"warning,omitempty"`
	FaceLocation   *entity.BoundingBox `json:"faceLocation,omitempty"`
	Matches        []entity.FaceMatch  `json:"matches,omitempty"`
	RoomID         string              `json:"roomId,omitempty"`
	Timestamp      time.Time           `json:"timestamp"`

	AttendanceRecorded *bool  `json:"attendanceRecorded,omitempty"`
	AttendanceSkipped  bool   `json:"attendanceSkipped,omitempty"`
	AttendanceType     string `json:"attendanceType,omitempty"`
	AttendanceRoomID   string `json:"attendanceRoomId,omitempty"`
	AttendanceID       string `json:"attendanceId,omitempty"`
	IsCheckOut         bool   `json:"isCheckOut,omitempty"`
	AttendanceError    string `json:"attendanceError,omitempty"`
}

type ConnectionTestResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	SubjectCount int               `json:"subjectCount"`
	Data         []json.RawMessage `json:"data"`
}
