package attendance

import (
	"encoding/json"
	"time"
)

const (
	RoomTypeCheckIn  = "check-in"
	RoomTypeCheckOut = "check-out"

	UnknownUserName = "Unknown User"
)

type CreateCheckinRequest struct {
	UserID      string     `json:"userId" conform:"trim"`
	CheckinTime *time.Time `json:"checkinTime"`
	Note        string     `json:"note" conform:"trim" validate:"max=1024"`
}

type CheckinResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName,omitempty"`
	RoomID      string    `json:"roomId,omitempty"`
	CheckinTime time.Time `json:"checkinTime"`
	Note        string    `json:"note"`
	IsCheckOut  bool      `json:"isCheckOut"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CheckinListResponse struct {
	Success bool              `json:"success"`
	Data    []CheckinResponse `json:"data"`
}

type RecordAttendanceRequest struct {
	UserID string `json:"userId" conform:"trim"`
	RoomID string `json:"roomId" conform:"trim"`
}

type RecordAttendanceResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Checkin CheckinResponse `json:"checkin"`
}

type AttendanceRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	RoomID      string    `json:"roomId,omitempty"`
	CheckinTime time.Time `json:"checkinTime"`
	Note        string    `json:"note"`
	IsCheckOut  bool      `json:"isCheckOut"`
	SnapshotURL string    `json:"snapshotUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type AttendanceListResponse struct {
	Success           bool               `json:"success"`
	AttendanceRecords []AttendanceRecord `json:"attendanceRecords"`
	Count             int                `json:"count"`
}

type RoomPresenceResponse struct {
	Success        bool            `json:"success"`
	RoomID         string          `json:"roomId"`
	RoomType       string          `json:"roomType"`
	AttendanceData json.RawMessage `json:"attendanceData"`
}

// Snapshot is the captured frame kept alongside an automatic attendance
// event when object storage is configured.
type Snapshot struct {
	Data     []byte
	MimeType string
	Ext      string
}

type RecordInput struct {
	FaceID     string
	RoomID     string
	Note       string
	IsCheckOut bool
	Snapshot   *Snapshot
}
