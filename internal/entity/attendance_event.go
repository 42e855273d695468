package entity

import "time"

type AttendanceEvent struct {
	ID               string
	RegisteredFaceID string
	RoomID           string
	Note             string
	CheckinTime      time.Time
	IsCheckOut       bool
	SnapshotURL      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type AttendanceFilter struct {
	RoomID string
	Limit  int
}
