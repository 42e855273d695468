package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	"FaceAttendance/internal/api/events"
	"FaceAttendance/internal/entity"
	"FaceAttendance/internal/observability"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/log"
	"FaceAttendance/pkg/response"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const listAttendanceLimit = 50

// Record appends an automatic attendance event. The referenced identity must
// exist when the event is written.
func (s *attendanceService) Record(ctx context.Context, in attendance.RecordInput) (entity.AttendanceEvent, error) {
	requestID := contextPkg.GetRequestID(ctx)

	user, err := s.lookupUser(ctx, in.FaceID)
	if err != nil {
		observability.AttendanceWrites.WithLabelValues("error").Inc()
		return entity.AttendanceEvent{}, err
	}

	event := entity.AttendanceEvent{
		RegisteredFaceID: user.ID,
		RoomID:           in.RoomID,
		Note:             in.Note,
		CheckinTime:      time.Now(),
		IsCheckOut:       in.IsCheckOut,
	}

	event, err = s.writeEvent(ctx, event, in.Snapshot)
	if err != nil {
		observability.AttendanceWrites.WithLabelValues("error").Inc()
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"face_id":    user.ID,
			"error":      err.Error(),
		}).Error("Failed to record attendance event")
		return entity.AttendanceEvent{}, err
	}

	observability.AttendanceWrites.WithLabelValues("success").Inc()
	s.publish(event, user.Name)

	return event, nil
}

func (s *attendanceService) ListAttendance(ctx context.Context, roomID string) (*attendance.AttendanceListResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	events, err := s.listEvents(ctx, entity.AttendanceFilter{RoomID: roomID, Limit: listAttendanceLimit})
	if err != nil {
		return nil, err
	}

	names, err := s.resolveNames(ctx, events)
	if err != nil {
		return nil, err
	}

	records := make([]attendance.AttendanceRecord, 0, len(events))
	for _, event := range events {
		record := makeAttendanceRecord(event, names[event.RegisteredFaceID])

		if s.s3Client != nil && record.SnapshotURL != "" {
			presigned, err := s.s3Client.PresignUrl(record.SnapshotURL)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"event_id":   event.ID,
					"error":      err.Error(),
				}).Warn("Failed to presign snapshot url")
			} else {
				record.SnapshotURL = presigned
			}
		}

		records = append(records, record)
	}

	return &attendance.AttendanceListResponse{
		Success:           true,
		AttendanceRecords: records,
		Count:             len(records),
	}, nil
}

func (s *attendanceService) RoomPresence(ctx context.Context, roomID string) (*attendance.RoomPresenceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if roomID == "" {
		roomID = s.rooms.AttendanceRoomID
	}

	roomType := attendance.RoomTypeCheckIn
	if s.rooms.CheckoutRoomID != "" && roomID == s.rooms.CheckoutRoomID {
		roomType = attendance.RoomTypeCheckOut
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"room_id":    roomID,
		"room_type":  roomType,
	}).Debug("Fetching room presence")

	data, err := s.luxand.RoomPresence(ctx, roomID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"room_id":    roomID,
			"error":      err.Error(),
		}).Error("Failed to fetch room presence")
		return nil, err
	}

	return &attendance.RoomPresenceResponse{
		Success:        true,
		RoomID:         roomID,
		RoomType:       roomType,
		AttendanceData: json.RawMessage(data),
	}, nil
}

// writeEvent assigns an id and timestamps, archives the optional snapshot and
// stores the event.
func (s *attendanceService) writeEvent(ctx context.Context, event entity.AttendanceEvent, snapshot *attendance.Snapshot) (entity.AttendanceEvent, error) {
	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.AttendanceEvent{}, response.Wrap(http.StatusInternalServerError, err, "failed to generate attendance id")
	}

	event.ID = id
	event.CreatedAt = now
	event.UpdatedAt = now

	if snapshot != nil {
		event.SnapshotURL = s.archiveSnapshot(ctx, id, snapshot)
	}

	repo, err := s.attendanceRepo.NewClient(true)
	if err != nil {
		return entity.AttendanceEvent{}, response.Wrap(http.StatusInternalServerError, err, "failed to save attendance event")
	}
	defer repo.Rollback()

	if err := repo.Events.CreateEvent(ctx, event); err != nil {
		s.discardSnapshot(ctx, event.SnapshotURL)
		return entity.AttendanceEvent{}, response.Wrap(http.StatusInternalServerError, err, "failed to save attendance event")
	}

	if err := repo.Commit(); err != nil {
		return entity.AttendanceEvent{}, response.Wrap(http.StatusInternalServerError, err, "failed to save attendance event")
	}

	return event, nil
}

// archiveSnapshot returns the stored object location, or "" when storage is
// off or the upload fails. A failed upload never blocks the event.
func (s *attendanceService) archiveSnapshot(ctx context.Context, eventID string, snapshot *attendance.Snapshot) string {
	if s.s3Client == nil || len(snapshot.Data) == 0 {
		return ""
	}

	key := fmt.Sprintf("snapshots/%s%s", eventID, snapshot.Ext)
	location, err := s.s3Client.UploadSnapshot(ctx, key, snapshot.Data, snapshot.MimeType)
	if err != nil {
		log.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Failed to archive attendance snapshot")
		return ""
	}

	return location
}

// discardSnapshot removes an archived frame whose event was never stored.
func (s *attendanceService) discardSnapshot(ctx context.Context, location string) {
	if s.s3Client == nil || location == "" {
		return
	}

	key := location
	if i := strings.Index(location, "snapshots/"); i >= 0 {
		key = location[i:]
	}
	if err := s.s3Client.DeleteFile(ctx, key); err != nil {
		log.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Failed to discard orphaned snapshot")
	}
}

func (s *attendanceService) listEvents(ctx context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceEvent, error) {
	repo, err := s.attendanceRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	events, err := repo.Events.ListEvents(ctx, filter)
	if err != nil {
		return nil, response.Wrap(http.StatusInternalServerError, err, "failed to fetch attendance events")
	}

	return events, nil
}

func (s *attendanceService) publish(event entity.AttendanceEvent, userName string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.TypeAttendance, makeAttendanceRecord(event, userName))
}

func makeAttendanceRecord(event entity.AttendanceEvent, userName string) attendance.AttendanceRecord {
	return attendance.AttendanceRecord{
		ID:          event.ID,
		UserID:      event.RegisteredFaceID,
		UserName:    userName,
		RoomID:      event.RoomID,
		CheckinTime: event.CheckinTime,
		Note:        event.Note,
		IsCheckOut:  event.IsCheckOut,
		SnapshotURL: event.SnapshotURL,
		Timestamp:   event.CreatedAt,
	}
}
