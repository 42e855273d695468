package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/response"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *attendanceService) CreateCheckin(ctx context.Context, req attendance.CreateCheckinRequest) (*attendance.CheckinResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if req.UserID == "" {
		return nil, attendance.ErrUserIDRequired
	}

	user, err := s.lookupUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	checkinTime := time.Now()
	if req.CheckinTime != nil && !req.CheckinTime.IsZero() {
		checkinTime = *req.CheckinTime
	}

	event, err := s.writeEvent(ctx, entity.AttendanceEvent{
		RegisteredFaceID: user.ID,
		Note:             req.Note,
		CheckinTime:      checkinTime,
	}, nil)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create checkin")
		return nil, err
	}

	resp := makeCheckinResponse(event, user.Name)
	return &resp, nil
}

func (s *attendanceService) ListCheckins(ctx context.Context) (*attendance.CheckinListResponse, error) {
	events, err := s.listEvents(ctx, entity.AttendanceFilter{})
	if err != nil {
		return nil, err
	}

	names, err := s.resolveNames(ctx, events)
	if err != nil {
		return nil, err
	}

	data := make([]attendance.CheckinResponse, 0, len(events))
	for _, event := range events {
		data = append(data, makeCheckinResponse(event, names[event.RegisteredFaceID]))
	}

	return &attendance.CheckinListResponse{
		Success: true,
		Data:    data,
	}, nil
}

func (s *attendanceService) RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (*attendance.RecordAttendanceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if req.UserID == "" {
		return nil, attendance.ErrUserIDRequired
	}

	user, err := s.lookupUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	room := req.RoomID
	if room == "" {
		room = "unknown"
	}

	event, err := s.writeEvent(ctx, entity.AttendanceEvent{
		RegisteredFaceID: user.ID,
		RoomID:           req.RoomID,
		Note:             fmt.Sprintf("Manual attendance recorded for room %s", room),
		CheckinTime:      time.Now(),
	}, nil)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"error":      err.Error(),
		}).Error("Failed to record attendance")
		return nil, err
	}

	s.publish(event, user.Name)

	return &attendance.RecordAttendanceResponse{
		Success: true,
		Message: fmt.Sprintf("%s checked in successfully", user.Name),
		Checkin: makeCheckinResponse(event, user.Name),
	}, nil
}

func (s *attendanceService) lookupUser(ctx context.Context, id string) (entity.RegisteredFace, error) {
	repo, err := s.faceRepo.NewClient(false)
	if err != nil {
		return entity.RegisteredFace{}, err
	}

	user, err := repo.Faces.GetFaceByID(ctx, id)
	if err != nil {
		if errors.Is(err, face.ErrFaceNotFound) {
			return entity.RegisteredFace{}, attendance.ErrUserNotFound
		}
		return entity.RegisteredFace{}, response.Wrap(http.StatusInternalServerError, err, "failed to look up user")
	}

	return user, nil
}

// resolveNames maps face ids to names. Ids without a record are labelled
// as unknown users.
func (s *attendanceService) resolveNames(ctx context.Context, events []entity.AttendanceEvent) (map[string]string, error) {
	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		if _, ok := seen[event.RegisteredFaceID]; ok {
			continue
		}
		seen[event.RegisteredFaceID] = struct{}{}
		ids = append(ids, event.RegisteredFaceID)
	}

	repo, err := s.faceRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	faces, err := repo.Faces.GetFacesByIDs(ctx, ids)
	if err != nil {
		return nil, response.Wrap(http.StatusInternalServerError, err, "failed to fetch users")
	}

	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = attendance.UnknownUserName
	}
	for _, f := range faces {
		if f.Name != "" {
			names[f.ID] = f.Name
		}
	}

	return names, nil
}

func makeCheckinResponse(event entity.AttendanceEvent, userName string) attendance.CheckinResponse {
	return attendance.CheckinResponse{
		ID:          event.ID,
		UserID:      event.RegisteredFaceID,
		UserName:    userName,
		RoomID:      event.RoomID,
		CheckinTime: event.CheckinTime,
		Note:        event.Note,
		IsCheckOut:  event.IsCheckOut,
		CreatedAt:   event.CreatedAt,
	}
}
