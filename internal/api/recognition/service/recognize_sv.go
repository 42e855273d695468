package recognitionService

import (
	"FaceAttendance/internal/api/attendance"
	"FaceAttendance/internal/api/events"
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/api/recognition"
	"FaceAttendance/internal/entity"
	"FaceAttendance/internal/observability"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/utils"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var errAttendanceSkipped = errors.New("attendance already recorded within the dedup window")

func (s *recognitionService) Recognize(ctx context.Context, req recognition.RecognizeRequest) (*recognition.RecognitionResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	img, err := s.utils.DecodeImagePayload(req.Image)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyImage) {
			return nil, recognition.ErrImageRequired
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected recognition image")
		return nil, recognition.ErrInvalidImage
	}

	search, err := s.search(ctx, img.Data)
	if err != nil {
		observability.RecognitionOutcomes.WithLabelValues("error").Inc()
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Face search failed")
		return nil, err
	}

	outcome := recognition.Classify(search, s.cfg.Threshold)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"shape":      outcome.Shape,
		"outcome":    outcome.Kind,
		"candidates": len(outcome.Candidates),
	}).Debug("Face search classified")

	result := &recognition.RecognitionResult{
		Outcome:      outcome.Kind,
		Recognized:   outcome.Recognized(),
		FaceDetected: outcome.FaceDetected,
		CanRegister:  outcome.CanRegister(),
		FaceLocation: outcome.FaceBox,
		Matches:      outcome.Candidates,
		RoomID:       req.RoomID,
		Timestamp:    s.now(),
	}

	switch outcome.Kind {
	case entity.OutcomeNoFace:
		result.Message = outcome.Message
		if result.Message == "" {
			result.Message = "No faces detected in the image"
		}
	case entity.OutcomeUnknownFace:
		result.Message = "Face detected but not recognized"
		if len(outcome.Candidates) > 0 {
			result.Message = "Face detected but confidence below threshold"
		}
	case entity.OutcomeRecognized:
		if err := s.resolveIdentity(ctx, req, img, outcome, result); err != nil {
			return nil, err
		}
	}

	observability.RecognitionOutcomes.WithLabelValues(string(outcome.Kind)).Inc()

	if s.publisher != nil {
		s.publisher.Publish(events.TypeRecognition, result)
	}

	return result, nil
}

func (s *recognitionService) search(ctx context.Context, image []byte) (luxand.SearchOutcome, error) {
	if s.cfg.SearchVersion == "v1" {
		return s.luxand.SearchFaceLegacy(ctx, image)
	}
	return s.luxand.SearchFace(ctx, image)
}

// resolveIdentity fills in the local identity for an accepted match and,
// for the tracked room, records attendance. Attendance failures are
// reported on the result and never fail the recognition.
func (s *recognitionService) resolveIdentity(ctx context.Context, req recognition.RecognizeRequest, img utils.Image, outcome entity.RecognitionOutcome, result *recognition.RecognitionResult) error {
	requestID := contextPkg.GetRequestID(ctx)
	best := outcome.Best

	result.LuxandPersonID = best.IdentityCode
	result.Confidence = best.Similarity
	result.User = best.Name

	user, err := s.faces.FindByCode(ctx, best.IdentityCode)
	if err != nil {
		if !errors.Is(err, face.ErrFaceNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"code":       best.IdentityCode,
				"error":      err.Error(),
			}).Error("Failed to look up recognized identity")
			return err
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"code":       best.IdentityCode,
		}).Warn(recognition.WarningNotInLocalStore)

		recorded := false
		result.Warning = recognition.WarningNotInLocalStore
		result.AttendanceRecorded = &recorded
		return nil
	}

	result.User = user.Name
	result.UserID = user.ID

	if s.cfg.TrackedRoomID == "" || req.RoomID != s.cfg.TrackedRoomID {
		result.Message = fmt.Sprintf("%s recognized", user.Name)
		return nil
	}

	checkOut := s.now().In(s.cfg.Location).Hour() >= s.cfg.CheckoutHour
	result.AttendanceType = recognition.AttendanceTypeCheckIn
	if checkOut {
		result.AttendanceType = recognition.AttendanceTypeCheckOut
	}
	result.AttendanceRoomID = s.cfg.AttendanceRoomID
	result.IsCheckOut = checkOut

	event, err := s.recordAttendance(ctx, user, req.RoomID, img, checkOut)

	recorded := err == nil
	result.AttendanceRecorded = &recorded

	switch {
	case errors.Is(err, errAttendanceSkipped):
		result.AttendanceSkipped = true
		result.Message = fmt.Sprintf("%s already recorded recently", user.Name)
	case err != nil:
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"face_id":    user.ID,
			"room_id":    req.RoomID,
			"error":      err.Error(),
		}).Error("Recognized but attendance recording failed")
		result.AttendanceError = err.Error()
		result.Message = fmt.Sprintf("%s recognized but attendance recording failed: %s", user.Name, err.Error())
	default:
		result.AttendanceID = event.ID
		verb := "checked in"
		if checkOut {
			verb = "checked out"
		}
		result.Message = fmt.Sprintf("%s %s successfully", user.Name, verb)
	}

	return nil
}

func (s *recognitionService) recordAttendance(ctx context.Context, user entity.RegisteredFace, roomID string, img utils.Image, checkOut bool) (entity.AttendanceEvent, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.redis != nil && s.cfg.DedupWindow > 0 {
		key := fmt.Sprintf("attendance:%s:%s", user.ID, roomID)
		acquired, err := s.redis.AcquireOnce(ctx, key, s.cfg.DedupWindow)
		if err != nil {
			// Dedup errors fail open.
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"key":        key,
				"error":      err.Error(),
			}).Warn("Attendance dedup check failed")
		} else if !acquired {
			observability.AttendanceWrites.WithLabelValues("skipped").Inc()
			return entity.AttendanceEvent{}, errAttendanceSkipped
		}
	}

	if !s.cfg.DisableProviderSync {
		if err := s.luxand.MarkAttendance(ctx, img.Data, s.cfg.AttendanceRoomID, checkOut); err != nil {
			observability.AttendanceWrites.WithLabelValues("error").Inc()
			return entity.AttendanceEvent{}, err
		}
	}

	kind := attendance.RoomTypeCheckIn
	if checkOut {
		kind = attendance.RoomTypeCheckOut
	}

	return s.attendance.Record(ctx, attendance.RecordInput{
		FaceID:     user.ID,
		RoomID:     roomID,
		Note:       fmt.Sprintf("Automatic %s via facial recognition for room %s", kind, roomID),
		IsCheckOut: checkOut,
		Snapshot: &attendance.Snapshot{
			Data:     img.Data,
			MimeType: img.MimeType,
			Ext:      img.Ext,
		},
	})
}
