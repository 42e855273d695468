package faceService

import (
	"FaceAttendance/internal/api/events"
	"FaceAttendance/internal/api/face"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/response"
	"FaceAttendance/pkg/utils"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// RegisterFace enrolls a person with the provider first and then keeps a
// local copy keyed by the provider uuid. A failure after the provider call
// leaves the provider subject behind; it is logged, not undone.
func (s *faceService) RegisterFace(ctx context.Context, req face.RegisterFaceRequest) (*face.RegisterFaceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(req.Image) == "" {
		return nil, face.ErrImageRequired
	}
	if req.Name == "" {
		return nil, face.ErrNameRequired
	}

	img, err := s.utils.DecodeImagePayload(req.Image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected registration image")
		if errors.Is(err, utils.ErrEmptyImage) {
			return nil, face.ErrImageRequired
		}
		return nil, face.ErrInvalidImage
	}

	subject, err := s.luxand.CreateSubject(ctx, req.Name)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create provider subject")

		var rejected *luxand.RejectedError
		if errors.As(err, &rejected) {
			return nil, response.Wrap(http.StatusBadRequest, err, "Failed to create person")
		}
		return nil, err
	}

	store := req.Store != "0"
	if err := s.luxand.AddSubjectPhoto(ctx, subject.UUID, img.Data, store); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"subject_uuid": subject.UUID,
			"error":        err.Error(),
		}).Error("Failed to add photo to provider subject, subject left without photo")
		return nil, err
	}

	registered, err := s.storeFace(ctx, s.utils.EncodeDataURL(img), req.Name, nil, subject.UUID, req.Email)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"subject_uuid": subject.UUID,
			"error":        err.Error(),
		}).Error("Provider subject created but local record failed")
		return nil, err
	}

	user := face.RegisteredUser{
		ID:             registered.ID,
		Name:           registered.Name,
		Email:          registered.Email,
		FaceID:         subject.ID,
		LuxandPersonID: subject.UUID,
		RegisteredAt:   registered.CreatedAt,
	}

	if s.publisher != nil {
		s.publisher.Publish(events.TypeRegistration, user)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"face_id":      registered.ID,
		"subject_uuid": subject.UUID,
	}).Info("Face registered")

	return &face.RegisterFaceResponse{
		Success: true,
		User:    user,
		Message: "Face registered successfully",
	}, nil
}

// RemoveFace deletes the provider subject only. Local records stay.
func (s *faceService) RemoveFace(ctx context.Context, req face.RemoveFaceRequest) (*face.RemoveFaceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if req.LuxandPersonID == "" {
		return nil, face.ErrPersonIDRequired
	}

	if err := s.luxand.DeleteSubject(ctx, req.LuxandPersonID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":       requestID,
			"luxand_person_id": req.LuxandPersonID,
			"error":            err.Error(),
		}).Error("Failed to remove provider subject")
		return nil, err
	}

	return &face.RemoveFaceResponse{
		Success:        true,
		Message:        "Face removed from recognition provider",
		LuxandPersonID: req.LuxandPersonID,
	}, nil
}
