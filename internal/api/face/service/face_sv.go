package faceService

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/response"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *faceService) CreateFace(ctx context.Context, req face.CreateFaceRequest) (*face.FaceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(req.Face) == "" {
		return nil, face.ErrImageRequired
	}
	if req.Name == "" {
		return nil, face.ErrNameRequired
	}

	registered, err := s.storeFace(ctx, req.Face, req.Name, req.Age, req.Code, "")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create registered face")
		return nil, err
	}

	resp := makeFaceResponse(registered)
	return &resp, nil
}

func (s *faceService) ListFaces(ctx context.Context) ([]face.FaceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.faceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	faces, err := repo.Faces.ListFaces(ctx)
	if err != nil {
		return nil, response.Wrap(http.StatusInternalServerError, err, "failed to fetch registered faces")
	}

	result := make([]face.FaceResponse, 0, len(faces))
	for _, f := range faces {
		result = append(result, makeFaceResponse(f))
	}

	return result, nil
}

func (s *faceService) FindByCode(ctx context.Context, code string) (entity.RegisteredFace, error) {
	repo, err := s.faceRepo.NewClient(false)
	if err != nil {
		return entity.RegisteredFace{}, err
	}

	return repo.Faces.GetFaceByCode(ctx, code)
}

// storeFace writes one identity record. Names are not unique.
func (s *faceService) storeFace(ctx context.Context, image, name string, age *int, code, email string) (entity.RegisteredFace, error) {
	repo, err := s.faceRepo.NewClient(true)
	if err != nil {
		return entity.RegisteredFace{}, err
	}
	defer repo.Rollback()

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.RegisteredFace{}, err
	}

	registered := entity.RegisteredFace{
		ID:        id,
		Face:      image,
		Name:      name,
		Age:       age,
		Code:      code,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.Faces.CreateFace(ctx, registered); err != nil {
		return entity.RegisteredFace{}, response.Wrap(http.StatusInternalServerError, err, "failed to save registered face")
	}

	if err := repo.Commit(); err != nil {
		return entity.RegisteredFace{}, response.Wrap(http.StatusInternalServerError, err, "failed to save registered face")
	}

	return registered, nil
}

func makeFaceResponse(f entity.RegisteredFace) face.FaceResponse {
	return face.FaceResponse{
		ID:        f.ID,
		Face:      f.Face,
		Name:      f.Name,
		Age:       f.Age,
		Code:      f.Code,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
