package faceService

import (
	"FaceAttendance/internal/api/events"
	"FaceAttendance/internal/api/face"
	faceRepository "FaceAttendance/internal/api/face/repository"
	"FaceAttendance/internal/entity"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/utils"
	"context"

	"github.com/sirupsen/logrus"
)

type IFaceService interface {
	CreateFace(ctx context.Context, req face.CreateFaceRequest) (*face.FaceResponse, error)
	ListFaces(ctx context.Context) ([]face.FaceResponse, error)
	FindByCode(ctx context.Context, code string) (entity.RegisteredFace, error)
	RegisterFace(ctx context.Context, req face.RegisterFaceRequest) (*face.RegisterFaceResponse, error)
	RemoveFace(ctx context.Context, req face.RemoveFaceRequest) (*face.RemoveFaceResponse, error)
}

type faceService struct {
	log       *logrus.Logger
	faceRepo  faceRepository.Repository
	luxand    luxand.ILuxand
	publisher events.Publisher
	utils     utils.IUtils
}

func NewFaceService(
	log *logrus.Logger,
	faceRepo faceRepository.Repository,
	luxandClient luxand.ILuxand,
	publisher events.Publisher,
	utils utils.IUtils,
) IFaceService {
	return &faceService{
		log:       log,
		faceRepo:  faceRepo,
		luxand:    luxandClient,
		publisher: publisher,
		utils:     utils,
	}
}
