package faceHandler

import (
	faceService "FaceAttendance/internal/api/face/service"
	"FaceAttendance/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type FaceHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	faceService faceService.IFaceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	fs faceService.IFaceService,
) *FaceHandler {
	return &FaceHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		faceService: fs,
	}
}

func (h *FaceHandler) Start(srv fiber.Router) {
	faces := srv.Group("/faces")

	faces.Post("", h.CreateFace)
	faces.Get("", h.ListFaces)
	faces.Post("/register", h.middleware.NewRateLimiter, h.RegisterFace)
	faces.Post("/remove", h.RemoveFace)
}
