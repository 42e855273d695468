package recognitionHandler

import (
	recognitionService "FaceAttendance/internal/api/recognition/service"
	"FaceAttendance/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RecognitionHandler struct {
	log                *logrus.Logger
	middleware         middleware.Middleware
	recognitionService recognitionService.IRecognitionService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	rs recognitionService.IRecognitionService,
) *RecognitionHandler {
	return &RecognitionHandler{
		log:                log,
		middleware:         middleware,
		recognitionService: rs,
	}
}

func (h *RecognitionHandler) Start(srv fiber.Router) {
	recognition := srv.Group("/recognition")

	recognition.Post("/detect", h.middleware.NewRateLimiter, h.Detect)
	recognition.Get("/provider/test", h.TestProvider)
}
