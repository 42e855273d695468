package greetingHandler

import (
	greetingService "FaceAttendance/internal/api/greeting/service"
	"FaceAttendance/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type GreetingHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	greetingService greetingService.IGreetingService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	gs greetingService.IGreetingService,
) *GreetingHandler {
	return &GreetingHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		greetingService: gs,
	}
}

func (h *GreetingHandler) Start(srv fiber.Router) {
	greeting := srv.Group("/greeting")

	greeting.Post("", h.GenerateGreeting)
	greeting.Post("/speech", h.middleware.NewRateLimiter, h.Synthesize)
}
