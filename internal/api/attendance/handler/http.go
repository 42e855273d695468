package attendanceHandler

import (
	attendanceService "FaceAttendance/internal/api/attendance/service"
	"FaceAttendance/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AttendanceHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	attendanceService attendanceService.IAttendanceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as attendanceService.IAttendanceService,
) *AttendanceHandler {
	return &AttendanceHandler{
		log:               log,
		validator:         validate,
		middleware:        middleware,
		attendanceService: as,
	}
}

func (h *AttendanceHandler) Start(srv fiber.Router) {
	checkins := srv.Group("/checkins")
	checkins.Post("", h.CreateCheckin)
	checkins.Get("", h.ListCheckins)

	records := srv.Group("/attendance")
	records.Post("", h.RecordAttendance)
	records.Get("", h.ListAttendance)
	records.Get("/rooms/presence", h.RoomPresence)
	records.Get("/rooms/:roomId/presence", h.RoomPresence)
}
