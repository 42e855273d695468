package attendanceService

import (
	"FaceAttendance/internal/api/attendance"
	attendanceRepository "FaceAttendance/internal/api/attendance/repository"
	"FaceAttendance/internal/api/events"
	faceRepository "FaceAttendance/internal/api/face/repository"
	"FaceAttendance/internal/entity"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/s3"
	"FaceAttendance/pkg/utils"
	"context"

	"github.com/sirupsen/logrus"
)

type IAttendanceService interface {
	CreateCheckin(ctx context.Context, req attendance.CreateCheckinRequest) (*attendance.CheckinResponse, error)
	ListCheckins(ctx context.Context) (*attendance.CheckinListResponse, error)
	RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (*attendance.RecordAttendanceResponse, error)
	Record(ctx context.Context, in attendance.RecordInput) (entity.AttendanceEvent, error)
	ListAttendance(ctx context.Context, roomID string) (*attendance.AttendanceListResponse, error)
	RoomPresence(ctx context.Context, roomID string) (*attendance.RoomPresenceResponse, error)
}

type Rooms struct {
	AttendanceRoomID string
	CheckoutRoomID   string
}

type attendanceService struct {
	log            *logrus.Logger
	attendanceRepo attendanceRepository.Repository
	faceRepo       faceRepository.Repository
	luxand         luxand.ILuxand
	s3Client       s3.ItfS3
	publisher      events.Publisher
	utils          utils.IUtils
	rooms          Rooms
}

// NewAttendanceService builds the ledger service. s3Client and publisher
// may be nil.
func NewAttendanceService(
	log *logrus.Logger,
	attendanceRepo attendanceRepository.Repository,
	faceRepo faceRepository.Repository,
	luxandClient luxand.ILuxand,
	s3Client s3.ItfS3,
	publisher events.Publisher,
	utils utils.IUtils,
	rooms Rooms,
) IAttendanceService {
	return &attendanceService{
		log:            log,
		attendanceRepo: attendanceRepo,
		faceRepo:       faceRepo,
		luxand:         luxandClient,
		s3Client:       s3Client,
		publisher:      publisher,
		utils:          utils,
		rooms:          rooms,
	}
}
