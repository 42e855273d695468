package recognitionService

import (
	attendanceService "FaceAttendance/internal/api/attendance/service"
	"FaceAttendance/internal/api/events"
	faceService "FaceAttendance/internal/api/face/service"
	"FaceAttendance/internal/api/recognition"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/redis"
	"FaceAttendance/pkg/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type IRecognitionService interface {
	Recognize(ctx context.Context, req recognition.RecognizeRequest) (*recognition.RecognitionResult, error)
	TestConnection(ctx context.Context) (*recognition.ConnectionTestResponse, error)
}

type Config struct {
	Threshold           float64
	TrackedRoomID       string
	AttendanceRoomID    string
	CheckoutHour        int
	Location            *time.Location
	DisableProviderSync bool
	DedupWindow         time.Duration
	// SearchVersion "v1" selects the legacy JSON search endpoint.
	SearchVersion string
}

type recognitionService struct {
	log        *logrus.Logger
	luxand     luxand.ILuxand
	faces      faceService.IFaceService
	attendance attendanceService.IAttendanceService
	redis      redis.IRedis
	publisher  events.Publisher
	utils      utils.IUtils
	cfg        Config
	now        func() time.Time
}

// NewRecognitionService wires the gateway. redisClient and publisher may
// be nil.
func NewRecognitionService(
	log *logrus.Logger,
	luxandClient luxand.ILuxand,
	faces faceService.IFaceService,
	attendance attendanceService.IAttendanceService,
	redisClient redis.IRedis,
	publisher events.Publisher,
	utils utils.IUtils,
	cfg Config,
) IRecognitionService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &recognitionService{
		log:        log,
		luxand:     luxandClient,
		faces:      faces,
		attendance: attendance,
		redis:      redisClient,
		publisher:  publisher,
		utils:      utils,
		cfg:        cfg,
		now:        time.Now,
	}
}
