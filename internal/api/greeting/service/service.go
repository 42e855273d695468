package greetingService

import (
	"FaceAttendance/internal/api/greeting"
	"FaceAttendance/pkg/audio"
	"FaceAttendance/pkg/gemini"
	"FaceAttendance/pkg/openai"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type IGreetingService interface {
	GenerateGreeting(ctx context.Context, req greeting.GreetingRequest) (*greeting.GreetingResponse, error)
	Synthesize(ctx context.Context, req greeting.SpeechRequest) ([]byte, error)
}

type greetingService struct {
	log      *logrus.Logger
	chat     openai.IChatGPT
	gemini   gemini.IGemini
	tts      audio.ITTS
	location *time.Location
	now      func() time.Time
}

// NewGreetingService accepts nil for any writer or for tts; missing writers
// are skipped and the template is used last.
func NewGreetingService(
	log *logrus.Logger,
	chat openai.IChatGPT,
	geminiClient gemini.IGemini,
	tts audio.ITTS,
	location *time.Location,
) IGreetingService {
	if location == nil {
		location = time.Local
	}

	return &greetingService{
		log:      log,
		chat:     chat,
		gemini:   geminiClient,
		tts:      tts,
		location: location,
		now:      time.Now,
	}
}
