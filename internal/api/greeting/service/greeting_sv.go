package greetingService

import (
	"FaceAttendance/internal/api/greeting"
	contextPkg "FaceAttendance/pkg/context"
	"FaceAttendance/pkg/response"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const systemPrompt = "You are a friendly AI assistant that creates personalized workplace greetings. Be warm, professional, and encouraging."

func TimeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func (s *greetingService) GenerateGreeting(ctx context.Context, req greeting.GreetingRequest) (*greeting.GreetingResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	at := s.now()
	if req.Time != nil && !req.Time.IsZero() {
		at = *req.Time
	}
	at = at.In(s.location)

	name := strings.TrimSpace(req.UserName)
	if req.IsDetected != nil && !*req.IsDetected {
		name = ""
	}

	timeOfDay := TimeOfDay(at)
	prompt := buildPrompt(name, timeOfDay, at.Weekday())

	resp := &greeting.GreetingResponse{
		UserName:  name,
		Timestamp: at,
	}

	if s.chat != nil {
		text, err := s.chat.Complete(ctx, systemPrompt, prompt)
		if err == nil {
			resp.Greeting, resp.Source = text, greeting.SourceOpenAI
			return resp, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("OpenAI greeting failed, trying next writer")
	}

	if s.gemini != nil {
		text, err := s.gemini.GenerateText(ctx, systemPrompt+"\n\n"+prompt)
		if err == nil {
			resp.Greeting, resp.Source = text, greeting.SourceGemini
			return resp, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Gemini greeting failed, using template")
	}

	resp.Greeting, resp.Source = templateGreeting(name, timeOfDay), greeting.SourceTemplate
	return resp, nil
}

func (s *greetingService) Synthesize(ctx context.Context, req greeting.SpeechRequest) ([]byte, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(req.Text) == "" {
		return nil, greeting.ErrTextRequired
	}
	if s.tts == nil {
		return nil, greeting.ErrSpeechUnavailable
	}

	audio, err := s.tts.GenerateAudio(ctx, req.Text)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Speech synthesis failed")
		return nil, response.Wrap(http.StatusBadGateway, err, "speech synthesis failed")
	}

	return audio, nil
}

func buildPrompt(name, timeOfDay string, weekday time.Weekday) string {
	if name == "" {
		return fmt.Sprintf(`No one has been detected at the check-in kiosk yet.
It's %s on a %s.
Write a short, friendly welcome line inviting people to step in front of the camera.
Keep it under 30 words and make it sound natural for text-to-speech.`, timeOfDay, weekday)
	}

	return fmt.Sprintf(`Generate a warm, personalized greeting for %s who just checked in to work.
It's %s on a %s.
Make it friendly, professional, and motivating.
Keep it under 50 words and include something about the day or time.
Make it sound natural for text-to-speech.`, name, timeOfDay, weekday)
}

func templateGreeting(name, timeOfDay string) string {
	if name == "" {
		return fmt.Sprintf("Good %s! Welcome!", timeOfDay)
	}
	return fmt.Sprintf("Good %s, %s! Welcome back!", timeOfDay, name)
}
