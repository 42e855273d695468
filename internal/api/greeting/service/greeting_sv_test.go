package greetingService

import (
	"FaceAttendance/internal/api/greeting"
	"FaceAttendance/pkg/response"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	text   string
	err    error
	prompt string
}

func (s *stubChat) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.prompt = userPrompt
	return s.text, s.err
}

type stubGemini struct {
	text  string
	err   error
	calls int
}

func (s *stubGemini) GenerateText(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubGemini) Close() error { return nil }

type stubTTS struct {
	audio []byte
	err   error
}

func (s *stubTTS) GenerateAudio(_ context.Context, _ string) ([]byte, error) {
	return s.audio, s.err
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func at(hour int) *time.Time {
	t := time.Date(2025, 5, 27, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{23, "evening"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeOfDay(*at(tt.hour)), "hour %d", tt.hour)
	}
}

func TestGenerateGreetingFallbackChain(t *testing.T) {
	tests := []struct {
		name         string
		chat         *stubChat
		gemini       *stubGemini
		wantSource   string
		wantGreeting string
	}{
		{
			name:         "openai answers",
			chat:         &stubChat{text: "Hi Alice from OpenAI"},
			gemini:       &stubGemini{text: "unused"},
			wantSource:   greeting.SourceOpenAI,
			wantGreeting: "Hi Alice from OpenAI",
		},
		{
			name:         "openai fails, gemini answers",
			chat:         &stubChat{err: errors.New("quota")},
			gemini:       &stubGemini{text: "Hi Alice from Gemini"},
			wantSource:   greeting.SourceGemini,
			wantGreeting: "Hi Alice from Gemini",
		},
		{
			name:         "both fail",
			chat:         &stubChat{err: errors.New("quota")},
			gemini:       &stubGemini{err: errors.New("blocked")},
			wantSource:   greeting.SourceTemplate,
			wantGreeting: "Good afternoon, Alice! Welcome back!",
		},
		{
			name:         "nothing configured",
			wantSource:   greeting.SourceTemplate,
			wantGreeting: "Good afternoon, Alice! Welcome back!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &greetingService{log: newLogger(), location: time.UTC, now: time.Now}
			if tt.chat != nil {
				svc.chat = tt.chat
			}
			if tt.gemini != nil {
				svc.gemini = tt.gemini
			}

			resp, err := svc.GenerateGreeting(context.Background(), greeting.GreetingRequest{UserName: "Alice", Time: at(14)})
			require.NoError(t, err)

			assert.Equal(t, tt.wantSource, resp.Source)
			assert.Equal(t, tt.wantGreeting, resp.Greeting)
		})
	}
}

func TestGenerateGreetingPromptMentionsDay(t *testing.T) {
	chat := &stubChat{text: "ok"}
	svc := NewGreetingService(newLogger(), chat, nil, nil, time.UTC)

	_, err := svc.GenerateGreeting(context.Background(), greeting.GreetingRequest{UserName: "Alice", Time: at(8)})
	require.NoError(t, err)

	assert.True(t, strings.Contains(chat.prompt, "Alice"))
	assert.Contains(t, chat.prompt, "morning")
	assert.Contains(t, chat.prompt, "Tuesday")
}

func TestGenerateGreetingWithoutName(t *testing.T) {
	svc := NewGreetingService(newLogger(), nil, nil, nil, time.UTC)
	detected := false

	resp, err := svc.GenerateGreeting(context.Background(), greeting.GreetingRequest{UserName: "Alice", Time: at(19), IsDetected: &detected})
	require.NoError(t, err)

	assert.Equal(t, "Good evening! Welcome!", resp.Greeting)
	assert.Empty(t, resp.UserName)
}

func TestSynthesize(t *testing.T) {
	t.Run("text required", func(t *testing.T) {
		svc := NewGreetingService(newLogger(), nil, nil, &stubTTS{audio: []byte("mp3")}, time.UTC)
		_, err := svc.Synthesize(context.Background(), greeting.SpeechRequest{Text: "  "})
		assert.ErrorIs(t, err, greeting.ErrTextRequired)
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewGreetingService(newLogger(), nil, nil, nil, time.UTC)
		_, err := svc.Synthesize(context.Background(), greeting.SpeechRequest{Text: "hello"})
		assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode(err))
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := NewGreetingService(newLogger(), nil, nil, &stubTTS{err: errors.New("ElevenLabs API error: 401 Unauthorized")}, time.UTC)
		_, err := svc.Synthesize(context.Background(), greeting.SpeechRequest{Text: "hello"})
		assert.Equal(t, http.StatusBadGateway, response.StatusCode(err))
	})

	t.Run("audio", func(t *testing.T) {
		svc := NewGreetingService(newLogger(), nil, nil, &stubTTS{audio: []byte("mp3")}, time.UTC)
		audio, err := svc.Synthesize(context.Background(), greeting.SpeechRequest{Text: "hello"})
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3"), audio)
	})
}
