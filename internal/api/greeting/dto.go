package greeting

import "time"

const (
	SourceOpenAI   = "openai"
	SourceGemini   = "gemini"
	SourceTemplate = "template"
)

type GreetingRequest struct {
	UserName   string     `json:"userName" conform:"trim" validate:"max=256"`
	Time       *time.Time `json:"time"`
	IsDetected *bool      `json:"isDetected"`
}

type GreetingResponse struct {
	Greeting  string    `json:"greeting"`
	UserName  string    `json:"userName,omitempty"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type SpeechRequest struct {
	Text string `json:"text" conform:"trim" validate:"max=2000"`
}
