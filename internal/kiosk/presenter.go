package kiosk

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/api/recognition"
	"fmt"
	"io"
	"sync"
)

// Presenter renders shell outcomes. Auto and manual detections may both
// report, so the last call wins.
type Presenter interface {
	ShowRecognized(result *recognition.RecognitionResult)
	PromptRegistration(pending PendingRegistration)
	ShowNoFace(message string)
	ShowRegistered(resp *face.RegisterFaceResponse)
	ShowGreeting(text string)
	ShowError(err error)
}

// ConsolePresenter writes one line per outcome.
type ConsolePresenter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out}
}

func (p *ConsolePresenter) ShowRecognized(result *recognition.RecognitionResult) {
	line := fmt.Sprintf("Recognized %s (%.0f%%)", result.User, result.Confidence*100)
	if result.AttendanceType != "" {
		line += fmt.Sprintf(", %s recorded for room %s", result.AttendanceType, result.AttendanceRoomID)
	}
	if result.AttendanceSkipped {
		line += ", attendance already recorded"
	}
	if result.AttendanceError != "" {
		line += ", attendance failed: " + result.AttendanceError
	}
	if result.Warning != "" {
		line += " [" + result.Warning + "]"
	}
	p.println(line)
}

func (p *ConsolePresenter) PromptRegistration(pending PendingRegistration) {
	p.println(fmt.Sprintf("Unknown face captured at %s. Register it with a name.",
		pending.Frame.CapturedAt.Format("15:04:05")))
}

func (p *ConsolePresenter) ShowNoFace(message string) {
	if message == "" {
		message = "No face detected"
	}
	p.println(message)
}

func (p *ConsolePresenter) ShowRegistered(resp *face.RegisterFaceResponse) {
	p.println(fmt.Sprintf("%s (person %s)", resp.Message, resp.User.LuxandPersonID))
}

func (p *ConsolePresenter) ShowGreeting(text string) {
	p.println("> " + text)
}

func (p *ConsolePresenter) ShowError(err error) {
	p.println("error: " + err.Error())
}

func (p *ConsolePresenter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}
