package kiosk

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/api/greeting"
	"FaceAttendance/internal/api/recognition"
	"FaceAttendance/pkg/utils"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrCameraInactive        = errors.New("camera is not active")
	ErrDetectInFlight        = errors.New("a detection is already in progress")
	ErrNoPendingRegistration = errors.New("no unknown face is waiting for registration")
)

type State int

const (
	CameraInactive State = iota
	CameraActive
)

func (s State) String() string {
	if s == CameraActive {
		return "active"
	}
	return "inactive"
}

const DefaultAutoDetectInterval = 10 * time.Second

// PendingRegistration holds the frame of the last unknown face until the
// operator names it.
type PendingRegistration struct {
	Frame  Frame
	Result *recognition.RecognitionResult
}

type ShellConfig struct {
	RoomID   string
	Interval time.Duration
}

// Shell drives capture, recognition and the follow-up greeting.
type Shell struct {
	log       *logrus.Logger
	source    FrameSource
	api       API
	presenter Presenter
	player    AudioPlayer
	utils     utils.IUtils
	cfg       ShellConfig

	mu         sync.Mutex
	state      State
	autoCancel context.CancelFunc
	autoDone   chan struct{}
	pending    *PendingRegistration

	manualDetecting atomic.Bool
}

// NewShell accepts a nil player; speech is then skipped.
func NewShell(log *logrus.Logger, source FrameSource, api API, presenter Presenter, player AudioPlayer, cfg ShellConfig) *Shell {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultAutoDetectInterval
	}
	return &Shell{
		log:       log,
		source:    source,
		api:       api,
		presenter: presenter,
		player:    player,
		utils:     utils.New(),
		cfg:       cfg,
	}
}

func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Shell) AutoDetecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoCancel != nil
}

func (s *Shell) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == CameraActive {
		return nil
	}
	if err := s.source.Open(ctx); err != nil {
		return err
	}
	s.state = CameraActive
	s.log.Info("Camera started")
	return nil
}

// StopCamera turns auto-detect off and releases the source.
func (s *Shell) StopCamera() error {
	s.stopAuto()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == CameraInactive {
		return nil
	}
	s.state = CameraInactive
	s.log.Info("Camera stopped")
	return s.source.Close()
}

// SetAutoDetect starts or stops the ticker. Turning it on detects once
// immediately.
func (s *Shell) SetAutoDetect(ctx context.Context, on bool) error {
	if !on {
		s.stopAuto()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != CameraActive {
		return ErrCameraInactive
	}
	if s.autoCancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.autoCancel = cancel
	s.autoDone = done

	go s.autoLoop(loopCtx, done)
	return nil
}

func (s *Shell) stopAuto() {
	s.mu.Lock()
	cancel, done := s.autoCancel, s.autoDone
	s.autoCancel, s.autoDone = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Shell) autoLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.detect(ctx); err != nil && ctx.Err() == nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Auto detection failed")
			s.presenter.ShowError(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DetectNow captures one frame and submits it. A second manual call while
// one is in flight gets ErrDetectInFlight. It does not wait for the
// auto-detect ticker; whichever result lands last is what the presenter shows.
func (s *Shell) DetectNow(ctx context.Context) (*recognition.RecognitionResult, error) {
	if s.State() != CameraActive {
		return nil, ErrCameraInactive
	}
	if !s.manualDetecting.CompareAndSwap(false, true) {
		return nil, ErrDetectInFlight
	}
	defer s.manualDetecting.Store(false)

	return s.detect(ctx)
}

func (s *Shell) detect(ctx context.Context) (*recognition.RecognitionResult, error) {
	if s.State() != CameraActive {
		return nil, ErrCameraInactive
	}

	frame, err := s.source.Capture(ctx)
	if err != nil {
		return nil, err
	}

	image := s.utils.EncodeDataURL(utils.Image{Data: frame.Data, MimeType: frame.MimeType})
	result, err := s.api.Detect(ctx, image, s.cfg.RoomID)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Recognized:
		s.presenter.ShowRecognized(result)
		s.greet(ctx, result.User)

	case result.CanRegister:
		pending := PendingRegistration{Frame: frame, Result: result}
		s.mu.Lock()
		s.pending = &pending
		s.mu.Unlock()
		s.presenter.PromptRegistration(pending)

	default:
		s.presenter.ShowNoFace(result.Message)
	}

	return result, nil
}

func (s *Shell) Pending() (PendingRegistration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingRegistration{}, false
	}
	return *s.pending, true
}

func (s *Shell) DiscardPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Register names the pending unknown face. The pending frame is consumed
// whether or not the server accepts it.
func (s *Shell) Register(ctx context.Context, name, email string) (*face.RegisterFaceResponse, error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return nil, ErrNoPendingRegistration
	}

	resp, err := s.api.Register(ctx, face.RegisterFaceRequest{
		Image: s.utils.EncodeDataURL(utils.Image{Data: pending.Frame.Data, MimeType: pending.Frame.MimeType}),
		Name:  name,
		Email: email,
	})
	if err != nil {
		return nil, err
	}

	s.presenter.ShowRegistered(resp)
	s.greet(ctx, resp.User.Name)
	return resp, nil
}

// greet never fails the caller; greeting and speech errors are logged.
func (s *Shell) greet(ctx context.Context, name string) {
	detected := true
	resp, err := s.api.Greeting(ctx, greeting.GreetingRequest{UserName: name, IsDetected: &detected})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Greeting failed")
		return
	}
	s.presenter.ShowGreeting(resp.Greeting)

	if s.player == nil {
		return
	}

	audio, err := s.api.Speech(ctx, resp.Greeting)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Debug("Speech unavailable")
		return
	}
	if err := s.player.Play(ctx, audio); err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Audio playback failed")
	}
}
