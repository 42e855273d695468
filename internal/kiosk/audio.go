package kiosk

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// AudioPlayer plays MP3 speech.
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte) error
}

// ExecPlayer pipes audio into an external player reading from stdin.
type ExecPlayer struct {
	Command string
	Args    []string
}

func NewExecPlayer() *ExecPlayer {
	return &ExecPlayer{Command: "mpg123", Args: []string{"-q", "-"}}
}

func (p *ExecPlayer) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	cmd.Stdin = bytes.NewReader(audio)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.Command, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// FileSink writes each clip into Dir instead of playing it.
type FileSink struct {
	Dir string
}

func (s *FileSink) Play(ctx context.Context, audio []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(s.Dir, fmt.Sprintf("greeting-%d.mp3", time.Now().UnixNano()))
	return os.WriteFile(name, audio, 0o644)
}
