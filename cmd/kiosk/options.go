package main

import (
	"FaceAttendance/internal/kiosk"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type kioskOptions struct {
	serverURL   string
	roomID      string
	snapshotURL string
	framesDir   string
	player      string
	audioDir    string
	verbose     bool
}

// applyEnv fills flags the user did not set from KIOSK_* variables.
func (o *kioskOptions) applyEnv(cmd *cobra.Command) {
	bind := func(flag, env string, target *string) {
		if cmd.Flags().Changed(flag) {
			return
		}
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			*target = value
		}
	}
	bind("server", "KIOSK_SERVER_URL", &o.serverURL)
	bind("room", "KIOSK_ROOM_ID", &o.roomID)
	bind("snapshot-url", "KIOSK_SNAPSHOT_URL", &o.snapshotURL)
	bind("frames-dir", "KIOSK_FRAMES_DIR", &o.framesDir)
	bind("player", "KIOSK_PLAYER", &o.player)
	bind("audio-dir", "KIOSK_AUDIO_DIR", &o.audioDir)
}

func (o *kioskOptions) logger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.Kitchen})
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func (o *kioskOptions) apiClient() *kiosk.APIClient {
	return kiosk.NewAPIClient(o.serverURL, 0)
}

func (o *kioskOptions) frameSource() (kiosk.FrameSource, error) {
	switch {
	case o.snapshotURL != "":
		return kiosk.NewSnapshotSource(o.snapshotURL, 0), nil
	case o.framesDir != "":
		return kiosk.NewDirectorySource(o.framesDir), nil
	default:
		return nil, errors.New("a camera is required: set --snapshot-url or --frames-dir")
	}
}

func (o *kioskOptions) audioPlayer() kiosk.AudioPlayer {
	if o.audioDir != "" {
		return &kiosk.FileSink{Dir: o.audioDir}
	}
	fields := strings.Fields(o.player)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) == 1 && fields[0] == "mpg123" {
		return kiosk.NewExecPlayer()
	}
	return &kiosk.ExecPlayer{Command: fields[0], Args: fields[1:]}
}

func (o *kioskOptions) feedURL() string {
	url := strings.TrimRight(o.serverURL, "/")
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/api/v1/events/ws"
}
