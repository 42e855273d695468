package main

import (
	"FaceAttendance/internal/api/attendance"
	"FaceAttendance/internal/kiosk"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":   "ws://localhost:3000/api/v1/events/ws",
		"https://kiosk.example/":  "wss://kiosk.example/api/v1/events/ws",
		"ws://already.example:80": "ws://already.example:80/api/v1/events/ws",
	}
	for server, want := range cases {
		opts := &kioskOptions{serverURL: server}
		assert.Equal(t, want, opts.feedURL(), server)
	}
}

func TestRenderAttendance(t *testing.T) {
	out := renderAttendance([]attendance.AttendanceRecord{
		{UserName: "Ada", RoomID: "room-1", CheckinTime: time.Now(), Note: "manual"},
		{UserName: attendance.UnknownUserName, IsCheckOut: true, CheckinTime: time.Now()},
	})

	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "room-1")
	assert.Contains(t, out, attendance.RoomTypeCheckOut)
	assert.Contains(t, out, attendance.UnknownUserName)
}

func TestAudioPlayerSelection(t *testing.T) {
	assert.Nil(t, (&kioskOptions{player: "  "}).audioPlayer())

	sink, ok := (&kioskOptions{player: "mpg123", audioDir: "/tmp/out"}).audioPlayer().(*kiosk.FileSink)
	require.True(t, ok)
	assert.Equal(t, "/tmp/out", sink.Dir)

	player, ok := (&kioskOptions{player: "mpg123"}).audioPlayer().(*kiosk.ExecPlayer)
	require.True(t, ok)
	assert.Equal(t, []string{"-q", "-"}, player.Args)

	player, ok = (&kioskOptions{player: "ffplay -nodisp -"}).audioPlayer().(*kiosk.ExecPlayer)
	require.True(t, ok)
	assert.Equal(t, "ffplay", player.Command)
	assert.Equal(t, []string{"-nodisp", "-"}, player.Args)
}

func TestFrameSourceRequiresCamera(t *testing.T) {
	_, err := (&kioskOptions{}).frameSource()
	assert.Error(t, err)

	source, err := (&kioskOptions{framesDir: "frames"}).frameSource()
	require.NoError(t, err)
	assert.IsType(t, &kiosk.DirectorySource{}, source)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"run", "detect", "register", "attendance", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
