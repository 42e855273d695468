package kiosk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrSourceClosed = errors.New("frame source is not open")
	ErrNoFrames     = errors.New("no image files found")
)

// Frame is one captured still.
type Frame struct {
	Data       []byte
	MimeType   string
	CapturedAt time.Time
}

// FrameSource is the camera abstraction the shell captures from.
type FrameSource interface {
	Open(ctx context.Context) error
	Capture(ctx context.Context) (Frame, error)
	Close() error
}

// SnapshotSource polls an IP camera's JPEG snapshot URL.
type SnapshotSource struct {
	URL    string
	Client *http.Client

	mu   sync.Mutex
	open bool
}

func NewSnapshotSource(url string, timeout time.Duration) *SnapshotSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SnapshotSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *SnapshotSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.URL == "" {
		return errors.New("snapshot URL is required")
	}
	s.open = true
	return nil
}

func (s *SnapshotSource) Capture(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if !open {
		return Frame{}, ErrSourceClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return Frame{}, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("fetch snapshot: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Frame{}, fmt.Errorf("read snapshot: %w", err)
	}

	return newFrame(data)
}

func (s *SnapshotSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

// DirectorySource cycles through the images in a folder in name order.
type DirectorySource struct {
	Dir string

	mu    sync.Mutex
	files []string
	next  int
	open  bool
}

func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{Dir: dir}
}

func (d *DirectorySource) Open(ctx context.Context) error {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return fmt.Errorf("read frame directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
			files = append(files, filepath.Join(d.Dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFrames, d.Dir)
	}
	sort.Strings(files)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = files
	d.next = 0
	d.open = true
	return nil
}

func (d *DirectorySource) Capture(ctx context.Context) (Frame, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return Frame{}, ErrSourceClosed
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read frame: %w", err)
	}
	return newFrame(data)
}

func (d *DirectorySource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	d.files = nil
	return nil
}

func newFrame(data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, errors.New("empty frame")
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Frame{}, fmt.Errorf("frame is %s, not an image", mtype.String())
	}
	return Frame{
		Data:       data,
		MimeType:   mtype.String(),
		CapturedAt: time.Now(),
	}, nil
}
