package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cavaliergopher/grab/v3"
)

// ProgressFunc receives transfer progress. total is -1 when unknown.
type ProgressFunc func(label string, complete, total int64)

// Transport fetches url into dst, replacing anything already there.
type Transport interface {
	Download(ctx context.Context, url, dst string) error
}

// GrabTransport downloads with grab. Partial files are never resumed.
type GrabTransport struct {
	Client   *grab.Client
	Progress ProgressFunc
	Label    string
	Interval time.Duration
}

func NewGrabTransport(progress ProgressFunc) *GrabTransport {
	client := grab.NewClient()
	client.UserAgent = "ytf"
	return &GrabTransport{Client: client, Progress: progress, Interval: 100 * time.Millisecond}
}

func (t *GrabTransport) Download(ctx context.Context, url, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear staging file %s: %w", dst, err)
	}

	req, err := grab.NewRequest(dst, url)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true

	client := t.Client
	if client == nil {
		client = grab.DefaultClient
	}
	resp := client.Do(req)

	interval := t.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for done := false; !done; {
		select {
		case <-ticker.C:
			t.report(resp.BytesComplete(), resp.Size())
		case <-resp.Done:
			done = true
		}
	}

	if err := resp.Err(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("download %s: %w", url, err)
	}
	t.report(resp.BytesComplete(), resp.Size())
	return nil
}

func (t *GrabTransport) report(complete, total int64) {
	if t.Progress == nil {
		return
	}
	if total <= 0 {
		total = -1
	}
	t.Progress(t.Label, complete, total)
}

// WithLabel returns a copy of t that reports under label.
func (t *GrabTransport) WithLabel(label string) *GrabTransport {
	copied := *t
	copied.Label = label
	return &copied
}
