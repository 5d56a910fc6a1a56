package reminder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"
)

const alertTitle = "Task Reminder"

var errPromptClosed = errors.New("prompt input closed")

// DesktopChannel raises a native notification through beeep.
type DesktopChannel struct {
	// Allowed mirrors the notification permission; false refuses every alert.
	Allowed bool
	Icon    string

	alert func(title, message string, icon any) error
}

func NewDesktopChannel(allowed bool) *DesktopChannel {
	beeep.AppName = "reminder-board"
	return &DesktopChannel{Allowed: allowed, alert: beeep.Notify}
}

func (d *DesktopChannel) Name() string { return "desktop" }

func (d *DesktopChannel) Notify(ctx context.Context, a Alert) error {
	if !d.Allowed {
		return ErrPermissionDenied
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.alert(alertTitle, a.Text, d.Icon); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return nil
}

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#1F2937")).
	Background(lipgloss.Color("#FDE68A")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#F59E0B")).
	Padding(0, 2)

// BannerChannel prints a styled banner.
type BannerChannel struct {
	Out io.Writer
}

func (b *BannerChannel) Name() string { return "banner" }

func (b *BannerChannel) Notify(_ context.Context, a Alert) error {
	if b.Out == nil {
		return ErrUnsupported
	}
	banner := bannerStyle.Render(fmt.Sprintf("%s  %s\n%s", alertTitle, a.Time, a.Text))
	_, err := fmt.Fprintln(b.Out, banner)
	return err
}

// PromptChannel blocks until the user acknowledges the alert with Enter or
// ctx ends. Lines are read by one goroutine for the channel's lifetime, so a
// line typed after a cancelled prompt acknowledges the next one.
type PromptChannel struct {
	In  io.Reader
	Out io.Writer

	once  sync.Once
	lines chan promptLine
}

type promptLine struct {
	text string
	err  error
}

func (p *PromptChannel) Name() string { return "prompt" }

func (p *PromptChannel) readLines() {
	r := bufio.NewReader(p.In)
	for {
		line, err := r.ReadString('\n')
		p.lines <- promptLine{text: line, err: err}
		if err != nil {
			close(p.lines)
			return
		}
	}
}

func (p *PromptChannel) Notify(ctx context.Context, a Alert) error {
	if p.In == nil || p.Out == nil {
		return ErrUnsupported
	}
	p.once.Do(func() {
		p.lines = make(chan promptLine, 1)
		go p.readLines()
	})

	if _, err := fmt.Fprintf(p.Out, "TASK REMINDER: %s (press Enter) ", a.Text); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return errPromptClosed
		}
		if l.err != nil && !(errors.Is(l.err, io.EOF) && l.text != "") {
			return fmt.Errorf("read acknowledgement: %w", l.err)
		}
		return nil
	}
}
