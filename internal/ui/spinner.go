package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
)

var (
	pointsFrames = []string{"∙∙∙", "●∙∙", "∙●∙", "∙∙●"}
	pointsFPS    = time.Second / 7
)

// Spinner is a loading indicator for the static renderers. It draws on its
// own goroutine so it can run while the catalog loads, and clears its line
// when stopped.
type Spinner struct {
	w       io.Writer
	message string
	frames  []string
	fps     time.Duration
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
	started bool
}

// NewSpinner creates a spinner that writes message to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  pointsFrames,
		fps:     pointsFPS,
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started = true
	go s.run()
}

// Stop halts the animation and blocks until the line is cleared. It is safe
// to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	if s.started {
		<-s.exited
	}
}

func (s *Spinner) run() {
	defer close(s.exited)

	theme := GetTheme()
	spinnerStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	messageStyle := lipgloss.NewStyle().Foreground(theme.Text).Italic(true)

	ticker := time.NewTicker(s.fps)
	defer ticker.Stop()

	var frame int
	for {
		select {
		case <-s.done:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			f := s.frames[frame%len(s.frames)]
			fmt.Fprintf(s.w, "\r %s %s", spinnerStyle.Render(f), messageStyle.Render(s.message))
			frame++
		}
	}
}
