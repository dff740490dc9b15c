// Package spinner draws a progress indicator while a generation request is
// in flight.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Start displays an animated spinner with the given message and the elapsed
// time on w. Call the returned function to stop the spinner and clear the
// line. Nothing is drawn when w is not a terminal.
func Start(w io.Writer, message string) (stop func()) {
	if !isTerminal(w) {
		return func() {}
	}
	return start(w, message, time.Now)
}

func start(w io.Writer, message string, now func() time.Time) func() {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once
	began := now()

	go func() {
		i, width := 0, 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				close(cleared)
				return
			case <-ticker.C:
				line := fmt.Sprintf("%s %s (%s)", frames[i%len(frames)], message, elapsed(now().Sub(began)))
				if n := runewidth.StringWidth(line); n > width {
					width = n
				}
				fmt.Fprintf(w, "\r%s", line) //nolint:errcheck
				i++
			}
		}
	}()
	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}

func elapsed(d time.Duration) string {
	return d.Truncate(100 * time.Millisecond).String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
