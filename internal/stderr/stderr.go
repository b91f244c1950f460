//go:build unix

// Package stderr redirects file descriptor 2 while the terminal UI runs.
// Anything written there directly, bypassing the logger, would otherwise be
// drawn on top of the alternate screen.
package stderr

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Capture is an active redirection of stderr.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
}

// Start redirects stderr into a pipe. Every non-empty line written to it is
// passed to fn from a background goroutine.
func Start(fn func(line string)) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating pipe: %w", err)
	}
	fd := int(os.Stderr.Fd())
	orig, err := unix.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("saving stderr: %w", err)
	}
	if err := unix.Dup2(int(w.Fd()), fd); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, fmt.Errorf("redirecting stderr: %w", err)
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				fn(line)
			}
		}
	}()
	return c, nil
}

// WriteOriginal writes to the terminal's stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = unix.Write(c.orig, []byte(msg))
}

// Stop restores stderr and waits until every captured line was delivered.
func (c *Capture) Stop() {
	_ = unix.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = unix.Close(c.orig)
	// fd 2 no longer refers to the pipe; closing our end ends the reader.
	c.w.Close()
	<-c.done
	c.r.Close()
}
