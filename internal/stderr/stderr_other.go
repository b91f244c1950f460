//go:build !unix

// Package stderr redirects file descriptor 2 while the terminal UI runs.
package stderr

import "os"

// Capture is a no-op outside unix.
type Capture struct{}

// Start does nothing outside unix.
func Start(_ func(line string)) (*Capture, error) {
	return &Capture{}, nil
}

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop does nothing outside unix.
func (c *Capture) Stop() {}
