package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/cancelreader"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// KittyFlags are the keyboard enhancements requested from the terminal.
// Release events need every key reported as an escape code, not only the
// ones that produce no text. Alternate keys carry the shifted character,
// which the escape code would otherwise lose.
const KittyFlags = ansi.KittyDisambiguateEscapeCodes |
	ansi.KittyReportEventTypes |
	ansi.KittyReportAlternateKeys |
	ansi.KittyReportAllKeysAsEscapeCodes

// escTimeout is how long a lone ESC waits for the rest of a sequence.
const escTimeout = 50 * time.Millisecond

var enableSeq = ansi.PushKittyKeyboard(KittyFlags) +
	ansi.SetModeMouseAnyEvent +
	ansi.SetModeMouseExtSgr +
	ansi.SetModeFocusEvent

var disableSeq = ansi.ResetModeFocusEvent +
	ansi.ResetModeMouseExtSgr +
	ansi.ResetModeMouseAnyEvent +
	ansi.PopKittyKeyboard(1)

// ErrNotTerminal is returned by Open when stdin is redirected.
var ErrNotTerminal = errors.New("input is not a terminal")

// Reader puts the terminal in raw mode, enables key release and pointer
// reporting, and decodes what the terminal sends.
type Reader struct {
	in    *os.File
	out   io.Writer
	cr    cancelreader.CancelReader
	state *term.State
	log   logrus.FieldLogger

	mu    sync.Mutex
	dec   *Decoder
	flush *time.Timer

	closeOnce sync.Once
}

// Open prepares in for reading. out receives the mode switching sequences.
func Open(in *os.File, out io.Writer, log logrus.FieldLogger) (*Reader, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	cr, err := cancelreader.NewReader(in)
	if err != nil {
		_ = term.Restore(fd, state)
		return nil, fmt.Errorf("creating input reader: %w", err)
	}
	if _, err := io.WriteString(out, enableSeq); err != nil {
		_ = cr.Close()
		_ = term.Restore(fd, state)
		return nil, fmt.Errorf("enabling key reporting: %w", err)
	}
	return &Reader{
		in:    in,
		out:   out,
		cr:    cr,
		state: state,
		log:   log,
		dec:   NewDecoder(true),
	}, nil
}

// Run reads until ctx is done or Close is called, passing every decoded
// message to handle. handle is called from the reading goroutine and from
// the ESC timeout timer, never concurrently.
func (r *Reader) Run(ctx context.Context, handle func(msg any)) error {
	stop := context.AfterFunc(ctx, func() { r.cr.Cancel() })
	defer stop()

	buf := make([]byte, 256)
	for {
		n, err := r.cr.Read(buf)
		if n > 0 {
			r.feed(buf[:n], handle)
		}
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
	}
}

func (r *Reader) feed(p []byte, handle func(msg any)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.flush != nil {
		r.flush.Stop()
		r.flush = nil
	}
	for _, msg := range r.dec.Feed(p) {
		handle(msg)
	}
	if r.dec.Pending() {
		r.flush = time.AfterFunc(escTimeout, func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.flush = nil
			for _, msg := range r.dec.Flush() {
				handle(msg)
			}
		})
	}
}

// Close stops reading, disables the reporting modes and restores the
// terminal.
func (r *Reader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.cr.Cancel()
		r.mu.Lock()
		if r.flush != nil {
			r.flush.Stop()
		}
		r.mu.Unlock()

		if _, werr := io.WriteString(r.out, disableSeq); werr != nil {
			r.log.WithError(werr).Warn("failed to disable key reporting")
		}
		err = errors.Join(r.cr.Close(), term.Restore(int(r.in.Fd()), r.state))
	})
	return err
}
