package host

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/dispatch"
	"github.com/llehouerou/keyhold/internal/state"
)

const (
	// DocumentTargetName identifies the page in logs.
	DocumentTargetName = "document"
	// PixelsPerLine converts scroll deltas to lines.
	PixelsPerLine = 16.0
	// columnStep is the horizontal scroll of one arrow key.
	columnStep = 4
)

var (
	ErrNoHistory  = errors.New("no history entry")
	ErrNoDocument = errors.New("no document open")
	ErrNoLine     = errors.New("no line at pointer")
)

// linkPattern matches [[relative/path]] links inside a document.
var linkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// Markers is the part of the session store a page uses.
type Markers interface {
	GetMarker(contentID string) (*state.Marker, error)
	SaveOffset(contentID string, offset float64)
	SetLiked(contentID, title string, liked bool) error
}

type visit struct {
	path   string
	offset float64
}

// PageState is a snapshot for rendering.
type PageState struct {
	Path       string
	Title      string
	Lines      []string // shared, never modified after load
	Offset     float64
	Column     int
	Liked      bool
	Selected   int // -1 when no line is selected
	CanBack    bool
	CanForward bool
	LastKey    string
	Version    int // bumped on every load
}

// Page is the host document: a text file with a fractional scroll offset,
// browsing history and a liked flag. It is the scroll surface and the
// fallback target for synthetic keys.
type Page struct {
	mu       sync.Mutex
	markers  Markers
	log      logrus.FieldLogger
	path     string
	title    string
	lines    []string
	offset   float64
	column   int
	top      int // screen row of the first visible line
	height   int // visible rows
	liked    bool
	selected int
	back     []visit
	forward  []visit
	pointer  *dispatch.Point
	lastKey  string
	version  int
	onChange func()
}

var _ dispatch.Document = (*Page)(nil)

// NewPage creates an empty page. markers may be nil.
func NewPage(markers Markers, log logrus.FieldLogger) *Page {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Page{markers: markers, log: log, selected: -1, height: 1}
}

// SetOnChange registers a callback run after every state change.
func (p *Page) SetOnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// SetViewport tells the page where its lines are drawn.
func (p *Page) SetViewport(top, height int) {
	p.mu.Lock()
	p.top = top
	p.height = max(height, 1)
	p.offset = p.clampOffset(p.offset)
	p.mu.Unlock()
}

// Open navigates to the document at path, pushing the current one onto the
// back history.
func (p *Page) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return p.change(func() error {
		prev, hadPrev := p.current()
		if err := p.load(abs, 0, true); err != nil {
			return err
		}
		if hadPrev {
			p.leave(prev)
			p.back = append(p.back, prev)
		}
		p.forward = nil
		return nil
	})
}

// Back returns to the previous document.
func (p *Page) Back() error {
	return p.change(func() error {
		if len(p.back) == 0 {
			return ErrNoHistory
		}
		target := p.back[len(p.back)-1]
		cur, _ := p.current()
		if err := p.load(target.path, target.offset, false); err != nil {
			return err
		}
		p.back = p.back[:len(p.back)-1]
		p.leave(cur)
		p.forward = append(p.forward, cur)
		return nil
	})
}

// Forward undoes the last Back.
func (p *Page) Forward() error {
	return p.change(func() error {
		if len(p.forward) == 0 {
			return ErrNoHistory
		}
		target := p.forward[len(p.forward)-1]
		cur, _ := p.current()
		if err := p.load(target.path, target.offset, false); err != nil {
			return err
		}
		p.forward = p.forward[:len(p.forward)-1]
		p.leave(cur)
		p.back = append(p.back, cur)
		return nil
	})
}

// Reload re-reads the current document, keeping the scroll offset.
func (p *Page) Reload() error {
	return p.change(func() error {
		cur, ok := p.current()
		if !ok {
			return ErrNoDocument
		}
		p.leave(cur)
		return p.load(cur.path, cur.offset, false)
	})
}

// ToggleLike flips the liked flag and persists it.
func (p *Page) ToggleLike() error {
	return p.change(func() error {
		if p.path == "" {
			return ErrNoDocument
		}
		liked := !p.liked
		if p.markers != nil {
			if err := p.markers.SetLiked(p.path, p.title, liked); err != nil {
				return fmt.Errorf("saving liked flag: %w", err)
			}
		}
		p.liked = liked
		return nil
	})
}

// ClickAt activates the line under pt: a line with a link opens its target,
// any other line becomes selected.
func (p *Page) ClickAt(pt dispatch.Point) error {
	return p.change(func() error {
		row := pt.Y - p.top
		if row < 0 || row >= p.height {
			return ErrNoLine
		}
		line := int(p.offset) + row
		if line >= len(p.lines) {
			return ErrNoLine
		}
		if m := linkPattern.FindStringSubmatch(p.lines[line]); m != nil {
			target := m[1]
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(p.path), target)
			}
			prev, _ := p.current()
			if err := p.load(target, 0, true); err != nil {
				return err
			}
			p.leave(prev)
			p.back = append(p.back, prev)
			p.forward = nil
			return nil
		}
		p.selected = line
		return nil
	})
}

// SetPointer records the last known pointer position.
func (p *Page) SetPointer(pt dispatch.Point) {
	p.mu.Lock()
	p.pointer = &pt
	p.mu.Unlock()
}

// Pointer returns the last known pointer position.
func (p *Page) Pointer() (dispatch.Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pointer == nil {
		return dispatch.Point{}, false
	}
	return *p.pointer, true
}

// GotoLine scrolls so that line n (1-based) is at the top.
func (p *Page) GotoLine(n int) {
	_ = p.change(func() error {
		p.offset = p.clampOffset(float64(n - 1))
		return nil
	})
}

// TargetName implements dispatch.Target.
func (p *Page) TargetName() string {
	return DocumentTargetName
}

// DispatchKey implements dispatch.Target with the default key behavior of
// a document: arrows scroll by one step, Space pages down.
func (p *Page) DispatchKey(ev dispatch.SyntheticKey) error {
	return p.change(func() error {
		p.lastKey = ev.Kind.String() + " " + ev.Code
		if ev.Kind != dispatch.KeyDown {
			return nil
		}
		switch ev.Code {
		case dispatch.ArrowUp:
			p.offset = p.clampOffset(p.offset - 1)
		case dispatch.ArrowDown:
			p.offset = p.clampOffset(p.offset + 1)
		case dispatch.ArrowLeft:
			p.column = max(p.column-columnStep, 0)
		case dispatch.ArrowRight:
			p.column += columnStep
		case dispatch.Space:
			p.offset = p.clampOffset(p.offset + float64(p.height))
		}
		return nil
	})
}

// ScrollBy implements dispatch.Document. deltaY is in pixels.
func (p *Page) ScrollBy(deltaY float64) error {
	if math.IsNaN(deltaY) || math.IsInf(deltaY, 0) {
		return fmt.Errorf("invalid scroll delta %v", deltaY)
	}
	return p.change(func() error {
		p.offset = p.clampOffset(p.offset + deltaY/PixelsPerLine)
		return nil
	})
}

// Close saves the scroll offset of the current document.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.current(); ok {
		p.leave(cur)
	}
}

// Snapshot returns the state for rendering.
func (p *Page) Snapshot() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PageState{
		Path:       p.path,
		Title:      p.title,
		Lines:      p.lines,
		Offset:     p.offset,
		Column:     p.column,
		Liked:      p.liked,
		Selected:   p.selected,
		CanBack:    len(p.back) > 0,
		CanForward: len(p.forward) > 0,
		LastKey:    p.lastKey,
		Version:    p.version,
	}
}

// change runs fn under the lock and notifies after a successful change.
func (p *Page) change(fn func() error) error {
	p.mu.Lock()
	err := fn()
	notify := p.onChange
	p.mu.Unlock()
	if err == nil && notify != nil {
		notify()
	}
	return err
}

func (p *Page) current() (visit, bool) {
	if p.path == "" {
		return visit{}, false
	}
	return visit{path: p.path, offset: p.offset}, true
}

// leave persists the offset of a document being navigated away from.
func (p *Page) leave(v visit) {
	if p.markers != nil && v.path != "" {
		p.markers.SaveOffset(v.path, v.offset)
	}
}

// load replaces the page content. With restore set, the offset and liked
// flag come from the saved marker.
func (p *Page) load(path string, offset float64, restore bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	liked := false
	if p.markers != nil {
		mk, err := p.markers.GetMarker(path)
		if err != nil {
			p.log.WithError(err).WithField("path", path).Warn("loading marker")
		}
		if mk != nil {
			liked = mk.Liked
			if restore {
				offset = mk.Offset
			}
		}
	}

	p.path = path
	p.title = filepath.Base(path)
	p.lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	p.liked = liked
	p.selected = -1
	p.column = 0
	p.offset = p.clampOffset(offset)
	p.version++
	p.log.WithFields(logrus.Fields{"path": path, "lines": len(p.lines)}).Debug("document loaded")
	return nil
}

func (p *Page) clampOffset(offset float64) float64 {
	limit := float64(max(len(p.lines)-p.height, 0))
	return min(max(offset, 0), limit)
}
