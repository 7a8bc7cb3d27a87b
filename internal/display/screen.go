package display

import (
	"io"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size cannot be queried.
const DefaultWidth = 80

const (
	cursorHome  = "\x1b[H"
	eraseLine   = "\x1b[K"
	eraseBelow  = "\x1b[J"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	resetStyle  = "\x1b[0m"
)

var escapePrefix = regexp.MustCompile(`^\x1b\[[0-9;?]*[A-Za-z]`)

// TerminalWidth returns a width func for the terminal on fd, falling back to
// DefaultWidth when fd is not a terminal.
func TerminalWidth(fd int) func() int {
	return func() int {
		width, _, err := term.GetSize(fd)
		if err != nil || width <= 0 {
			return DefaultWidth
		}
		return width
	}
}

// Screen redraws a frame in place. Each draw homes the cursor and overwrites
// every line instead of clearing the display, then erases whatever the
// previous frame left below.
type Screen struct {
	out   io.Writer
	width func() int

	closeOnce sync.Once
}

// NewScreen draws to out. A nil width func means DefaultWidth.
func NewScreen(out io.Writer, width func() int) *Screen {
	if width == nil {
		width = func() int { return DefaultWidth }
	}
	return &Screen{out: out, width: width}
}

// Setup clears the display once and hides the cursor.
func (s *Screen) Setup() error {
	_, err := io.WriteString(s.out, clearScreen+cursorHome+hideCursor)
	return err
}

// Draw writes lines from the top-left corner, each padded or cut to the
// terminal width.
func (s *Screen) Draw(lines []string) error {
	width := s.width()
	if width <= 0 {
		width = DefaultWidth
	}

	var b strings.Builder
	b.WriteString(cursorHome)
	for _, line := range lines {
		b.WriteString(eraseLine)
		b.WriteString(Fit(line, width))
		b.WriteString("\n")
	}
	b.WriteString(eraseBelow)
	b.WriteString(cursorHome)

	_, err := io.WriteString(s.out, b.String())
	return err
}

// Close restores the terminal. Calls after the first are no-ops.
func (s *Screen) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_, err = io.WriteString(s.out, resetStyle+clearScreen+cursorHome+showCursor)
	})
	return err
}

// VisibleWidth is the number of terminal columns line occupies, ignoring
// escape sequences.
func VisibleWidth(line string) int {
	width := 0
	for i := 0; i < len(line); {
		if loc := escapePrefix.FindStringIndex(line[i:]); loc != nil {
			i += loc[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		width += runewidth.RuneWidth(r)
		i += size
	}
	return width
}

// Fit pads line with spaces, or cuts it, so that it spans exactly width
// columns. Escape sequences are copied through and take no columns.
func Fit(line string, width int) string {
	var b strings.Builder
	used := 0
	for i := 0; i < len(line); {
		if loc := escapePrefix.FindStringIndex(line[i:]); loc != nil {
			b.WriteString(line[i : i+loc[1]])
			i += loc[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		w := runewidth.RuneWidth(r)
		if used+w > width {
			break
		}
		b.WriteString(line[i : i+size])
		used += w
		i += size
	}
	if used < width {
		b.WriteString(strings.Repeat(" ", width-used))
	}
	return b.String()
}
