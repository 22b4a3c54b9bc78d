// Package inspect renders registry snapshots for the terminal.
package inspect

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/gobwas/glob"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/yaklabco/solo/pkg/singleton"
	"github.com/yaklabco/solo/pkg/ui"
)

const (
	termWidthFloor    = 20
	fallbackTermWidth = 80
)

// Options controls rendering.
type Options struct {
	// Match is a glob over type names, e.g. "demo.*". Empty matches everything.
	Match string

	// Color enables styled output.
	Color bool

	// Width is the wrap width for notes. Zero means detect.
	Width int
}

// Filter returns the entries whose type name matches pattern.
func Filter(entries []singleton.Entry, pattern string) ([]singleton.Entry, error) {
	if pattern == "" {
		return entries, nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid match pattern %q: %w", pattern, err)
	}

	return lo.Filter(entries, func(e singleton.Entry, _ int) bool {
		return g.Match(e.Type)
	}), nil
}

// Render writes a table of reg's entries to out.
func Render(out io.Writer, reg *singleton.Registry, opts Options) error {
	entries, err := Filter(reg.Entries(), opts.Match)
	if err != nil {
		return err
	}

	styles := ui.NewStyles(opts.Color)
	width := opts.Width
	if width <= 0 {
		width = DetectTermWidth()
	}

	gateState := "unlocked"
	if reg.Gate().IsLocked() {
		gateState = "locked"
	}
	title := fmt.Sprintf("Registry %s (%s), gate %s, thread-safe %t",
		reg.Name(), reg.ID(), gateState, reg.ThreadSafe())
	_, _ = fmt.Fprintln(out, styles.Title.Render(title))
	_, _ = fmt.Fprintln(out)

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, styles.Note.Render("  no matching singletons"))
		return nil
	}

	rows := lo.Map(entries, func(e singleton.Entry, _ int) []string {
		return []string{
			e.Type,
			state(e),
			strconv.FormatInt(e.MutableAccesses, 10),
			strconv.FormatInt(e.ConstAccesses, 10),
			constructedAt(e),
		}
	})
	header := []string{"TYPE", "STATE", "MUTABLE", "CONST", "CONSTRUCTED"}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	const indent = "  "
	_, _ = fmt.Fprintln(out, indent+styles.Header.Render(joinPadded(header, widths)))
	for i, row := range rows {
		cells := make([]string, len(row))
		for col, cell := range row {
			cells[col] = pad(cell, widths[col])
		}
		cells[0] = styles.Type.Render(cells[0])
		cells[1] = stateStyle(styles, entries[i]).Render(cells[1])
		_, _ = fmt.Fprintln(out, indent+strings.Join(cells, "  "))
	}

	if reg.TornDown() {
		note := "This registry has been torn down. Any further access to these singletons is a violation."
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, styles.Note.Render(indentLines(wordwrap.String(note, max(width-len(indent), termWidthFloor)), indent)))
	}

	return nil
}

// ColorEnabled reports whether output to f should be styled: f must be a
// terminal and NO_COLOR must be unset.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(f.Fd())
}

// DetectTermWidth returns the terminal width to use for wrapping.
func DetectTermWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return max(w, termWidthFloor)
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return max(v, termWidthFloor)
		}
	}
	return fallbackTermWidth
}

func state(e singleton.Entry) string {
	switch {
	case e.Destroyed:
		return "destroyed"
	case e.Constructed:
		return "live"
	default:
		return "pending"
	}
}

func stateStyle(styles ui.Styles, e singleton.Entry) lipgloss.Style {
	switch {
	case e.Destroyed:
		return styles.Destroyed
	case e.Constructed:
		return styles.Live
	default:
		return styles.Pending
	}
}

func constructedAt(e singleton.Entry) string {
	if !e.Constructed {
		return "-"
	}
	return e.ConstructedAt.Format(time.RFC3339)
}

func pad(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	return text + strings.Repeat(" ", width-textWidth)
}

func joinPadded(cells []string, widths []int) string {
	return strings.Join(lo.Map(cells, func(c string, i int) string {
		return pad(c, widths[i])
	}), "  ")
}

func indentLines(text, indent string) string {
	return indent + strings.ReplaceAll(text, "\n", "\n"+indent)
}
