// Package progress renders a plain-terminal progress bar for long batch encodes.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

const defaultWidth = 40

// Bar writes one rendered progress line per update. It is safe for concurrent use.
type Bar struct {
	mu    sync.Mutex
	out   io.Writer
	bar   progress.Model
	label string
	total int
	done  int
}

// New returns a bar over total units that writes to out. A nil out discards output.
func New(out io.Writer, label string, total int) *Bar {
	if out == nil {
		out = io.Discard
	}
	return &Bar{
		out:   out,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth)),
		label: label,
		total: total,
	}
}

// Add advances the bar by n units and redraws it.
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done += n
	if b.done > b.total {
		b.done = b.total
	}
	b.render()
}

// Done reports how many units have been completed.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Finish terminates the progress line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.out)
}

func (b *Bar) render() {
	fmt.Fprintf(b.out, "\r%s %s %d/%d", b.label, b.bar.ViewAs(b.percent()), b.done, b.total)
}

func (b *Bar) percent() float64 {
	if b.total <= 0 {
		return 1
	}
	return float64(b.done) / float64(b.total)
}
