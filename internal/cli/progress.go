package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// transferProgress draws one progress bar per transfer label.
type transferProgress struct {
	out  io.Writer
	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

func newTransferProgress(out io.Writer) *transferProgress {
	return &transferProgress{out: out, bars: map[string]*progressbar.ProgressBar{}}
}

// Report matches provision.ProgressFunc. A total of -1 draws a spinner.
func (p *transferProgress) Report(label string, complete, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bar, ok := p.bars[label]
	if !ok {
		bar = progressbar.NewOptions64(
			total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(label),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		p.bars[label] = bar
	}
	_ = bar.Set64(complete)

	if total > 0 && complete >= total {
		p.finish(label, bar)
	}
}

// Close ends bars whose size was never known.
func (p *transferProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for label, bar := range p.bars {
		p.finish(label, bar)
	}
}

func (p *transferProgress) finish(label string, bar *progressbar.ProgressBar) {
	_ = bar.Finish()
	fmt.Fprintln(p.out)
	delete(p.bars, label)
}
