package cli

import (
	"fmt"
	"io"

	"github.com/Veraticus/groundwork/internal/common"
	"github.com/schollz/progressbar/v3"
)

// Progress is a counting progress bar. A nil *Progress is valid and does
// nothing, so callers can skip the bar for small or quiet runs.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a bar over total steps writing to w.
func NewProgress(w io.Writer, total int, description string) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]%s[reset]", description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				common.LogDebug("failed to write newline after progress bar", common.Fields{"error": err.Error()})
			}
		}),
	)
	return &Progress{bar: bar}
}

// Add advances the bar by n steps.
func (p *Progress) Add(n int) {
	if p == nil {
		return
	}
	if err := p.bar.Add(n); err != nil {
		common.LogDebug("failed to update progress bar", common.Fields{"error": err.Error()})
	}
}

// Finish fills the bar.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		common.LogDebug("failed to finish progress bar", common.Fields{"error": err.Error()})
	}
}
