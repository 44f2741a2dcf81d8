// Package layout turns raw per-page text runs into lines and heading
// candidates using font-size and baseline heuristics.
package layout

import (
	"math"
	"strings"
)

const (
	// BaselineTolerance is the max vertical delta (in page units) for two
	// runs to share a line.
	BaselineTolerance = 5.0

	// HeadingScale multiplies the modal body font size to obtain the
	// heading threshold.
	HeadingScale = 1.2

	// MaxHeadingLength caps heading candidate text length; longer lines
	// are body text regardless of font size.
	MaxHeadingLength = 150
)

// Transform is a 2D affine matrix [a b c d e f]. Index 3 (d) approximates
// the font size of the run; index 5 (f) is its vertical offset on the page.
type Transform [6]float64

// TextRun is a positioned fragment of page text.
type TextRun struct {
	Text      string
	Transform Transform
}

// FontSize returns the vertical-scale component of the transform.
func (r TextRun) FontSize() float64 { return r.Transform[3] }

// Baseline returns the vertical offset of the run on the page.
func (r TextRun) Baseline() float64 { return r.Transform[5] }

// Line is an ordered group of runs sharing a vertical band.
type Line struct {
	Runs     []TextRun
	Text     string
	FontSize float64 // representative size: first run's
	Baseline float64
	Heading  bool
}

// Page is the analyzed layout of a single page.
type Page struct {
	Number           int
	Lines            []Line
	RawText          string
	ModalFontSize    float64
	HeadingThreshold float64
}

// HeadingCandidates returns the page's lines flagged as headings, in order.
func (p Page) HeadingCandidates() []Line {
	var out []Line
	for _, l := range p.Lines {
		if l.Heading {
			out = append(out, l)
		}
	}
	return out
}

// BodyText returns the concatenation of non-heading lines, page order.
func (p Page) BodyText() string {
	var sb strings.Builder
	for _, l := range p.Lines {
		if l.Heading {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(l.Text)
	}
	return sb.String()
}

// AnalyzePage groups a page's runs into lines and flags heading candidates.
// It is a pure transformation: no state is carried between pages.
func AnalyzePage(number int, runs []TextRun) Page {
	page := Page{Number: number}

	page.ModalFontSize = ModalFontSize(runs)
	page.HeadingThreshold = page.ModalFontSize * HeadingScale
	page.RawText = concatRuns(runs)

	var current []TextRun
	flush := func() {
		if len(current) == 0 {
			return
		}
		line := buildLine(current, page.HeadingThreshold)
		page.Lines = append(page.Lines, line)
		current = nil
	}

	for _, run := range runs {
		if len(current) > 0 {
			delta := math.Abs(run.Baseline() - current[0].Baseline())
			if delta > BaselineTolerance {
				flush()
			}
		}
		current = append(current, run)
	}
	flush()

	return page
}

// ModalFontSize returns the most frequent font size among the runs, rounded
// to two decimals. Returns 0 for a page with no runs. Ties resolve to the
// smaller size so the heading threshold stays conservative.
func ModalFontSize(runs []TextRun) float64 {
	if len(runs) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	for _, run := range runs {
		size := math.Round(run.FontSize()*100) / 100
		counts[size]++
	}
	var modal float64
	best := 0
	for size, n := range counts {
		if n > best || (n == best && size < modal) {
			modal = size
			best = n
		}
	}
	return modal
}

func buildLine(runs []TextRun, threshold float64) Line {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.Text)
	}
	text := strings.TrimSpace(sb.String())
	line := Line{
		Runs:     runs,
		Text:     text,
		FontSize: runs[0].FontSize(),
		Baseline: runs[0].Baseline(),
	}
	line.Heading = threshold > 0 &&
		line.FontSize > threshold &&
		len([]rune(text)) < MaxHeadingLength &&
		text != ""
	return line
}

func concatRuns(runs []TextRun) string {
	parts := make([]string, 0, len(runs))
	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		parts = append(parts, run.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
