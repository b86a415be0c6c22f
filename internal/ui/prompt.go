package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/dustin/go-humanize"
)

// countPrompt is the modal "number of bookmarks" input.
type countPrompt struct {
	input textinput.Model
	max   int
	err   string
}

func newCountPrompt() countPrompt {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "50,000,000"
	ti.CharLimit = 16
	ti.Width = 16
	return countPrompt{input: ti}
}

// open shows the prompt prefilled with value, accepting [0, maxCount].
func (p *countPrompt) open(value, maxCount int) {
	p.max = maxCount
	p.err = ""
	p.input.SetValue(humanize.Comma(int64(value)))
	p.input.CursorEnd()
	p.input.Focus()
}

func (p *countPrompt) close() {
	p.input.Blur()
	p.err = ""
}

func (p *countPrompt) focused() bool {
	return p.input.Focused()
}

// submit parses the input. On error the prompt stays open with a message.
func (p *countPrompt) submit() (int, bool) {
	n, err := parseCount(p.input.Value(), p.max)
	if err != nil {
		p.err = err.Error()
		return 0, false
	}
	p.close()
	return n, true
}

// parseCount accepts digits with optional "," "_" or space grouping.
func parseCount(s string, maxCount int) (int, error) {
	clean := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("enter a number")
	}
	n, err := strconv.Atoi(clean)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < 0 || n > maxCount {
		return 0, fmt.Errorf("must be between 0 and %s", humanize.Comma(int64(maxCount)))
	}
	return n, nil
}

func (p countPrompt) view(width int) string {
	line := PromptLabel.Render("Number of bookmarks: ") + p.input.View()
	if p.err != "" {
		line += "  " + PromptError.Render(p.err)
	} else {
		line += "  " + StatusBarText.Render(fmt.Sprintf("0..%s  enter:generate  esc:cancel", humanize.Comma(int64(p.max))))
	}
	return PromptBar.Width(width).Render(line)
}
