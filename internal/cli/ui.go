package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/newarch/pkg/compat"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary accents
	colorGreen  = lipgloss.Color("35")  // Green - supported
	colorYellow = lipgloss.Color("220") // Amber - not found
	colorRed    = lipgloss.Color("167") // Soft red - not supported
	colorWhite  = lipgloss.Color("255") // Bright white - names
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim    = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleName = lipgloss.NewStyle().Foreground(colorWhite).PaddingLeft(2)
)

// statusLook is the icon, heading and color of one verdict group.
type statusLook struct {
	icon    string
	heading string
	style   lipgloss.Style
}

var statusLooks = map[compat.Status]statusLook{
	compat.StatusSupported:    {"✓", "Supported", lipgloss.NewStyle().Bold(true).Foreground(colorGreen)},
	compat.StatusNotSupported: {"✗", "Not supported", lipgloss.NewStyle().Bold(true).Foreground(colorRed)},
	compat.StatusNotFound:     {"?", "Not found", lipgloss.NewStyle().Bold(true).Foreground(colorYellow)},
}

// =============================================================================
// Display Options
// =============================================================================

// displayOptions selects which verdict groups are printed and how.
type displayOptions struct {
	show    map[compat.Status]bool
	details bool // print each verdict's detail next to its name
}

func defaultDisplay() displayOptions {
	o := displayOptions{show: make(map[compat.Status]bool, len(compat.Statuses))}
	for _, s := range compat.Statuses {
		o.show[s] = true
	}
	return o
}

// parseShow parses a comma-separated list of statuses. Empty shows all.
func parseShow(s string) (displayOptions, error) {
	if strings.TrimSpace(s) == "" {
		return defaultDisplay(), nil
	}
	o := displayOptions{show: make(map[compat.Status]bool)}
	for _, part := range strings.Split(s, ",") {
		status, err := compat.ParseStatus(part)
		if err != nil {
			return o, fmt.Errorf("--show: %w (want supported, not-supported or not-found)", err)
		}
		o.show[status] = true
	}
	return o, nil
}

// =============================================================================
// Result Output
// =============================================================================

// renderResult prints the selected verdict groups followed by a summary line.
// Empty groups are omitted.
func renderResult(w io.Writer, r *compat.Result, opts displayOptions) {
	for _, status := range compat.Statuses {
		names := r.Names(status)
		if !opts.show[status] || len(names) == 0 {
			continue
		}

		look := statusLooks[status]
		fmt.Fprintf(w, "%s %s\n", look.style.Render(look.icon+" "+look.heading), StyleDim.Render(fmt.Sprintf("(%d)", len(names))))
		for _, name := range names {
			line := styleName.Render(name)
			if opts.details {
				if v, ok := r.Verdict(name); ok && v.Detail != "" {
					line += "  " + StyleDim.Render(v.Detail)
				}
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, summaryLine(r))
}

// summaryLine renders "N dependencies · a supported · b not supported · c not found".
func summaryLine(r *compat.Result) string {
	noun := "dependencies"
	if r.Total == 1 {
		noun = "dependency"
	}
	parts := []string{
		StyleNumber.Render(fmt.Sprint(r.Total)) + " " + noun,
		fmt.Sprintf("%d supported", r.Supported),
		fmt.Sprintf("%d not supported", r.NotSupported),
		fmt.Sprintf("%d not found", r.NotFound),
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
