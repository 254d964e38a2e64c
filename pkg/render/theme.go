package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/tabledoc/pkg/record"
)

// Mark is the glyph and style used for one row or table state.
type Mark struct {
	Glyph string
	Style lipgloss.Style
}

// Render styles the glyph followed by a space.
func (m Mark) Render() string { return m.Style.Render(m.Glyph + " ") }

// Theme maps the states shown in the run summary to marks. Problem marks a
// table that could not be rendered.
type Theme struct {
	Name    string
	Passed  Mark
	Failed  Mark
	Errored Mark
	Problem Mark
	Muted   lipgloss.Style
	Heading lipgloss.Style
}

// ForVerdict returns the mark for a row outcome.
func (t Theme) ForVerdict(v record.Verdict) Mark {
	switch v {
	case record.Passed:
		return t.Passed
	case record.Error:
		return t.Errored
	default:
		return t.Failed
	}
}

func fg(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

// DefaultTheme uses bright ANSI-256 colors.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Passed:  Mark{"✓", fg("34")},
		Failed:  Mark{"✗", fg("196")},
		Errored: Mark{"‼", fg("203")},
		Problem: Mark{"⚠", fg("214")},
		Muted:   fg("242"),
		Heading: lipgloss.NewStyle().Bold(true),
	}
}

// OrcaTheme is a muted palette for light terminals.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Passed:  Mark{"✓", fg("108")},
		Failed:  Mark{"✗", fg("167")},
		Errored: Mark{"‼", fg("131")},
		Problem: Mark{"!", fg("179")},
		Muted:   fg("245"),
		Heading: lipgloss.NewStyle().Bold(true),
	}
}

// MonoTheme uses ASCII marks and no color, for pipes and logs.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:    "mono",
		Passed:  Mark{"+", plain},
		Failed:  Mark{"x", plain},
		Errored: Mark{"E", plain},
		Problem: Mark{"!", plain},
		Muted:   plain,
		Heading: plain,
	}
}

// ThemeByName is case-insensitive and falls back to DefaultTheme.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
