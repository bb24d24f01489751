package ux

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/stockroom/internal/errors"
)

// Styles bundles the lipgloss styles used across views. Colors are
// dropped automatically when the writer is not a terminal.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Value   lipgloss.Style
}

// NewStyles builds styles bound to w's color profile.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Value:   r.NewStyle().Bold(true),
	}
}

// KeyValues renders aligned "key: value" lines.
func (s *Styles) KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}

	var b strings.Builder
	for _, p := range pairs {
		key := fmt.Sprintf("%-*s", width+1, p[0]+":")
		b.WriteString(s.Muted.Render(key))
		b.WriteString(" ")
		b.WriteString(s.Value.Render(p[1]))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderError formats err for a terminal, listing the suggestions and docs
// link carried by a coded error.
func RenderError(w io.Writer, err error) {
	if err == nil {
		return
	}
	s := NewStyles(w)

	var se *errors.StockroomError
	if !stderrors.As(err, &se) {
		fmt.Fprintln(w, s.Error.Render("Error:"), err.Error())
		return
	}

	headline := fmt.Sprintf("[%s] %s", se.Code, se.Message)
	if se.Cause != nil {
		headline += ": " + se.Cause.Error()
	}
	fmt.Fprintln(w, s.Error.Render("Error:"), headline)
	if len(se.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Warning.Render("Suggestions:"))
		for _, sug := range se.Suggestions {
			fmt.Fprintf(w, "  - %s\n", sug)
		}
	}
	if se.DocsURL != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Muted.Render("Docs: "+se.DocsURL))
	}
}
