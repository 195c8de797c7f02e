// Package ui holds terminal styling helpers shared by the commands.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	colorEnabled = termenv.ColorProfile() != termenv.Ascii
)

func render(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// RenderAccent highlights s in the accent color.
func RenderAccent(s string) string { return render(accentStyle, s) }

// RenderPass renders s as a success marker.
func RenderPass(s string) string { return render(passStyle, s) }

// RenderWarn renders s as a warning.
func RenderWarn(s string) string { return render(warnStyle, s) }

// RenderErr renders s as an error.
func RenderErr(s string) string { return render(errStyle, s) }

// RenderFaint de-emphasizes s.
func RenderFaint(s string) string { return render(faintStyle, s) }

// RenderHeader renders a section heading.
func RenderHeader(s string) string { return render(headerStyle, s) }
