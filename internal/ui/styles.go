package ui

import "github.com/charmbracelet/lipgloss"

var (
	// ColorSuccess colours confirmation lines.
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	// ColorAccent highlights relaunch hints.
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

// IconSuccess prefixes confirmation lines.
const IconSuccess = "✔"

const iconMessageTemplate = "%s %s"
