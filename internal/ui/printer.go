package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	noColorEnvironmentVariableConstant       = "NO_COLOR"
	cliColorEnvironmentVariableConstant      = "CLICOLOR"
	cliColorForceEnvironmentVariableConstant = "CLICOLOR_FORCE"
	colorDisabledValueConstant               = "0"
)

// Printer writes styled lines to a single output. Colours are dropped when the
// output is not a terminal unless a profile is pinned with WithColorProfile.
type Printer struct {
	output       io.Writer
	successStyle lipgloss.Style
	accentStyle  lipgloss.Style
}

type printerConfiguration struct {
	colorProfile       termenv.Profile
	colorProfilePinned bool
}

// PrinterOption customizes a Printer.
type PrinterOption func(*printerConfiguration)

// WithColorProfile pins the colour profile instead of detecting it from the output.
func WithColorProfile(profile termenv.Profile) PrinterOption {
	return func(configuration *printerConfiguration) {
		configuration.colorProfile = profile
		configuration.colorProfilePinned = true
	}
}

// EnvironmentLookup matches os.LookupEnv.
type EnvironmentLookup func(string) (string, bool)

// EnvironmentColorOptions applies NO_COLOR, CLICOLOR=0 and CLICOLOR_FORCE.
// NO_COLOR wins over CLICOLOR_FORCE. Without any of them the profile is detected.
func EnvironmentColorOptions(lookup EnvironmentLookup) []PrinterOption {
	if lookup == nil {
		return nil
	}
	if value, present := lookup(noColorEnvironmentVariableConstant); present && len(value) > 0 {
		return []PrinterOption{WithColorProfile(termenv.Ascii)}
	}
	if value, present := lookup(cliColorForceEnvironmentVariableConstant); present && len(value) > 0 && value != colorDisabledValueConstant {
		return []PrinterOption{WithColorProfile(termenv.ANSI256)}
	}
	if value, present := lookup(cliColorEnvironmentVariableConstant); present && value == colorDisabledValueConstant {
		return []PrinterOption{WithColorProfile(termenv.Ascii)}
	}
	return nil
}

// NewPrinter builds a Printer whose colour profile is detected from output unless pinned.
func NewPrinter(output io.Writer, options ...PrinterOption) *Printer {
	configuration := &printerConfiguration{}
	for _, option := range options {
		if option != nil {
			option(configuration)
		}
	}

	renderer := lipgloss.NewRenderer(output)
	if configuration.colorProfilePinned {
		renderer.SetColorProfile(configuration.colorProfile)
	}
	return &Printer{
		output:       output,
		successStyle: renderer.NewStyle().Foreground(ColorSuccess),
		accentStyle:  renderer.NewStyle().Foreground(ColorAccent),
	}
}

// RenderSuccess renders "✔ message" in the success colour.
func (printer *Printer) RenderSuccess(message string) string {
	return printer.successStyle.Render(fmt.Sprintf(iconMessageTemplate, IconSuccess, message))
}

// RenderAccent renders text in the accent colour.
func (printer *Printer) RenderAccent(text string) string {
	return printer.accentStyle.Render(text)
}

// PrintSuccess writes the rendered success line followed by a newline.
func (printer *Printer) PrintSuccess(message string) error {
	_, writeError := fmt.Fprintln(printer.output, printer.RenderSuccess(message))
	return writeError
}
