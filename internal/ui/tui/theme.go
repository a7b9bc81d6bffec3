package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/assetsync/internal/config"
)

// Catppuccin Mocha palette. Mutable so config can override it.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorBlue   = lipgloss.Color("#89b4fa")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorMauve  = lipgloss.Color("#cba6f7")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorDim    = lipgloss.Color("#3a4055")
	ColorBright = lipgloss.Color("#cdd6f4")
)

// Styles, rebuilt by rebuildStyles after color changes.
var (
	styleHeader       lipgloss.Style
	styleHeaderLabel  lipgloss.Style
	styleDivider      lipgloss.Style
	styleIconDone     lipgloss.Style
	styleIconFailed   lipgloss.Style
	styleIconSkipped  lipgloss.Style
	styleFilePath     lipgloss.Style
	styleFileDir      lipgloss.Style
	styleFileSize     lipgloss.Style
	styleFileSpeed    lipgloss.Style
	styleCurrent      lipgloss.Style
	styleError        lipgloss.Style
	styleErrorPath    lipgloss.Style
	styleKeybindKey   lipgloss.Style
	styleKeybindLabel lipgloss.Style
	styleBigNumber    lipgloss.Style
	styleSparkline    lipgloss.Style
	styleStatus       lipgloss.Style
	styleSavePrompt   lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	styleHeaderLabel = lipgloss.NewStyle().Bold(true).Foreground(ColorMauve)
	styleDivider = lipgloss.NewStyle().Foreground(ColorDim)
	styleIconDone = lipgloss.NewStyle().Foreground(ColorGreen)
	styleIconFailed = lipgloss.NewStyle().Foreground(ColorRed)
	styleIconSkipped = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFilePath = lipgloss.NewStyle().Foreground(ColorBright)
	styleFileDir = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFileSize = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFileSpeed = lipgloss.NewStyle().Foreground(ColorBlue)
	styleCurrent = lipgloss.NewStyle().Foreground(ColorBlue)
	styleError = lipgloss.NewStyle().Foreground(ColorRed)
	styleErrorPath = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	styleKeybindKey = lipgloss.NewStyle().Foreground(ColorMauve).Bold(true)
	styleKeybindLabel = lipgloss.NewStyle().Foreground(ColorMuted)
	styleBigNumber = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	styleSparkline = lipgloss.NewStyle().Foreground(ColorBlue)
	styleStatus = lipgloss.NewStyle().Foreground(ColorYellow).Italic(true)
	styleSavePrompt = lipgloss.NewStyle().Foreground(ColorMuted)
}

// ApplyTheme overrides colors from a config ThemeConfig and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	set := func(dst *lipgloss.Color, v *string) {
		if v != nil {
			*dst = lipgloss.Color(*v)
		}
	}
	set(&ColorGreen, tc.Green)
	set(&ColorBlue, tc.Blue)
	set(&ColorYellow, tc.Yellow)
	set(&ColorRed, tc.Red)
	set(&ColorMauve, tc.Mauve)
	set(&ColorMuted, tc.Muted)
	set(&ColorDim, tc.Dim)
	set(&ColorBright, tc.Bright)
	rebuildStyles()
}
