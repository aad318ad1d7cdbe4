package ui

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
)

// isDarkBg caches the terminal background detection result at package init.
var isDarkBg = lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

// AdaptiveColor picks between a light-mode and dark-mode hex color string
// based on the detected terminal background.
func AdaptiveColor(light, dark string) color.Color {
	if isDarkBg {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

// IsDarkBackground returns the cached terminal background detection result.
func IsDarkBackground() bool {
	return isDarkBg
}

var currentTheme = DefaultTheme()

// GetTheme returns the currently active UI theme.
func GetTheme() Theme {
	return currentTheme
}

// Theme is the color scheme of the table and the interactive view, based
// on the Catppuccin Latte (light) and Mocha (dark) palettes.
type Theme struct {
	Primary   color.Color
	Secondary color.Color
	Success   color.Color
	Warning   color.Color
	Error     color.Color
	Info      color.Color
	Text      color.Color
	Muted     color.Color
	VeryMuted color.Color
	Border    color.Color
	Accent    color.Color
	Highlight color.Color
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   AdaptiveColor("#8839ef", "#cba6f7"), // Mauve
		Secondary: AdaptiveColor("#04a5e5", "#89dceb"), // Sky
		Success:   AdaptiveColor("#40a02b", "#a6e3a1"), // Green
		Warning:   AdaptiveColor("#df8e1d", "#f9e2af"), // Yellow
		Error:     AdaptiveColor("#d20f39", "#f38ba8"), // Red
		Info:      AdaptiveColor("#1e66f5", "#89b4fa"), // Blue
		Text:      AdaptiveColor("#4c4f69", "#cdd6f4"), // Text
		Muted:     AdaptiveColor("#6c6f85", "#a6adc8"), // Subtext 0
		VeryMuted: AdaptiveColor("#9ca0b0", "#6c7086"), // Overlay 0
		Border:    AdaptiveColor("#acb0be", "#585b70"), // Surface 2
		Accent:    AdaptiveColor("#ea76cb", "#f5c2e7"), // Pink
		Highlight: AdaptiveColor("#e6e9ef", "#181825"), // Mantle
	}
}

// ProviderColor returns the badge color of a provider. Providers without a
// dedicated color share the neutral one.
func ProviderColor(providerID string, theme Theme) color.Color {
	switch providerID {
	case "openai":
		return theme.Success
	case "anthropic":
		return theme.Info
	case "google":
		return theme.Warning
	case "meta":
		return theme.Primary
	default:
		return theme.VeryMuted
	}
}

// StyleHeader is bold text in the primary color.
func StyleHeader(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)
}

// StyleSubheader is bold text in the secondary color.
func StyleSubheader(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true)
}

// StyleMuted is de-emphasized italic text.
func StyleMuted(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true)
}

// StyleError is bold text in the error color.
func StyleError(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)
}

// CreateBadge renders text inverted on a colored background.
func CreateBadge(text string, c color.Color) string {
	return lipgloss.NewStyle().
		Foreground(AdaptiveColor("#FFFFFF", "#000000")).
		Background(c).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// ProviderBadge renders a provider's display name as a colored badge.
func ProviderBadge(providerID, name string, theme Theme) string {
	if name == "" {
		return ""
	}
	return CreateBadge(name, ProviderColor(providerID, theme))
}

// interpolateColor blends between two colors based on position (0.0 to 1.0)
// using linear RGB channel interpolation.
func interpolateColor(a, b color.Color, pos float64) color.Color {
	r1, g1, b1, _ := a.RGBA()
	r2, g2, b2, _ := b.RGBA()

	r := uint8(float64(r1>>8)*(1-pos) + float64(r2>>8)*pos)
	g := uint8(float64(g1>>8)*(1-pos) + float64(g2>>8)*pos)
	bl := uint8(float64(b1>>8)*(1-pos) + float64(b2>>8)*pos)

	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl))
}

// ApplyGradient colors text with a gradient from colorA to colorB, using at
// most eight color stops.
func ApplyGradient(text string, colorA, colorB color.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	const maxStops = 8
	segmentSize := max(len(runes)/maxStops, 1)

	var result strings.Builder
	for i := 0; i < len(runes); i += segmentSize {
		end := min(i+segmentSize, len(runes))

		pos := float64(i) / float64(len(runes))
		style := lipgloss.NewStyle().Foreground(interpolateColor(colorA, colorB, pos))
		result.WriteString(style.Render(string(runes[i:end])))
	}

	return result.String()
}
