// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Palette used by the pterm-backed presenter.
var (
	colorAccent  = pterm.NewRGB(255, 140, 53)
	colorSuccess = pterm.NewRGB(0, 200, 120)
	colorWarning = pterm.NewRGB(255, 182, 39)
	colorError   = pterm.NewRGB(215, 38, 56)
	colorMuted   = pterm.NewRGB(130, 130, 130)
)

var (
	StylePrimary   = colorAccent.ToRGBStyle()
	StyleSuccess   = colorSuccess.ToRGBStyle()
	StyleWarning   = colorWarning.ToRGBStyle()
	StyleError     = colorError.ToRGBStyle()
	StyleSecondary = colorMuted.ToRGBStyle()
)
