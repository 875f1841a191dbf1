package library

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/feather-lang/gmk"
)

// The color pack wraps text in ANSI styling for recipe echo lines:
//
//	$(color bold red,build failed)
//	$(color green,ok)
//
// The first argument is a space-separated list of styles. Codes are
// always emitted; make output usually goes through pipes, where the
// usual tty detection would strip them.
func init() {
	gmk.RegisterLibrary(gmk.Library{
		Name: "color",
		Install: func(m *gmk.Make) error {
			return m.Export("color", colorize)
		},
	})
}

var colorAttrs = map[string]color.Attribute{
	"bold":      color.Bold,
	"faint":     color.Faint,
	"italic":    color.Italic,
	"underline": color.Underline,
	"black":     color.FgBlack,
	"red":       color.FgRed,
	"green":     color.FgGreen,
	"yellow":    color.FgYellow,
	"blue":      color.FgBlue,
	"magenta":   color.FgMagenta,
	"cyan":      color.FgCyan,
	"white":     color.FgWhite,
}

func colorize(style, text string) (string, error) {
	var attrs []color.Attribute
	for _, word := range strings.Fields(style) {
		attr, ok := colorAttrs[word]
		if !ok {
			return "", fmt.Errorf("color: unknown style %q", word)
		}
		attrs = append(attrs, attr)
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text), nil
}
