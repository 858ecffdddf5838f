package cli

import (
	"fmt"
	"io"
	"strings"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"github.com/fatih/color"
)

const barWidth = 20

var (
	bold       = color.New(color.Bold)
	faint      = color.New(color.Faint)
	green      = color.New(color.FgGreen)
	greenBold  = color.New(color.FgGreen, color.Bold)
	yellowBold = color.New(color.FgYellow, color.Bold)
	cyanBold   = color.New(color.FgCyan, color.Bold)
	red        = color.New(color.FgRed)
	errPrefix  = color.New(color.FgRed, color.Bold)
	helpPrefix = color.New(color.FgGreen, color.Bold)
	infoPrefix = color.New(color.FgBlue, color.Bold)
)

// gaugeLevels lists every setting in the order the gauge shows them
var gaugeLevels = []string{"auto", "0", "1", "2", "3", "4", "5", "6", "7", "full-speed", "disengaged"}

// PrintError writes err and, when present, its help text.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s%s\n", errPrefix.Sprint("==> ERROR: "), err)
	if help := errors.HelpOf(err); help != "" {
		fmt.Fprintf(w, "%s%s\n", helpPrefix.Sprint("==> HELP: "), help)
	}
}

// tempColor buckets: below 40 blue, 40-55 green, 56-75 yellow, above 75 red.
func tempColor(temp uint8) *color.Color {
	switch {
	case temp < 40:
		return color.New(color.FgBlue)
	case temp <= 55:
		return color.New(color.FgGreen)
	case temp <= 75:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func temperatureBar(temp uint8) string {
	filled := int(temp) * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}

	c := tempColor(temp)
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(c.Sprint(strings.Repeat("#", filled)))
	b.WriteString(faint.Sprint(strings.Repeat(".", barWidth-filled)))
	b.WriteString("]")

	return b.String()
}

// levelGauge draws every setting with the current one highlighted:
//
//	[*-#-*-*-*-*-*-*-*-*-*]
//	 A 0 1 2 3 4 5 6 7 F D
func levelGauge(current string) string {
	var marks, labels strings.Builder

	marks.WriteString("[")
	labels.WriteString(" ")
	for i, level := range gaugeLevels {
		label := strings.ToUpper(level[:1])
		if level == current {
			marks.WriteString(yellowBold.Sprint("#"))
			labels.WriteString(greenBold.Sprint(label))
		} else {
			marks.WriteString(red.Sprint("*"))
			labels.WriteString(faint.Sprint(label))
		}

		if i != len(gaugeLevels)-1 {
			marks.WriteString(faint.Sprint("-"))
			labels.WriteString(" ")
		}
	}
	marks.WriteString("]")
	labels.WriteString(" ")

	return marks.String() + "\n" + labels.String()
}
