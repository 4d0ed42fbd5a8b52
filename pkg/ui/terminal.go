package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"clipfetch/pkg/status"
)

// ASCII logo for the application
const ASCIILogo = `
 ██████╗██╗     ██╗██████╗ ███████╗███████╗████████╗ ██████╗██╗  ██╗
██╔════╝██║     ██║██╔══██╗██╔════╝██╔════╝╚══██╔══╝██╔════╝██║  ██║
██║     ██║     ██║██████╔╝█████╗  █████╗     ██║   ██║     ███████║
██║     ██║     ██║██╔═══╝ ██╔══╝  ██╔══╝     ██║   ██║     ██╔══██║
╚██████╗███████╗██║██║     ██║     ███████╗   ██║   ╚██████╗██║  ██║
 ╚═════╝╚══════╝╚═╝╚═╝     ╚═╝     ╚══════╝   ╚═╝    ╚═════╝╚═╝  ╚═╝
            TWITCH CLIP DISCOVERY AND DOWNLOAD UTILITY
`

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
	Dim    = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

// PrintInfo prints a labeled value, label in cyan
func PrintInfo(label string, value string) {
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// Renderer writes status events as terminal lines, one per event.
// Success is green, warnings yellow, errors red, tool progress dimmed,
// and ordinary info stays uncolored so the stream reads like a log.
type Renderer struct {
	out     io.Writer
	noColor bool
}

// NewRenderer creates a Renderer writing to out (stdout when nil).
// noColor drops the ANSI codes for dumb terminals and piped output.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out, noColor: noColor}
}

// Render writes a single event
func (r *Renderer) Render(e status.Event) {
	fmt.Fprintln(r.out, r.format(e))
}

func (r *Renderer) format(e status.Event) string {
	if r.noColor {
		return e.Message
	}
	switch e.Severity {
	case status.SeveritySuccess:
		return Green(e.Message)
	case status.SeverityWarning:
		return Yellow(e.Message)
	case status.SeverityError:
		return Red(e.Message)
	default:
		if strings.HasPrefix(e.Message, "Progress: ") {
			return Dim(e.Message)
		}
		return e.Message
	}
}
