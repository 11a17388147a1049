// Package render turns engine replies into terminal output.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"

	"github.com/arcanaland/cardsmith/internal/card"
	"github.com/arcanaland/cardsmith/internal/engine"
	apperrors "github.com/arcanaland/cardsmith/internal/errors"
)

// Severity colours of message cards.
const (
	ErrorColor   = 0xAA0000
	WarningColor = 0xAAAA00
	InfoColor    = 0x00AA00
)

// Embed is a titled message with a severity colour.
type Embed struct {
	Title string
	Body  string
	Color int
}

// ErrorEmbed builds the card shown for a failed command.
func ErrorEmbed(err *apperrors.Error) Embed {
	return Embed{
		Title: "Error - " + err.Title(),
		Body:  err.Message,
		Color: ErrorColor,
	}
}

// IDsChangedEmbed warns that ids in a deck were renumbered.
func IDsChangedEmbed(deckName string) Embed {
	return Embed{
		Title: "Warning - IDs Changed",
		Body:  fmt.Sprintf("Card ids in deck %s have changed. Search again before using an id.", deckName),
		Color: WarningColor,
	}
}

// Renderer writes replies to a terminal or plain stream.
type Renderer struct {
	out   io.Writer
	width int
	color bool
}

// New creates a renderer. Colour is enabled when out is a terminal.
func New(out io.Writer) *Renderer {
	r := &Renderer{out: out, width: 80}
	if f, ok := out.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			r.color = !colorize.NoColor
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				r.width = w
			}
		}
	}
	return r
}

// NewPlain creates a renderer without colour at a fixed width.
func NewPlain(out io.Writer, width int) *Renderer {
	return &Renderer{out: out, width: width}
}

// Reply prints the reply text followed by its error or warning cards.
func (r *Renderer) Reply(reply engine.Reply) {
	if reply.Err != nil {
		r.Embed(ErrorEmbed(reply.Err))
		return
	}
	if reply.Text != "" {
		fmt.Fprintln(r.out, reply.Text)
	}
	if reply.IDsChanged {
		r.Embed(IDsChangedEmbed(reply.Deck))
	}
}

// Embed prints a titled, colour-coded block.
func (r *Renderer) Embed(e Embed) {
	bar := r.paint(e.Color, "┃")
	fmt.Fprintf(r.out, "%s %s\n", bar, r.paint(e.Color, e.Title, colorize.Bold))
	for _, line := range wrapText(e.Body, r.width-2) {
		fmt.Fprintf(r.out, "%s %s\n", bar, line)
	}
}

// Card prints a single card with its id and deck.
func (r *Renderer) Card(deckName string, id int, c card.Card) {
	label := func(s string) string { return r.paint(0x00AAAA, s) }

	fmt.Fprintln(r.out, label("Deck: ")+deckName)
	fmt.Fprintln(r.out, label("ID:   ")+fmt.Sprint(id))
	fmt.Fprintln(r.out, label("Type: ")+string(c.Category()))
	if c.Category() == card.Statement {
		fmt.Fprintln(r.out, label("Gaps: ")+fmt.Sprint(c.Gaps()))
	}
	fmt.Fprintln(r.out)
	for _, line := range wrapText(c.Text(), r.width-2) {
		fmt.Fprintln(r.out, "  "+r.highlightGaps(line))
	}
}

// highlightGaps marks each gap so blanks stand out in statements
func (r *Renderer) highlightGaps(line string) string {
	if !r.color {
		return line
	}
	return strings.ReplaceAll(line, card.GapMarker, r.paint(WarningColor, card.GapMarker, colorize.Bold))
}

func (r *Renderer) paint(hex int, s string, extra ...colorize.Attribute) string {
	if !r.color {
		return s
	}
	c := colorize.New(append([]colorize.Attribute{NearestAttribute(hex)}, extra...)...)
	c.EnableColor()
	return c.Sprint(s)
}

// palette holds the standard terminal foreground colours.
var palette = []struct {
	attr colorize.Attribute
	rgb  colorful.Color
}{
	{colorize.FgBlack, colorful.Color{R: 0, G: 0, B: 0}},
	{colorize.FgRed, colorful.Color{R: 0.67, G: 0, B: 0}},
	{colorize.FgGreen, colorful.Color{R: 0, G: 0.67, B: 0}},
	{colorize.FgYellow, colorful.Color{R: 0.67, G: 0.67, B: 0}},
	{colorize.FgBlue, colorful.Color{R: 0, G: 0, B: 0.67}},
	{colorize.FgMagenta, colorful.Color{R: 0.67, G: 0, B: 0.67}},
	{colorize.FgCyan, colorful.Color{R: 0, G: 0.67, B: 0.67}},
	{colorize.FgWhite, colorful.Color{R: 0.67, G: 0.67, B: 0.67}},
	{colorize.FgHiRed, colorful.Color{R: 1, G: 0.33, B: 0.33}},
	{colorize.FgHiGreen, colorful.Color{R: 0.33, G: 1, B: 0.33}},
	{colorize.FgHiYellow, colorful.Color{R: 1, G: 1, B: 0.33}},
	{colorize.FgHiBlue, colorful.Color{R: 0.33, G: 0.33, B: 1}},
	{colorize.FgHiWhite, colorful.Color{R: 1, G: 1, B: 1}},
}

// NearestAttribute maps a 0xRRGGBB colour to the closest terminal colour.
func NearestAttribute(hex int) colorize.Attribute {
	target, err := colorful.Hex(fmt.Sprintf("#%06x", hex&0xFFFFFF))
	if err != nil {
		return colorize.FgWhite
	}

	best := palette[0]
	bestDist := target.DistanceLab(best.rgb)
	for _, p := range palette[1:] {
		if d := target.DistanceLab(p.rgb); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best.attr
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	// Ensure width is reasonable
	if width < 10 {
		width = 40
	}

	var result []string
	for _, para := range strings.Split(text, "\n") {
		var currentLine string
		words := strings.Fields(para)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}

		for _, word := range words {
			if len(currentLine) == 0 {
				currentLine = word
			} else if len(currentLine)+1+len(word) <= width {
				currentLine += " " + word
			} else {
				result = append(result, currentLine)
				currentLine = word
			}
		}
		result = append(result, currentLine)
	}

	return result
}
