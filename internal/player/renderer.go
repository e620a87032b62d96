package player

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"podium/internal/api"
)

const defaultWrapWidth = 78

// Renderer writes presentation output to the terminal. Colors are applied
// only when the writer is an interactive terminal.
type Renderer struct {
	out      io.Writer
	colorize bool
	width    int

	title     *color.Color
	heading   *color.Color
	accent    *color.Color
	dim       *color.Color
	errorText *color.Color
}

// NewRenderer builds a renderer for the writer, detecting TTY support when
// the writer is a file.
func NewRenderer(out io.Writer) *Renderer {
	colorize := false
	if f, ok := out.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return newRenderer(out, colorize)
}

// NewPlainRenderer builds a renderer with colors disabled regardless of the
// writer, for the "plain" theme preference.
func NewPlainRenderer(out io.Writer) *Renderer {
	return newRenderer(out, false)
}

func newRenderer(out io.Writer, colorize bool) *Renderer {
	r := &Renderer{
		out:       out,
		colorize:  colorize,
		width:     defaultWrapWidth,
		title:     color.New(color.FgCyan, color.Bold),
		heading:   color.New(color.FgWhite, color.Bold),
		accent:    color.New(color.FgGreen),
		dim:       color.New(color.Faint),
		errorText: color.New(color.FgRed, color.Bold),
	}
	if !colorize {
		for _, c := range []*color.Color{r.title, r.heading, r.accent, r.dim, r.errorText} {
			c.DisableColor()
		}
	}
	return r
}

// Title announces the presentation.
func (r *Renderer) Title(title string, totalSections int) {
	fmt.Fprintln(r.out)
	r.title.Fprintln(r.out, title)
	r.dim.Fprintf(r.out, "%d sections\n\n", totalSections)
}

// SectionHeader announces a section before its narration starts.
func (r *Renderer) SectionHeader(index, total int, title string) {
	fmt.Fprintln(r.out)
	r.heading.Fprintf(r.out, "[%d/%d] %s\n", index+1, total, title)
	r.dim.Fprintln(r.out, strings.Repeat("-", r.width))
}

// Content writes section text wrapped to the terminal width.
func (r *Renderer) Content(body string) {
	fmt.Fprintln(r.out, text.WrapSoft(body, r.width))
}

// Narrate streams section text word by word in sync with the audio clip.
func (r *Renderer) Narrate(ctx context.Context, body string, duration time.Duration, speed float64) error {
	return streamWords(ctx, r.out, body, duration, speed)
}

// Takeaways lists a section's key points.
func (r *Renderer) Takeaways(points []string) {
	if len(points) == 0 {
		return
	}
	fmt.Fprintln(r.out)
	r.accent.Fprintln(r.out, "Key takeaways:")
	for _, point := range points {
		fmt.Fprintf(r.out, "  • %s\n", text.WrapSoft(point, r.width-4))
	}
}

// Images lists the visuals attached to a section or answer.
func (r *Renderer) Images(urls []string) {
	if len(urls) == 0 {
		return
	}
	for _, url := range urls {
		r.dim.Fprintf(r.out, "  [image] %s\n", url)
	}
}

// ChatQuestion echoes the viewer's question.
func (r *Renderer) ChatQuestion(question string) {
	fmt.Fprintln(r.out)
	r.heading.Fprintf(r.out, "Q: %s\n", question)
}

// ChatAnswer writes the assistant's reply wrapped to width.
func (r *Renderer) ChatAnswer(answer string) {
	fmt.Fprintf(r.out, "A: %s\n", text.WrapSoft(answer, r.width-3))
}

// References renders source pages and their image counts as a table.
func (r *Renderer) References(refs []api.Reference) {
	if len(refs) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Page", "Images"})
	for _, ref := range refs {
		tw.AppendRow(table.Row{ref.Page, len(ref.Images)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	fmt.Fprintln(r.out, tw.Render())
}

// Status prints a transient status line.
func (r *Renderer) Status(message string) {
	r.dim.Fprintf(r.out, "%s\n", message)
}

// Notice prints a state change the viewer should see.
func (r *Renderer) Notice(message string) {
	r.accent.Fprintf(r.out, "%s\n", message)
}

// Error prints a failure the viewer should see.
func (r *Renderer) Error(message string) {
	r.errorText.Fprintf(r.out, "error: %s\n", message)
}

// Prompt writes an input prompt without a trailing newline.
func (r *Renderer) Prompt(label string) {
	r.heading.Fprintf(r.out, "%s: ", label)
}
