package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/frame"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const defaultWidth = 80

// ANSI renders markdown to styled terminal text. Paragraphs and list items
// are wrapped to the configured width; code is printed verbatim behind a
// gutter.
type ANSI struct {
	width  int
	parser parser.Parser

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	code      lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

// NewANSI creates a terminal renderer. A non-positive width means 80 columns.
func NewANSI(theme frame.Theme, width int) *ANSI {
	if width <= 0 {
		width = defaultWidth
	}
	return &ANSI{
		width:     width,
		parser:    goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser(),
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Heading)).Bold(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Code)),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// Render converts markdown to ANSI-styled text without a trailing newline.
func (a *ANSI) Render(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}
	src := []byte(markdown)
	doc := a.parser.Parse(text.NewReader(src))

	w := &ansiWriter{ANSI: a, src: src}
	var out bytes.Buffer
	w.blocks(doc, &out, a.width)
	return strings.TrimRight(out.String(), "\n"), nil
}

// ansiWriter holds the state of one Render call.
type ansiWriter struct {
	*ANSI
	src []byte
}

func (w *ansiWriter) blocks(parent ast.Node, out *bytes.Buffer, width int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, out, width)
		if n.NextSibling() != nil {
			out.WriteString("\n")
		}
	}
}

func (w *ansiWriter) block(node ast.Node, out *bytes.Buffer, width int) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		w.wrapped(out, w.inline(n), width)

	case *ast.Heading:
		w.wrapped(out, w.heading.Render(w.inline(n)), width)

	case *ast.FencedCodeBlock:
		if lang := n.Language(w.src); len(lang) > 0 {
			out.WriteString(w.muted.Render(string(lang)) + "\n")
		}
		w.codeLines(out, n.Lines())

	case *ast.CodeBlock:
		w.codeLines(out, n.Lines())

	case *ast.Blockquote:
		var inner bytes.Buffer
		w.blocks(n, &inner, width-2)
		gutter := w.muted.Render("│") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			out.WriteString(gutter + line + "\n")
		}

	case *ast.List:
		w.list(n, out, width, 0)

	case *ast.ThematicBreak:
		out.WriteString(w.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			out.Write(seg.Value(w.src))
		}

	case *east.Table:
		w.table(n, out)

	default:
		w.blocks(n, out, width)
	}
}

func (w *ansiWriter) wrapped(out *bytes.Buffer, s string, width int) {
	out.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	out.WriteString("\n")
}

func (w *ansiWriter) codeLines(out *bytes.Buffer, lines *text.Segments) {
	gutter := w.muted.Render("│") + " "
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\n")
		out.WriteString(gutter + w.code.Render(line) + "\n")
	}
}

func (w *ansiWriter) list(n *ast.List, out *bytes.Buffer, width, depth int) {
	indent := strings.Repeat("  ", depth)
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		var pending strings.Builder
		flush := func() {
			if pending.Len() == 0 {
				return
			}
			w.item(out, indent, marker, pending.String(), width)
			pending.Reset()
			marker = strings.Repeat(" ", len(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch child := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				pending.WriteString(w.inline(child))
			case *ast.List:
				flush()
				w.list(child, out, width, depth+1)
			default:
				var inner bytes.Buffer
				w.block(child, &inner, width)
				pending.WriteString(strings.TrimRight(inner.String(), "\n"))
			}
		}
		flush()
	}
}

// item writes one list entry, aligning wrapped lines under the text.
func (w *ansiWriter) item(out *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	wrapped := lipgloss.NewStyle().Width(max(width-len(prefix), 10)).Render(content)
	pad := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			out.WriteString(prefix + line + "\n")
			continue
		}
		out.WriteString(pad + line + "\n")
	}
}

func (w *ansiWriter) table(n *east.Table, out *bytes.Buffer) {
	sep := " " + w.muted.Render("│") + " "
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, w.inline(cell))
		}
		line := strings.Join(cells, sep)
		if _, header := row.(*east.TableHeader); header {
			line = w.bold.Render(line)
		}
		out.WriteString(line + "\n")
	}
}

func (w *ansiWriter) inline(n ast.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.span(c, &buf)
	}
	return buf.String()
}

func (w *ansiWriter) span(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(w.src))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			buf.WriteString(w.italic.Render(w.inline(n)))
		} else {
			buf.WriteString(w.bold.Render(w.inline(n)))
		}

	case *east.Strikethrough:
		buf.WriteString(w.strike.Render(w.inline(n)))

	case *ast.CodeSpan:
		buf.WriteString(w.code.Render(w.inline(n)))

	case *ast.Link:
		buf.WriteString(w.underline.Render(w.inline(n)))
		buf.WriteString(" " + w.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(w.underline.Render(string(n.URL(w.src))))

	case *ast.Image:
		buf.WriteString(w.underline.Render(w.inline(n)))
		buf.WriteString(" " + w.muted.Render("("+string(n.Destination)+")"))

	case *east.TaskCheckBox:
		if n.IsChecked {
			buf.WriteString("[x] ")
		} else {
			buf.WriteString("[ ] ")
		}

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(w.src))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.span(c, buf)
		}
	}
}
