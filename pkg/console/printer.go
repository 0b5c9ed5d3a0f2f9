package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Binding is one row of the key help table.
type Binding struct {
	Keys   string
	Action string
}

// Printer writes styled lines to the console.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a printer writing to w. In raw mode w should be a
// CRLFWriter.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Instructions prints the title and key map shown at startup.
func (p *Printer) Instructions(title string, bindings []Binding) {
	rows := make([][]string, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, []string{b.Keys, b.Action})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Key", "Action").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			default:
				return cellStyle
			}
		})

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("CTRL-C to quit."))
	sb.WriteString("\n")
	fmt.Fprint(p.w, sb.String())
}

// Status prints a status line for a recognized action.
func (p *Printer) Status(msg string) {
	fmt.Fprintln(p.w, statusStyle.Render(msg))
}

// Error prints an error line.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.w, errorStyle.Render(err.Error()))
}
