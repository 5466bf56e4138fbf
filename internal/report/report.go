// Package report renders simulation results: lipgloss tables for the
// terminal and markdown documents for the output directory.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	border = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	header = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).Padding(0, 1)
	cell   = lipgloss.NewStyle().Padding(0, 1)
	number = cell.Align(lipgloss.Right)
	title  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Money formats a price or budget with thousands separators.
func Money(v int) string {
	if v < 0 {
		return "-$" + humanize.Comma(int64(-v))
	}
	return "$" + humanize.Comma(int64(v))
}

// Points formats a point total to one decimal.
func Points(v float64) string {
	return humanize.CommafWithDigits(v, 1)
}

// Pct formats a percentage to one decimal.
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Count formats an integer count with thousands separators.
func Count(v int) string {
	return humanize.Comma(int64(v))
}

// Table renders rows under headers as a bordered terminal table. Columns
// listed in numeric are right aligned.
func Table(headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		BorderHeader(true).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case right[col]:
				return number
			default:
				return cell
			}
		})
	return t.String()
}

// Section renders a titled block for the terminal.
func Section(name, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, title.Render(name), body) + "\n"
}

// markdown accumulates a markdown document.
type markdown struct {
	strings.Builder
}

func (m *markdown) heading(level int, format string, args ...any) {
	if m.Len() > 0 {
		m.WriteString("\n")
	}
	m.WriteString(strings.Repeat("#", level) + " " + fmt.Sprintf(format, args...) + "\n\n")
}

func (m *markdown) line(format string, args ...any) {
	fmt.Fprintf(m, format+"\n", args...)
}

func (m *markdown) bullet(format string, args ...any) {
	m.line("- "+format, args...)
}

// table writes a pipe table. Cells must not contain '|'.
func (m *markdown) table(headers []string, rows [][]string) {
	m.line("| %s |", strings.Join(headers, " | "))
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	m.line("| %s |", strings.Join(sep, " | "))
	for _, r := range rows {
		m.line("| %s |", strings.Join(r, " | "))
	}
	m.WriteString("\n")
}
