// Package report renders benchmark results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/funvibe/tapevm/internal/bench"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/results"
	"github.com/mattn/go-isatty"
	"github.com/xyproto/env/v2"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiGreen = "\033[32m"
	ansiDim   = "\033[2m"
)

// Printer writes tables to out, with ANSI colour when enabled.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter colours its output only when w is a terminal and NO_COLOR is
// not set.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w, color: colorEnabled(w)}
}

// NewPlainPrinter never colours.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{out: w}
}

func colorEnabled(w io.Writer) bool {
	if !colorAllowed() {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorAllowed applies the NO_COLOR convention (https://no-color.org/) and
// TERM=dumb.
func colorAllowed() bool {
	return !env.Has(config.EnvNoColor) && !env.Is("TERM", "dumb")
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// PrintResults writes one row per result. The fastest result of each case
// is highlighted.
func (p *Printer) PrintResults(rs []bench.Result) {
	fastest := make(map[string]int64)
	for _, r := range rs {
		if best, ok := fastest[r.Case]; !ok || r.NsPerOp() < best {
			fastest[r.Case] = r.NsPerOp()
		}
	}

	rows := [][]string{{"CASE", "BACKEND", "ITERATIONS", "NS/OP", "CPU", "VALUE"}}
	for _, r := range rs {
		rows = append(rows, []string{
			r.Case, r.Backend, fmt.Sprint(r.Iterations), fmt.Sprint(r.NsPerOp()),
			r.CPU.Round(time.Microsecond).String(), fmt.Sprint(r.Value),
		})
	}
	p.table(rows, func(i int) string {
		if i == 0 {
			return ansiBold
		}
		if r := rs[i-1]; len(rs) > 1 && r.NsPerOp() == fastest[r.Case] {
			return ansiGreen
		}
		return ""
	})
}

// PrintHistory writes recorded runs, newest first as given.
func (p *Printer) PrintHistory(runs []results.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "no recorded runs")
		return
	}
	rows := [][]string{{"RECORDED", "CASE", "BACKEND", "ITERATIONS", "NS/OP", "VALUE", "ID"}}
	for _, r := range runs {
		rows = append(rows, []string{
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"), r.Case, r.Backend,
			fmt.Sprint(r.Iterations), fmt.Sprint(r.NsPerOp()), fmt.Sprint(r.Value), r.ID,
		})
	}
	p.table(rows, func(i int) string {
		if i == 0 {
			return ansiBold
		}
		return ansiDim
	})
}

// table left-aligns text columns and right-aligns the rest.
func (p *Printer) table(rows [][]string, style func(row int) string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for n, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[i]-len(cell))
			if numeric(cell) && n > 0 {
				sb.WriteString(pad + cell)
			} else if i == len(row)-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(cell + pad)
			}
		}
		line := sb.String()
		if code := style(n); code != "" {
			line = p.paint(code, line)
		}
		fmt.Fprintln(p.out, line)
	}
}

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 && len(s) > 1 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
