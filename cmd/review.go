package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"inscricoes/internal/types"
)

// reviewColumns bounds how many extra columns reviewLines shows per row.
const reviewColumns = 3

// reviewLines renders one summary line per missing record: the identifier
// followed by the first few other columns.
func reviewLines(t types.Table, column string, hidden ...string) []string {
	skip := map[string]bool{column: true}
	for _, h := range hidden {
		skip[h] = true
	}
	var extra []string
	for _, c := range t.Columns {
		if !skip[c] && len(extra) < reviewColumns {
			extra = append(extra, c)
		}
	}

	lines := make([]string, len(t.Rows))
	for i, rec := range t.Rows {
		parts := []string{fmt.Sprintf("%-25s", rec[column])}
		for _, c := range extra {
			parts = append(parts, rec[c])
		}
		lines[i] = strings.Join(parts, " | ")
	}
	return lines
}

// renderRecord prints every column of rec, one per line.
func renderRecord(w io.Writer, columns []string, rec types.Record) {
	width := 0
	for _, c := range columns {
		if n := len([]rune(c)); n > width {
			width = n
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, c := range columns {
		pad := width - len([]rune(c))
		fmt.Fprintf(w, "%s%s : %s\n", c, strings.Repeat(" ", pad), rec[c])
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
}

// reviewMissing lets the user move through the missing records with the
// arrow keys, press Enter to view a full record and "s" to save its
// identifier to the follow-up file. It returns immediately when stdin is
// not a terminal.
func reviewMissing(t types.Table, column, followUp string, hidden []string, log *zerolog.Logger) {
	if len(t.Rows) == 0 {
		return
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Warn().Msg("Review needs an interactive terminal; skipping")
		return
	}

	if runtime.GOOS == "windows" {
		enableVT()
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Println("(interactive review not supported on this terminal)")
		return
	}
	defer term.Restore(fd, oldState)

	lines := reviewLines(t, column, hidden...)
	reader := bufio.NewReader(os.Stdin)
	selected := 0
	status := ""

	// Raw mode disables output post-processing, so lines end in \r\n.
	redraw := func() {
		fmt.Print("\033[H\033[2J")
		for i, l := range lines {
			prefix := "  "
			if i == selected {
				prefix = "> "
			}
			fmt.Print(prefix + l + "\r\n")
		}
		fmt.Print("(↑/↓ navigate, Enter details, s save for follow-up, Esc quit)\r\n")
		if status != "" {
			fmt.Print(status + "\r\n")
		}
	}

	// showDetails prints the selected record in cooked mode and reports
	// whether raw mode could be re-entered.
	showDetails := func() bool {
		term.Restore(fd, oldState)
		fmt.Println()
		renderRecord(os.Stdout, t.Columns, t.Rows[selected])

		fmt.Print("\n(press Enter to return)")
		_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')

		state, err := term.MakeRaw(fd)
		if err != nil {
			return false
		}
		oldState = state
		reader = bufio.NewReader(os.Stdin)
		return true
	}

	save := func() {
		id := t.Rows[selected][column]
		added, err := saveFollowUp(followUp, id)
		switch {
		case err != nil:
			status = fmt.Sprintf("failed to save %s: %v", id, err)
		case added:
			status = fmt.Sprintf("saved %s to %s", id, followUp)
		default:
			status = fmt.Sprintf("%s already in %s", id, followUp)
		}
	}

	move := func(delta int) {
		next := selected + delta
		if next >= 0 && next < len(lines) {
			selected = next
			redraw()
		}
	}

	redraw()

	for {
		b1, err := reader.ReadByte()
		if err != nil {
			return
		}
		// Windows console arrow sequences (0 or 224, then code)
		if b1 == 0 || b1 == 224 {
			b2, _ := reader.ReadByte()
			switch b2 {
			case 72: // up
				move(-1)
			case 80: // down
				move(1)
			}
			continue
		}

		switch b1 {
		case 27: // ESC or ANSI sequence
			if reader.Buffered() == 0 {
				fmt.Print("\r\n")
				return
			}
			b2, _ := reader.ReadByte()
			if b2 != '[' || reader.Buffered() == 0 {
				continue
			}
			b3, _ := reader.ReadByte()
			switch b3 {
			case 'A': // up
				move(-1)
			case 'B': // down
				move(1)
			}
		case '\r', '\n':
			if !showDetails() {
				return
			}
			redraw()
		case 's', 'S':
			save()
			redraw()
		case 'q', 3: // q or Ctrl-C
			fmt.Print("\r\n")
			return
		}
	}
}
