package output

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/japaniel/timeago/pkg/db"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// TableFormatter formats output as a terminal table
type TableFormatter struct{}

// hyperlink wraps text in an OSC 8 link when stdout is a terminal.
func hyperlink(text, url string) string {
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

func stripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// displayWidth returns the visible width of s in terminal columns. CJK
// phrases take two columns per character.
func displayWidth(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// truncateToWidth cuts s to at most maxWidth columns, ending in "...".
func truncateToWidth(s string, maxWidth int) (string, int) {
	plain := stripAnsi(s)
	width := runewidth.StringWidth(plain)
	if width <= maxWidth {
		return s, width
	}
	cut := runewidth.Truncate(plain, maxWidth, "...")
	return cut, runewidth.StringWidth(cut)
}

func padRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Format outputs the observations of a source as a table
func (f *TableFormatter) Format(r Report, w io.Writer) error {
	src := r.Source
	title := src.Title
	if title == "" {
		title = src.URL
	}
	fmt.Fprintf(w, "%s (%s, #%d)\n", hyperlink(title, src.URL), src.SourceType, src.ID)

	if len(r.Observations) == 0 {
		fmt.Fprintln(w, "No phrases stored.")
		return nil
	}

	const (
		colIndex  = 4
		colLocale = 7
		colPhrase = 28
		colResult = 16
	)

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s\n",
		colIndex, "#",
		colLocale, "Locale",
		colPhrase, "Phrase",
		colResult, "Result",
		"Published")
	fmt.Fprintln(w, strings.Repeat("-", colIndex+colLocale+colPhrase+colResult+20+8))

	for _, o := range r.Observations {
		phrase, phraseWidth := truncateToWidth(o.Phrase, colPhrase)
		result, resultWidth := formatResult(o)
		fmt.Fprintf(w, "%-*d  %-*s  %s  %s  %s\n",
			colIndex, o.ItemIndex,
			colLocale, o.Locale,
			padRight(phrase, phraseWidth, colPhrase),
			padRight(result, resultWidth, colResult),
			formatPublished(o),
		)
	}

	printFooterSummary(r, w)
	return nil
}

// formatResult returns the colored result column and its visible width.
func formatResult(o db.Observation) (string, int) {
	if o.ErrorKind != "" {
		text := strings.ReplaceAll(o.ErrorKind, "_", " ")
		c := color.RedString
		if o.ErrorKind == db.ErrorKindAmbiguous {
			c = color.YellowString
		}
		return c(text), displayWidth(text)
	}
	text := fmt.Sprintf("%d %s", o.Quantity, o.Unit)
	return color.GreenString(text), displayWidth(text)
}

func formatPublished(o db.Observation) string {
	if o.ErrorKind != "" {
		return "-"
	}
	ts := o.PublishedAt.UTC().Format(time.RFC3339)
	if o.Approximate {
		return "~" + ts
	}
	return ts
}

func printFooterSummary(r Report, w io.Writer) {
	fmt.Fprintln(w)
	parts := []string{fmt.Sprintf("%d parsed", r.Parsed())}
	kinds := make([]string, 0, len(r.Failures))
	for k := range r.Failures {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", r.Failures[k], strings.ReplaceAll(k, "_", " ")))
	}
	fmt.Fprintf(w, "%d phrases: %s\n", len(r.Observations), strings.Join(parts, ", "))
}
