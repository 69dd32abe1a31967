package present

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/fediscope/fediscope/internal/content"
	"github.com/fediscope/fediscope/internal/route"
)

const excerptWidth = 60

// Age formats the time since t relative to now in the short form used by
// fediverse clients: "now", "42s", "5m", "3h", "2d", or a date past a month.
func Age(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "now"
	case d < time.Minute:
		return strconv.Itoa(int(d.Seconds())) + "s"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h"
	case d < 30*24*time.Hour:
		return strconv.Itoa(int(d.Hours()/24)) + "d"
	}
	return t.Format("2006-01-02")
}

// Headline is the one-line summary shown in lists.
func (it Item) Headline() string {
	text := it.Title
	if text == "" {
		text = it.Body
	}
	if it.Spoiler != "" {
		text = "CW: " + it.Spoiler
	}
	return content.Excerpt(text, excerptWidth)
}

// Table renders items as a table with author, age and headline columns.
func Table(items []Item, now time.Time) string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetHeader([]string{"#", "Author", "Age", "Post"})
	table.SetAutoWrapText(false)

	for i, it := range items {
		row := []string{
			strconv.Itoa(i + 1),
			strings.Repeat("  ", it.Depth) + content.Excerpt(it.Author, 32),
			Age(it.When, now),
			it.Headline(),
		}
		colors := tablewriter.Colors{}
		if it.Focus {
			colors = tablewriter.Colors{tablewriter.FgHiGreenColor, tablewriter.Bold}
		}
		table.Rich(row, []tablewriter.Colors{{}, colors, {}, colors})
	}

	table.Render()
	return tableString.String()
}

// RoutesTable renders the route table in match order.
func RoutesTable(routes []route.Route) string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetHeader([]string{"Name", "Pattern"})
	table.SetAutoWrapText(false)
	for _, rt := range routes {
		table.Rich([]string{rt.Name, rt.Pattern}, []tablewriter.Colors{
			{tablewriter.FgHiCyanColor, tablewriter.Bold},
			{},
		})
	}
	table.Render()
	return tableString.String()
}

// Detail renders a single item with its full body wrapped to width.
func Detail(it Item, width int, showSpoiler bool, now time.Time) string {
	var b strings.Builder
	if it.Note != "" {
		b.WriteString(it.Note + "\n")
	}
	head := it.Author
	if age := Age(it.When, now); age != "" {
		head += " · " + age
	}
	b.WriteString(head + "\n")
	if it.Title != "" && it.Title != it.Author {
		b.WriteString(content.Wrap(it.Title, width) + "\n")
	}
	b.WriteString("\n")
	body := it.Body
	if it.Spoiler != "" {
		b.WriteString(content.Wrap("CW: "+it.Spoiler, width) + "\n")
		if !showSpoiler {
			body = "(hidden, press s to show)"
		}
	}
	if body != "" {
		b.WriteString(content.Wrap(body, width) + "\n")
	}
	if it.Stats != "" {
		b.WriteString("\n" + it.Stats + "\n")
	}
	if it.Link != "" {
		b.WriteString(it.Link + "\n")
	}
	return b.String()
}

// Fprint writes res as a colored header followed by the item table.
func Fprint(w io.Writer, res *route.Result, opts Options, now time.Time) error {
	if res == nil {
		return nil
	}
	title := res.Title
	if title == "" {
		title = string(res.Kind)
	}
	header := color.New(color.FgHiGreen, color.Bold).Sprint(title)
	if res.Instance != "" {
		header += " " + color.New(color.FgCyan).Sprint(res.Instance)
	}
	if res.Source != "" && res.Source != "direct" {
		header += " " + color.New(color.FgYellow).Sprintf("(via %s)", res.Source)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	items := Items(res, opts)
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "nothing here")
		return err
	}
	if _, err := io.WriteString(w, Table(items, now)); err != nil {
		return err
	}
	if res.Next != "" {
		_, err := fmt.Fprintf(w, "next page: %s\n", res.Next)
		return err
	}
	return nil
}
