package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/posy/internal/garden"
	"github.com/julianstephens/posy/internal/journal"
	"github.com/julianstephens/posy/internal/tui"
)

type GardenCmd struct {
	Year int `help:"Year to show. Defaults to the current year."`
}

func (c *GardenCmd) Run(ctx *Context) error {
	year := c.Year
	if year == 0 {
		year = ctx.currentYear()
	}
	entries := ctx.Entries().Load()
	theme := ctx.theme()
	summary := garden.YearSummary(entries, year)

	ctx.println(theme.Title.Render(fmt.Sprintf("Garden of %d", year)))
	ctx.printf("%d flowers planted · %d affirmations · %d kinds of bloom\n\n",
		summary.TotalCount, summary.AffirmationCount, summary.DistinctMoodCount)

	blooms := garden.Blooms(entries, year, ctx.Thresholds())
	if len(blooms) == 0 {
		ctx.println(theme.Empty.Render("Nothing has been planted yet this year."))
		return nil
	}
	for _, b := range blooms {
		ctx.printf("%s  %-26s %s  ×%d  %s\n", b.Stage.Glyph(), b.Info.Flower, theme.MoodCell(b.Mood, " "+b.Info.Label+" "), b.Count, theme.Muted.Render(b.Stage.String()))
		if quote, ok := garden.ResilienceQuote(b.Mood); ok {
			ctx.println(theme.Quote.Render(quote))
		}
	}
	return nil
}

type YearCmd struct {
	Year int `arg:"" optional:"" help:"Year to show. Defaults to the current year."`
}

func (c *YearCmd) Run(ctx *Context) error {
	year := c.Year
	if year == 0 {
		year = ctx.currentYear()
	}
	entries := journal.FilterByYear(ctx.Entries().Load(), year)
	ctx.print(tui.RenderYear(ctx.theme(), entries, year))
	return nil
}

type MixCmd struct {
	Months string `arg:"" help:"Comma-separated months, e.g. mar,apr,may or 3,4,5."`
	Year   int    `help:"Year to pick from. Defaults to the current year."`
}

func (c *MixCmd) Run(ctx *Context) error {
	months, err := ParseMonths(c.Months)
	if err != nil {
		return err
	}
	year := c.Year
	if year == 0 {
		year = ctx.currentYear()
	}
	mix := journal.SeasonalMix(ctx.Entries().Load(), year, months)
	theme := ctx.theme()

	names := make([]string, len(months))
	for i, m := range months {
		names[i] = m.String()[:3]
	}
	ctx.println(theme.Title.Render(fmt.Sprintf("Seasonal mix %d · %s", year, strings.Join(names, ", "))))
	if len(mix) == 0 {
		ctx.println(theme.Empty.Render("No flowers were picked in those months."))
		return nil
	}
	for _, b := range garden.Blooms(mix, year, ctx.Thresholds()) {
		ctx.printf("  %s %s ×%d\n", b.Stage.Glyph(), b.Info.Flower, b.Count)
	}
	ctx.println()
	for _, e := range journal.SortedByDate(mix) {
		ctx.printf("%s  %s\n", e.Date, e.Mood.Info().Flower)
	}
	return nil
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParseMonths parses a comma-separated list of month names or numbers.
func ParseMonths(s string) ([]time.Month, error) {
	var months []time.Month
	seen := map[time.Month]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		m, ok := monthNames[part]
		if !ok {
			num, err := strconv.Atoi(part)
			if err != nil || num < 1 || num > 12 {
				return nil, fmt.Errorf("invalid month: %s", part)
			}
			m = time.Month(num)
		}
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	if len(months) == 0 {
		return nil, fmt.Errorf("no months given")
	}
	return months, nil
}
