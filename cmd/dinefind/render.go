package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	pagerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// renderResults formats the result list and pagination bar of a session.
func renderResults(st domsession.State) string {
	if msg := st.Message(); msg != "" {
		out := noDataStyle.Render(msg)
		if st.Failure() != domsession.FailureNone {
			out += "\n" + metaStyle.Render("reason: "+string(st.Failure()))
		}
		return out
	}

	var b strings.Builder
	results := st.Results()
	title := "Restaurants"
	if st.SearchActive() {
		title = fmt.Sprintf("Search results (%s)", st.Filters().Mode())
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	for _, r := range results {
		b.WriteString(renderCard(st, r))
		b.WriteString("\n")
	}

	b.WriteString(renderPager(st))
	return b.String()
}

func renderCard(st domsession.State, r restaurant.Summary) string {
	var c strings.Builder
	c.WriteString(nameStyle.Render(r.Name))
	if r.Cuisines != "" {
		c.WriteString("\n" + r.Cuisines)
	}
	if rating := formatRating(r.Rating); rating != "" {
		c.WriteString("\n" + rating)
	}
	if img, ok := st.Thumbnail(r.ID); ok {
		c.WriteString("\n" + metaStyle.Render(img.Src()))
	}
	c.WriteString("\n" + metaStyle.Render(fmt.Sprintf("id %d", r.ID)))
	return blockStyle.Render(c.String())
}

func renderPager(st domsession.State) string {
	p := st.Pages()
	cells := make([]string, 0, len(p.Visible())+2)
	if st.HasPrevious() {
		cells = append(cells, "‹")
	}
	for _, n := range p.Visible() {
		if n == p.Current() {
			cells = append(cells, pagerStyle.Render(fmt.Sprintf("[%d]", n)))
			continue
		}
		cells = append(cells, fmt.Sprintf("%d", n))
	}
	if st.HasNext() {
		cells = append(cells, fmt.Sprintf("» %d", p.FastForwardTarget()))
	}
	return strings.Join(cells, " ") + "\n" +
		metaStyle.Render(fmt.Sprintf("page %d of %d", p.Current(), p.Total()))
}

// renderDetail formats the detail view of a restaurant.
func renderDetail(d *restaurant.Detail) string {
	var c strings.Builder
	c.WriteString(nameStyle.Render(d.Name))
	if d.Cuisines != "" {
		c.WriteString("\n" + d.Cuisines)
	}
	if rating := formatRating(d.Rating); rating != "" {
		c.WriteString("\n" + rating)
	}
	if addr := d.Address(); addr != "" {
		c.WriteString("\n" + addr)
	}
	if sym := d.PriceSymbols(); sym != "" {
		c.WriteString(fmt.Sprintf("\nPrice: %s", sym))
	}
	if d.AverageCostForTwo > 0 {
		c.WriteString(fmt.Sprintf("\nAverage cost for two: %s %.0f", d.Currency, d.AverageCostForTwo))
	}
	c.WriteString(fmt.Sprintf("\nOnline delivery: %s", yesNo(d.OnlineDelivery())))
	c.WriteString(fmt.Sprintf("\nDelivering now: %s", yesNo(d.DeliveringNow())))
	if d.MenuURL != "" {
		c.WriteString("\n" + metaStyle.Render(d.MenuURL))
	}
	return blockStyle.Render(c.String())
}

func formatRating(r restaurant.Rating) string {
	if r.Aggregate == "" {
		return ""
	}
	s := fmt.Sprintf("★ %s", r.Aggregate)
	if r.Text != "" {
		s += " " + r.Text
	}
	if r.Votes != "" {
		s += fmt.Sprintf(" (%s votes)", r.Votes)
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
