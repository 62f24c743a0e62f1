package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/shop"
)

// renderDashboard draws the summary cards and the latest orders.
func renderDashboard(cat *catalog.Catalog, st *catalog.Stats, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n\n")

	if st == nil {
		b.WriteString(dimItemStyle.Render("Loading..."))
		return b.String()
	}

	f := cat.Format()
	var cards []string
	for _, c := range cat.Collections() {
		if n, ok := st.Counts[c.Name()]; ok {
			cards = append(cards, card(c.Title(), shop.Count(n)))
		}
	}
	if _, ok := st.Counts[shop.ResOrders]; ok {
		cards = append(cards, card("Revenue", f.Money(st.Revenue)))
	}
	cards = append(cards, card("Storage", humanize.Bytes(uint64(st.StoreSize))))

	perRow := max(width/(lipgloss.Width(cardStyle.Render(""))+1), 1)
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
		b.WriteString("\n")
	}

	if len(st.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(paneHeaderStyle.Render("Recent orders"))
		b.WriteString("\n")
		for _, o := range st.Recent {
			status := ""
			if o.Status != nil {
				status = *o.Status
				if style, ok := statusStyles[status]; ok {
					status = style.Render(status)
				}
			}
			id := o.ID
			if len(id) > 8 {
				id = id[:8]
			}
			b.WriteString(strings.Join([]string{
				dimItemStyle.Render(id),
				lipgloss.NewStyle().Width(14).Render(f.Ago(o.OrderDate.Time)),
				lipgloss.NewStyle().Width(12).Align(lipgloss.Right).Render(f.Money(o.Total)),
				status,
			}, "  "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func card(label, value string) string {
	return cardStyle.Render(dimItemStyle.Render(label) + "\n" + statValueStyle.Render(value))
}
