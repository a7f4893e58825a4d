package services

import (
	"html"
	"sensordigest/internal/models"
	"sensordigest/internal/structures"
	"sensordigest/internal/summary"
	"strings"
)

const (
	tableOpen    = `<table style="border: 1px solid black; border-collapse: collapse;">`
	headerCell   = `<th style="border: 1px solid black;">`
	bodyCellOpen = `<td style="border: 1px solid black; background-color: `
	labelColumn  = 1
)

type ReportServiceInterface interface {
	Build(snapshot *models.SummarySnapshot) []*models.Subscription
	Lookup(subs []*models.Subscription, email string) (*models.Subscription, bool)
}

type ReportService struct {
	config *structures.Config
}

// Build derives one subscription per distinct recipient, ordered by first appearance
// in the recipient row. Every table holds the label column plus the subscribed ones.
func (rs *ReportService) Build(snapshot *models.SummarySnapshot) []*models.Subscription {
	var subs []*models.Subscription
	byEmail := make(map[string]*models.Subscription)

	for _, column := range summary.PopulatedColumns(snapshot, rs.config.Summary.FirstColumn) {
		title := snapshot.Field(models.FieldChartTitles, column)
		for _, email := range summary.SplitRecipients(snapshot.Field(models.FieldEmailAddresses, column)) {
			sub, ok := byEmail[email]
			if !ok {
				sub = &models.Subscription{Email: email, Columns: []int{labelColumn}}
				byEmail[email] = sub
				subs = append(subs, sub)
			}
			sub.PlotTitles = append(sub.PlotTitles, title)
			sub.Columns = append(sub.Columns, column)
		}
	}

	for _, sub := range subs {
		sub.HTMLTable = RenderTable(snapshot.Block, sub.Columns)
	}
	return subs
}

func (rs *ReportService) Lookup(subs []*models.Subscription, email string) (*models.Subscription, bool) {
	for _, sub := range subs {
		if sub.Email == email {
			return sub, true
		}
	}
	return nil, false
}

// RenderTable renders the block keeping only the filtered 1-based columns. The header
// row ends at its first blank cell and the body ends at the first row whose first
// cell is blank.
func RenderTable(block [][]models.Cell, columns []int) string {
	keep := make(map[int]bool, len(columns))
	for _, c := range columns {
		keep[c] = true
	}

	var b strings.Builder
	b.WriteString(tableOpen)
	b.WriteString("<tr>")

	width := 0
	if len(block) > 0 {
		for _, cell := range block[0] {
			if strings.TrimSpace(cell.Value) == "" {
				break
			}
			width++
			if keep[width] {
				b.WriteString(headerCell)
				b.WriteString(html.EscapeString(cell.Value))
				b.WriteString("</th>")
			}
		}
	}
	b.WriteString("</tr>")

	for r := 1; r < len(block); r++ {
		row := block[r]
		if len(row) == 0 || strings.TrimSpace(row[0].Value) == "" {
			break
		}
		b.WriteString("<tr>")
		for c := 1; c <= width; c++ {
			if !keep[c] {
				continue
			}
			cell := models.Cell{Color: "#ffffff"}
			if c <= len(row) {
				cell = row[c-1]
			}
			if cell.Color == "" {
				cell.Color = "#ffffff"
			}
			b.WriteString(bodyCellOpen)
			b.WriteString(html.EscapeString(cell.Color))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(cell.Value))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func NewReportService(config *structures.Config) ReportServiceInterface {
	return &ReportService{config: config}
}
