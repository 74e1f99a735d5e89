package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shehryarbajwa/cf-calendar-api/pkg/models"
)

// The contribution calendar is an SVG grid of rect.day cells, each carrying
// its date and activity count as data attributes.
const (
	daySelector = "rect.day"
	dateAttr    = "data-date"
	itemsAttr   = "data-items"
)

// ParseContributions turns rendered profile markup into contribution records.
// It is a pure transformation over the markup: cells are visited in document
// order, a missing or non-numeric items attribute counts as zero, and only
// cells with a positive count produce a record.
func ParseContributions(html string) ([]models.ContributionRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var records []models.ContributionRecord
	doc.Find(daySelector).Each(func(_ int, cell *goquery.Selection) {
		items := cellItems(cell)
		if items <= 0 {
			return
		}
		date, _ := cell.Attr(dateAttr)
		records = append(records, models.ContributionRecord{
			Date:  date,
			Items: items,
		})
	})

	return records, nil
}

func cellItems(cell *goquery.Selection) int {
	raw, ok := cell.Attr(itemsAttr)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
