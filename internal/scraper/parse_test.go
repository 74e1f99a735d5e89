package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehryarbajwa/cf-calendar-api/pkg/models"
)

func calendarPage(cells string) string {
	return fmt.Sprintf(`<html><body>
		<div class="userActivityGraph">
			<svg>%s</svg>
		</div>
	</body></html>`, cells)
}

func TestParseKeepsOnlyActiveDays(t *testing.T) {
	html := calendarPage(`
		<rect class="day" data-date="2024-01-01" data-items="3"></rect>
		<rect class="day" data-date="2024-01-02" data-items="0"></rect>
		<rect class="day" data-date="2024-01-03" data-items="7"></rect>`)

	records, err := ParseContributions(html)
	require.NoError(t, err)

	assert.Equal(t, []models.ContributionRecord{
		{Date: "2024-01-01", Items: 3},
		{Date: "2024-01-03", Items: 7},
	}, records)
}

func TestParsePreservesDocumentOrder(t *testing.T) {
	var cells string
	for i := 1; i <= 30; i++ {
		cells += fmt.Sprintf(`<rect class="day" data-date="2024-03-%02d" data-items="%d"></rect>`, i, i)
	}

	records, err := ParseContributions(calendarPage(cells))
	require.NoError(t, err)
	require.Len(t, records, 30)

	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("2024-03-%02d", i+1), rec.Date)
		assert.Equal(t, i+1, rec.Items)
	}
}

func TestParseMissingItemsAttributeFiltered(t *testing.T) {
	html := calendarPage(`
		<rect class="day" data-date="2024-01-01"></rect>
		<rect class="day" data-date="2024-01-02" data-items="2"></rect>`)

	records, err := ParseContributions(html)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-02", records[0].Date)
}

func TestParseNonNumericItemsFiltered(t *testing.T) {
	html := calendarPage(`
		<rect class="day" data-date="2024-01-01" data-items="lots"></rect>
		<rect class="day" data-date="2024-01-02" data-items=""></rect>
		<rect class="day" data-date="2024-01-03" data-items="-4"></rect>
		<rect class="day" data-date="2024-01-04" data-items=" 5 "></rect>`)

	records, err := ParseContributions(html)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-04", records[0].Date)
	assert.Equal(t, 5, records[0].Items)
}

func TestParseIgnoresOtherRects(t *testing.T) {
	html := calendarPage(`
		<rect class="month" data-date="2024-01" data-items="9"></rect>
		<rect class="day" data-date="2024-01-05" data-items="1"></rect>`)

	records, err := ParseContributions(html)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-05", records[0].Date)
}

func TestParseNoCellsReturnsEmpty(t *testing.T) {
	records, err := ParseContributions(calendarPage(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}
