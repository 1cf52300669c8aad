package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dharmasatrya/flybulgarien/internal/models"
)

type TableConfig struct {
	// TableSelector locates the results table inside the search page.
	TableSelector string
	// RowClasses are the two alternating styles the backend gives leg rows.
	RowClasses []string
	// InboundMarkerClass marks the row that opens the return-flight section.
	InboundMarkerClass string
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		TableSelector:      "table#flywiz_tblQuotes",
		RowClasses:         []string{"selectedrow", "bgrow"},
		InboundMarkerClass: "returnrow",
	}
}

// Tables holds the paired rows of each section of the results table.
type Tables struct {
	Outbound   []models.FlightRow
	Inbound    []models.FlightRow
	HasInbound bool
}

type Extractor struct {
	cfg TableConfig
}

func NewExtractor(cfg TableConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract splits the results table into outbound and inbound row groups.
// It returns a *models.NoResultsError when the table holds no leg rows and a
// *models.MalformedRowError when a group cannot be paired.
func (e *Extractor) Extract(doc *goquery.Document) (*Tables, error) {
	var outbound, inbound []*goquery.Selection
	markers := 0

	doc.Find(e.cfg.TableSelector).First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		switch {
		case e.cfg.InboundMarkerClass != "" && row.HasClass(e.cfg.InboundMarkerClass):
			markers++
		case e.isLegRow(row):
			if markers > 0 {
				inbound = append(inbound, row)
			} else {
				outbound = append(outbound, row)
			}
		}
	})

	if len(outbound) == 0 && len(inbound) == 0 {
		return nil, &models.NoResultsError{}
	}
	if markers > 1 {
		return nil, &models.MalformedRowError{
			Group: models.LegInbound,
			Field: "section marker",
			Err:   fmt.Errorf("found %d inbound markers", markers),
		}
	}

	out, err := pairRows(models.LegOutbound, outbound)
	if err != nil {
		return nil, err
	}
	in, err := pairRows(models.LegInbound, inbound)
	if err != nil {
		return nil, err
	}

	return &Tables{Outbound: out, Inbound: in, HasInbound: markers > 0}, nil
}

func (e *Extractor) isLegRow(row *goquery.Selection) bool {
	for _, class := range e.cfg.RowClasses {
		if row.HasClass(class) {
			return true
		}
	}
	return false
}

// pairRows groups rows as (info, price). The backend always renders two rows
// per leg, so an odd count means the layout changed.
func pairRows(group models.Leg, rows []*goquery.Selection) ([]models.FlightRow, error) {
	if len(rows)%2 != 0 {
		return nil, &models.MalformedRowError{
			Group: group,
			Row:   len(rows) - 1,
			Field: "row count",
			Err:   fmt.Errorf("%d rows cannot be paired as info and price rows", len(rows)),
		}
	}

	pairs := make([]models.FlightRow, 0, len(rows)/2)
	for i := 0; i < len(rows); i += 2 {
		pairs = append(pairs, models.FlightRow{
			Index:      i / 2,
			InfoCells:  cellTexts(rows[i]),
			PriceCells: cellTexts(rows[i+1]),
		})
	}
	return pairs, nil
}

func cellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, td *goquery.Selection) {
		texts = append(texts, strings.Join(strings.Fields(td.Text()), " "))
	})
	return texts
}
