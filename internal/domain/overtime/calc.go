package overtime

// TypeTotals is the per-type slice of a period total.
type TypeTotals struct {
	Hours  float64 `json:"hours"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
	Color  string  `json:"color"`
	Order  int     `json:"order"`
}

type Totals struct {
	TotalHours  float64                  `json:"totalHours"`
	TotalAmount float64                  `json:"totalAmount"`
	ByType      map[EntryType]TypeTotals `json:"byType"`
}

// ComputeTotals sums decimal hours and amounts over the given entries and
// accumulates per-type subtotals. Entries are assumed already filtered by
// date range; nothing is skipped or validated here. The stored Amount is
// used when set, otherwise the amount is recomputed from hours and rate.
func ComputeTotals(entries []Entry) Totals {
	totals := Totals{ByType: make(map[EntryType]TypeTotals, len(AllTypes))}
	for _, entry := range entries {
		amount := entry.Amount
		if amount == 0 {
			amount = entry.ComputedAmount()
		}
		hours := entry.DecimalHours()

		totals.TotalHours += hours
		totals.TotalAmount += amount

		byType := totals.ByType[entry.Type]
		byType.Hours += hours
		byType.Amount += amount
		byType.Count++
		byType.Color = entry.Type.Color()
		byType.Order = entry.Type.DisplayOrder()
		totals.ByType[entry.Type] = byType
	}
	return totals
}
