package domain

// AggregatedRow is one grouped sum produced by the duration aggregator.
// SubEntityID is 0 and Date is "" for grouping dimensions that were not
// requested. Seconds is always >= 0.
type AggregatedRow struct {
	EntityID    int64  `json:"entity_id"`
	SubEntityID int64  `json:"sub_entity_id,omitempty"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD in the report timezone
	Seconds     int64  `json:"seconds"`
}
