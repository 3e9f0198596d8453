package models

import "time"

// Batch is the immutable unit of persistence: every record from one upload,
// keyed by a timestamp-derived id that sorts in creation order.
type Batch struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	SourceFormat string    `json:"source_format"`
	Columns      []string  `json:"columns"`
	Records      []Record  `json:"records"`

	// Images maps serial code to rendered QR PNG bytes. Persisted as
	// separate objects next to the record data, never inside it.
	Images map[string][]byte `json:"-"`
}

// Clone returns a deep copy of the batch without its images.
func (b Batch) Clone() Batch {
	columns := make([]string, len(b.Columns))
	copy(columns, b.Columns)

	records := make([]Record, 0, len(b.Records))
	for _, record := range b.Records {
		records = append(records, record.Clone())
	}

	return Batch{
		ID:           b.ID,
		CreatedAt:    b.CreatedAt,
		SourceFormat: b.SourceFormat,
		Columns:      columns,
		Records:      records,
	}
}
