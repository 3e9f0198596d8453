package models

import "time"

// Record is one row of an ingested table after enrichment. Fields holds the
// original columns; absent cells are stored as empty strings.
type Record struct {
	Fields     map[string]string `json:"fields"`
	SerialCode string            `json:"serial_code"`
	IssuedAt   time.Time         `json:"issued_at"`
	ScanURL    string            `json:"scan_url"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r Record) Clone() Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{
		Fields:     fields,
		SerialCode: r.SerialCode,
		IssuedAt:   r.IssuedAt,
		ScanURL:    r.ScanURL,
	}
}
