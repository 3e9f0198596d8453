package models

import "time"

// SerialIndexEntry maps an issued serial code to the batch that holds its
// record. The table is an optional acceleration structure: the batch store
// stays authoritative and the index is rebuilt from it.
type SerialIndexEntry struct {
	ID         string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SerialCode string    `gorm:"type:text;not null;uniqueIndex" json:"serial_code"`
	BatchID    string    `gorm:"type:text;not null" json:"batch_id"`
	IndexedAt  time.Time `gorm:"not null" json:"indexed_at"`
}
