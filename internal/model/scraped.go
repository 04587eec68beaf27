package model

import "time"

// ScrapedDocument is one raw page fetched from an external source. Rows are
// append-only: the checksum column deduplicates identical bodies, and nothing
// ever updates a stored document.
type ScrapedDocument struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Sport     string    `gorm:"size:50;not null;index" json:"sport"`
	Source    string    `gorm:"size:100;not null" json:"source"`
	URL       string    `gorm:"size:500;not null" json:"url"`
	Category  string    `gorm:"size:50;not null" json:"category"`
	Season    string    `gorm:"size:9;not null" json:"season"`
	Body      string    `gorm:"type:longtext" json:"-"`
	Checksum  string    `gorm:"size:64;uniqueIndex" json:"checksum"`
	JobID     int64     `gorm:"index" json:"job_id"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
}

func (ScrapedDocument) TableName() string {
	return "scraped_documents"
}
