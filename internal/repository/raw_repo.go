package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/model"
)

// RawRepository owns the append-only raw document store. Documents are never
// updated or deleted; identical bodies are deduplicated by checksum.
type RawRepository struct {
	db *gorm.DB
}

func NewRawRepository(db *gorm.DB) *RawRepository {
	return &RawRepository{db: db}
}

// Insert stores a raw document, computing its checksum from the body.
// Returns (false, nil) when an identical body is already stored.
func (r *RawRepository) Insert(doc *model.ScrapedDocument) (bool, error) {
	sum := sha256.Sum256([]byte(doc.Body))
	doc.Checksum = hex.EncodeToString(sum[:])

	var existing model.ScrapedDocument
	err := r.db.Select("id").Where("checksum = ?", doc.Checksum).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.db.Create(doc).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *RawRepository) GetByID(id int64) (*model.ScrapedDocument, error) {
	var doc model.ScrapedDocument
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *RawRepository) CountByJob(jobID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.ScrapedDocument{}).Where("job_id = ?", jobID).Count(&count).Error
	return count, err
}
