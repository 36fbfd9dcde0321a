package services

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/applytrack/applytrackd/internal/database"
	"github.com/applytrack/applytrackd/internal/models"
)

// Durable slot keys. The names are part of the stored-data contract.
const (
	SlotRecords = "jobApplications"
	SlotPending = "jobTrackerPopup"
)

// ErrMissingRequired rejects a record with a blank company or position before
// it ever reaches the slot.
var ErrMissingRequired = errors.New("company and position are required")

// editableFields are the per-field update targets the table surface exposes.
var editableFields = map[string]bool{
	"company": true, "position": true, "location": true, "salary": true,
	"notes": true, "url": true, "description": true,
	"appliedDate": true, "lastUpdate": true,
}

// RecordService is the Record Store: the canonical list of job-application
// records in one durable slot. Every mutation is a whole-list
// read-modify-write; the mutex keeps exactly one mutation in flight so two
// overlapping writes cannot clobber each other. The external contract is
// unchanged by the serialization.
type RecordService struct {
	DB     *gorm.DB
	Logger *zap.Logger

	mu sync.Mutex
}

func NewRecordService(db *gorm.DB, logger *zap.Logger) *RecordService {
	return &RecordService{DB: db, Logger: logger}
}

// Append validates and persists one new record. An id is assigned when
// absent; ids are never reused. Status and dates default the same way the
// capture form defaults them, so manual adds and captures look identical in
// storage.
func (s *RecordService) Append(record models.JobRecord) (models.JobRecord, error) {
	if strings.TrimSpace(record.Company) == "" || strings.TrimSpace(record.Position) == "" {
		return models.JobRecord{}, ErrMissingRequired
	}
	if record.ID == "" {
		record.ID = models.NewRecordID()
	}
	record.Status = models.ParseStatus(string(record.Status))
	if record.AppliedDate == "" {
		record.AppliedDate = models.Today()
	}
	if record.LastUpdate == "" {
		record.LastUpdate = record.AppliedDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readRecords()
	if err != nil {
		return models.JobRecord{}, err
	}
	records = append(records, record)
	if err := s.writeRecords(records); err != nil {
		return models.JobRecord{}, err
	}
	s.Logger.Info("job application saved",
		zap.String("company", record.Company),
		zap.String("position", record.Position))
	return record, nil
}

// UpdateField rewrites one field plus lastUpdate. Unknown ids are a no-op
// (found=false); date fields are normalized to YYYY/MM/DD on the way in.
func (s *RecordService) UpdateField(id, field, value string) (bool, error) {
	if !editableFields[field] {
		return false, errors.New("field is not editable: " + field)
	}
	if field == "appliedDate" || field == "lastUpdate" {
		value = models.NormalizeDate(value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readRecords()
	if err != nil {
		return false, err
	}
	found := false
	for i := range records {
		if records[i].ID != id {
			continue
		}
		found = true
		switch field {
		case "company":
			records[i].Company = value
		case "position":
			records[i].Position = value
		case "location":
			records[i].Location = value
		case "salary":
			records[i].Salary = value
		case "notes":
			records[i].Notes = value
		case "url":
			records[i].URL = value
		case "description":
			records[i].Description = value
		case "appliedDate":
			records[i].AppliedDate = value
		case "lastUpdate":
			records[i].LastUpdate = value
		}
		if field != "lastUpdate" {
			records[i].LastUpdate = models.Today()
		}
		break
	}
	if !found {
		return false, nil
	}
	return true, s.writeRecords(records)
}

// UpdateStatus rewrites status plus lastUpdate, coercing unrecognized values
// to applied. Unknown ids are a no-op.
func (s *RecordService) UpdateStatus(id, status string) (bool, error) {
	coerced := models.ParseStatus(status)

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readRecords()
	if err != nil {
		return false, err
	}
	for i := range records {
		if records[i].ID == id {
			records[i].Status = coerced
			records[i].LastUpdate = models.Today()
			return true, s.writeRecords(records)
		}
	}
	return false, nil
}

// BulkDelete removes every record whose id is in ids and reports how many
// went away. Irreversible; the UI confirms before calling. Absent ids affect
// nothing.
func (s *RecordService) BulkDelete(ids []string) (int, error) {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readRecords()
	if err != nil {
		return 0, err
	}
	kept := records[:0]
	for _, r := range records {
		if !idSet[r.ID] {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.writeRecords(kept); err != nil {
		return 0, err
	}
	s.Logger.Info("deleted job applications", zap.Int("count", removed))
	return removed, nil
}

// BulkImport appends a batch, applying the same normalization as manual
// entry. Rows without company or position are skipped (the CSV layer already
// drops them, manual callers might not). Returns how many were imported.
func (s *RecordService) BulkImport(rows []models.JobRecord) (int, error) {
	prepared := make([]models.JobRecord, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Company) == "" || strings.TrimSpace(r.Position) == "" {
			continue
		}
		if r.ID == "" {
			r.ID = models.NewRecordID()
		}
		r.Status = models.ParseStatus(string(r.Status))
		r.AppliedDate = models.NormalizeDate(r.AppliedDate)
		if strings.TrimSpace(r.LastUpdate) == "" {
			r.LastUpdate = r.AppliedDate
		} else {
			r.LastUpdate = models.NormalizeDate(r.LastUpdate)
		}
		prepared = append(prepared, r)
	}
	if len(prepared) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readRecords()
	if err != nil {
		return 0, err
	}
	records = append(records, prepared...)
	if err := s.writeRecords(records); err != nil {
		return 0, err
	}
	s.Logger.Info("imported job applications", zap.Int("count", len(prepared)))
	return len(prepared), nil
}

// ListAll returns records most-recently-applied first. YYYY/MM/DD sorts
// correctly as text; the sort is stable so same-day records keep insertion
// order.
func (s *RecordService) ListAll() ([]models.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readRecords()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AppliedDate > records[j].AppliedDate
	})
	return records, nil
}

// SavePending writes the pending-capture checkpoint slot.
func (s *RecordService) SavePending(p models.PendingCapture) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.writeSlot(SlotPending, raw)
}

// LoadPending reads the checkpoint; a missing slot returns (nil, nil).
func (s *RecordService) LoadPending() (*models.PendingCapture, error) {
	raw, err := s.readSlot(SlotPending)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var p models.PendingCapture
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ClearPending removes the checkpoint slot.
func (s *RecordService) ClearPending() error {
	return s.DB.Delete(&database.Slot{}, "key = ?", SlotPending).Error
}

// --- slot plumbing ---

func (s *RecordService) readRecords() ([]models.JobRecord, error) {
	raw, err := s.readSlot(SlotRecords)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.JobRecord{}, nil
	}
	var records []models.JobRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *RecordService) writeRecords(records []models.JobRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.writeSlot(SlotRecords, raw)
}

func (s *RecordService) readSlot(key string) ([]byte, error) {
	var slot database.Slot
	err := s.DB.First(&slot, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return slot.Value, nil
}

func (s *RecordService) writeSlot(key string, value []byte) error {
	slot := database.Slot{Key: key, Value: value}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&slot).Error
}
