package quarantine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/interfaces"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

const (
	keyPrefix        = "quarantine"
	keyTimestampForm = "20060102T150405"
)

// Manager durably stores records that fail validation, keyed by type and
// date, without blocking the rest of the pipeline. Writes are best-effort:
// a failed write is logged and reported, never escalated into a batch
// abort. Retried invocations may quarantine the same logical record twice;
// each write gets a fresh unique key rather than overwriting.
type Manager struct {
	store  interfaces.ObjectStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewManager creates a quarantine manager over the given object store.
func NewManager(store interfaces.ObjectStore, logger *logrus.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.NewQuarantineError(errors.CodeInvalidConfig, "object store is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{store: store, logger: logger, now: time.Now}, nil
}

// QuarantineData writes the record plus its validation result to a
// deterministic, date-partitioned location and returns the quarantine key.
// Key uniqueness comes from the wall-clock timestamp plus a random
// disambiguator, so concurrent writes within the same second never collide
// and an existing entry is never silently overwritten.
func (m *Manager) QuarantineData(ctx context.Context, data models.Record, result *models.ValidationResult, dataType models.EntityType, targetDate string) (string, error) {
	date, err := time.Parse("2006-01-02", targetDate)
	if err != nil {
		// Quarantine must not fail over a bad date; file under today.
		m.logger.WithFields(logrus.Fields{
			"target_date": targetDate,
			"data_type":   dataType,
		}).Warn("Unparsable target date, quarantining under current date")
		date = m.now().UTC()
	}

	key := m.buildKey(dataType, date)

	record := &models.QuarantineRecord{
		Data:             data,
		ValidationResult: result,
		DataType:         dataType,
		TargetDate:       date.Format("2006-01-02"),
		QuarantineKey:    key,
		QuarantinedAt:    m.now().UTC(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		m.logger.WithError(err).WithField("data_type", dataType).Error("Failed to serialize quarantine record")
		return "", errors.WrapError(err, errors.ErrorTypeQuarantine, errors.CodeQuarantineWriteFailed,
			"failed to serialize quarantine record")
	}

	if err := m.store.Put(ctx, key, payload); err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"key":       key,
			"data_type": dataType,
		}).Error("Quarantine write failed")
		return "", errors.WrapError(err, errors.ErrorTypeQuarantine, errors.CodeQuarantineWriteFailed,
			fmt.Sprintf("failed to write quarantine entry %q", key))
	}

	m.logger.WithFields(logrus.Fields{
		"key":       key,
		"data_type": dataType,
		"issues":    len(result.Issues),
	}).Info("Record quarantined")

	return key, nil
}

// ListQuarantinedData enumerates existing quarantine entries for a date and
// entity type for operator review. Entries that cannot be read back are
// skipped with a warning; listing never mutates.
func (m *Manager) ListQuarantinedData(ctx context.Context, targetDate string, dataType models.EntityType) ([]*models.QuarantineRecord, error) {
	date, err := time.Parse("2006-01-02", targetDate)
	if err != nil {
		return nil, errors.NewQuarantineError(errors.CodeInvalidInput,
			fmt.Sprintf("target date %q is not YYYY-MM-DD", targetDate))
	}

	prefix := m.datePrefix(dataType, date)
	keys, err := m.store.List(ctx, prefix)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeQuarantine, errors.CodeQuarantineListFailed,
			fmt.Sprintf("failed to list quarantine entries under %q", prefix))
	}

	entries := make([]*models.QuarantineRecord, 0, len(keys))
	for _, key := range keys {
		data, err := m.store.Get(ctx, key)
		if err != nil {
			m.logger.WithError(err).WithField("key", key).Warn("Failed to read quarantine entry during list")
			continue
		}
		var record models.QuarantineRecord
		if err := json.Unmarshal(data, &record); err != nil {
			m.logger.WithError(err).WithField("key", key).Warn("Failed to decode quarantine entry during list")
			continue
		}
		entries = append(entries, &record)
	}

	return entries, nil
}

// buildKey produces
// quarantine/year=YYYY/month=MM/day=DD/{entity}/quarantine_{ts}_{token}.json
// — deterministic prefix, unique suffix.
func (m *Manager) buildKey(dataType models.EntityType, date time.Time) string {
	token := uuid.NewString()[:8]
	return fmt.Sprintf("%s/quarantine_%s_%s.json",
		m.datePrefix(dataType, date),
		m.now().UTC().Format(keyTimestampForm),
		token)
}

func (m *Manager) datePrefix(dataType models.EntityType, date time.Time) string {
	return fmt.Sprintf("%s/year=%04d/month=%02d/day=%02d/%s",
		keyPrefix, date.Year(), int(date.Month()), date.Day(), dataType)
}
