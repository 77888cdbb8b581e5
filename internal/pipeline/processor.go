package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/internal/cleaning"
	"github.com/hoopstat-haus/pipeline/internal/observability/metrics"
	"github.com/hoopstat-haus/pipeline/internal/partition"
	"github.com/hoopstat-haus/pipeline/internal/quality"
	"github.com/hoopstat-haus/pipeline/internal/quarantine"
	"github.com/hoopstat-haus/pipeline/internal/schema"
	"github.com/hoopstat-haus/pipeline/internal/validator"
	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/interfaces"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// DefaultChunkSize bounds how many records are validated and cleaned per
// chunk so memory stays flat on large payloads.
const DefaultChunkSize = 500

// RunConfig describes one pipeline run.
type RunConfig struct {
	Entity        models.EntityType     `json:"entity" mapstructure:"entity"`
	TargetDate    string                `json:"target_date" mapstructure:"target_date"`
	Season        string                `json:"season" mapstructure:"season"`
	Mode          models.ValidationMode `json:"mode" mapstructure:"mode"`
	Bucket        string                `json:"bucket" mapstructure:"bucket"`
	ChunkSize     int                   `json:"chunk_size" mapstructure:"chunk_size"`
	ExpectedCount int                   `json:"expected_count" mapstructure:"expected_count"`
}

// Processor wires validation, cleaning, scoring, quarantine, and partitioned
// storage into one run. A run never aborts because some records were bad;
// the BatchReport carries the mixture of outcomes.
type Processor struct {
	registry   *schema.Registry
	validator  *validator.Validator
	engine     *cleaning.Engine
	scorer     *quality.Scorer
	quarantine *quarantine.Manager
	store      interfaces.ObjectStore
	sizer      *partition.FileSizeOptimizer
	logger     *logrus.Logger
}

// NewProcessor assembles a processor from its stages. The store receives the
// partitioned Gold output; the quarantine manager owns its own store.
func NewProcessor(
	registry *schema.Registry,
	v *validator.Validator,
	engine *cleaning.Engine,
	scorer *quality.Scorer,
	qm *quarantine.Manager,
	store interfaces.ObjectStore,
	logger *logrus.Logger,
) (*Processor, error) {
	if registry == nil || v == nil || engine == nil || scorer == nil || qm == nil {
		return nil, errors.NewConfigurationError(errors.CodeMissingConfig, "processor requires all pipeline stages")
	}
	if store == nil {
		return nil, errors.NewConfigurationError(errors.CodeMissingConfig, "processor requires an object store")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Processor{
		registry:   registry,
		validator:  v,
		engine:     engine,
		scorer:     scorer,
		quarantine: qm,
		store:      store,
		sizer:      partition.NewFileSizeOptimizer(),
		logger:     logger,
	}, nil
}

// ProcessResponse runs one raw API payload through the full pipeline:
// normalize, validate, quarantine failures, clean, score, and store the
// survivors under their partition keys.
func (p *Processor) ProcessResponse(ctx context.Context, raw map[string]interface{}, cfg RunConfig) (*models.BatchReport, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Mode == "" {
		cfg.Mode = models.ModeStrict
	}
	if cfg.Season == "" && cfg.TargetDate != "" {
		season, err := SeasonForDate(cfg.TargetDate)
		if err != nil {
			return nil, err
		}
		cfg.Season = season
	}

	report := &models.BatchReport{
		RunID:      uuid.NewString(),
		Entity:     cfg.Entity,
		TargetDate: cfg.TargetDate,
		Mode:       cfg.Mode,
		StartedAt:  time.Now().UTC(),
	}
	runLog := cleaning.NewTransformationLog()

	logger := p.logger.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"entity": cfg.Entity,
		"date":   cfg.TargetDate,
	})
	logger.Info("Starting pipeline run")

	records, ok := validator.NormalizeResponse(raw, cfg.Entity)
	if !ok {
		// The whole payload is unusable; quarantine it as a single record
		// so the raw bytes survive for repair.
		result := &models.ValidationResult{Valid: false, Mode: cfg.Mode}
		result.AddIssue(models.SeverityError, "", errors.CodeUnknownWireShape,
			"response does not match any recognized wire shape")
		report.TotalRecords = 1
		report.InvalidRecords = 1
		p.quarantineRecord(ctx, models.Record(raw), result, cfg, report, logger)
		p.finishReport(ctx, report, runLog, logger)
		return report, nil
	}

	report.TotalRecords = len(records)

	if cfg.ExpectedCount > 0 {
		comp := p.validator.ValidateCompleteness(records, cfg.ExpectedCount)
		if comp.Ratio < 1.0 {
			logger.WithFields(logrus.Fields{
				"actual":   comp.ActualCount,
				"expected": comp.ExpectedCount,
				"ratio":    comp.Ratio,
			}).Warn("Batch is incomplete against expected count")
		}
	}

	var processed []*models.ProcessedRecord
	vctx := validator.Context{Mode: cfg.Mode, TargetDate: cfg.TargetDate, ExpectedCount: cfg.ExpectedCount}

	for start := 0; start < len(records); start += cfg.ChunkSize {
		end := start + cfg.ChunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		for _, rec := range chunk {
			if err := ctx.Err(); err != nil {
				return report, errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError,
					"pipeline run cancelled")
			}

			result := p.validator.ValidateRecord(rec, cfg.Entity, vctx)
			if !result.Valid {
				report.InvalidRecords++
				metrics.RecordsProcessed.WithLabelValues(string(cfg.Entity), "invalid").Inc()
				p.quarantineRecord(ctx, rec, result, cfg, report, logger)
				continue
			}

			report.ValidRecords++
			metrics.RecordsProcessed.WithLabelValues(string(cfg.Entity), "valid").Inc()

			pr, err := p.cleanAndScore(rec, cfg, runLog)
			if err != nil {
				logger.WithError(err).WithField("record", report.ValidRecords-1).Error("Cleaning failed for record")
				continue
			}
			report.CleanedRecords++
			report.ScoredRecords++
			report.AverageQuality += pr.Lineage.Quality.Overall
			metrics.QualityScore.WithLabelValues(string(cfg.Entity)).Observe(pr.Lineage.Quality.Overall)
			processed = append(processed, pr)
		}
	}

	if report.ScoredRecords > 0 {
		report.AverageQuality /= float64(report.ScoredRecords)
	}

	storeErr := p.storeProcessed(ctx, processed, cfg, report, logger)

	p.finishReport(ctx, report, runLog, logger)
	return report, storeErr
}

// cleanAndScore runs one valid record through the cleaning engine and the
// quality scorer, producing its lineage-annotated form. The per-record log
// feeds the run-level log so the batch summary stays complete.
func (p *Processor) cleanAndScore(rec models.Record, cfg RunConfig, runLog *cleaning.TransformationLog) (*models.ProcessedRecord, error) {
	recLog := cleaning.NewTransformationLog()
	cleaned, err := p.engine.ProcessBatch([]models.Record{rec}, cfg.Entity, recLog)
	if err != nil {
		return nil, err
	}
	for _, tr := range recLog.Results() {
		runLog.Append(tr)
	}

	score, err := p.scorer.CalculateDataQualityScore(cleaned[0], cfg.Entity)
	if err != nil {
		return nil, err
	}

	return &models.ProcessedRecord{
		Record: cleaned[0],
		Lineage: models.Lineage{
			SchemaVersion:   models.CurrentSchemaVersion,
			SourceEntity:    cfg.Entity,
			IngestedAt:      time.Now().UTC(),
			Transformations: recLog.Results(),
			Quality:         score,
		},
	}, nil
}

// quarantineRecord writes one failed record to quarantine. Quarantine is
// best-effort: failures are counted and logged, never propagated.
func (p *Processor) quarantineRecord(ctx context.Context, rec models.Record, result *models.ValidationResult, cfg RunConfig, report *models.BatchReport, logger *logrus.Entry) {
	key, err := p.quarantine.QuarantineData(ctx, rec, result, cfg.Entity, cfg.TargetDate)
	if err != nil {
		report.QuarantineFails++
		metrics.QuarantineWrites.WithLabelValues(string(cfg.Entity), "failed").Inc()
		logger.WithError(err).Error("Quarantine write failed; continuing run")
		return
	}
	report.QuarantinedOK++
	metrics.QuarantineWrites.WithLabelValues(string(cfg.Entity), "ok").Inc()
	logger.WithField("quarantine_key", key).Debug("Record quarantined")
}

// storeProcessed groups processed records by owning entity, splits oversized
// groups per the file size optimizer, and writes each part under its
// partition key.
func (p *Processor) storeProcessed(ctx context.Context, processed []*models.ProcessedRecord, cfg RunConfig, report *models.BatchReport, logger *logrus.Entry) error {
	if len(processed) == 0 {
		return nil
	}

	groups := groupByEntityID(processed, cfg.Entity)

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var firstErr error
	for _, id := range ids {
		group := groups[id]
		parts, avgRow, err := splitGroup(p.sizer, group)
		if err != nil {
			return err
		}

		for i, part := range parts {
			filename := "stats.json"
			if len(parts) > 1 {
				filename = fmt.Sprintf("stats-%04d.json", i)
			}

			key, err := partition.NewKey(cfg.Bucket, partitionTypeFor(cfg.Entity), cfg.Season, id, cfg.TargetDate, filename)
			if err != nil {
				return err
			}

			data, err := json.Marshal(part)
			if err != nil {
				return errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError,
					"failed to encode processed records")
			}

			if err := p.store.Put(ctx, key.StorageKey(), data); err != nil {
				metrics.StorageWrites.WithLabelValues(string(cfg.Entity), "failed").Inc()
				logger.WithError(err).WithField("key", key.StorageKey()).Error("Gold write failed")
				if firstErr == nil {
					firstErr = err
				}
				continue
			}

			metrics.StorageWrites.WithLabelValues(string(cfg.Entity), "ok").Inc()
			report.StoredRecords += len(part)
			logger.WithFields(logrus.Fields{
				"key":          key.StorageKey(),
				"records":      len(part),
				"avg_row_size": avgRow,
			}).Debug("Wrote partitioned output")
		}
	}

	return firstErr
}

// finishReport closes out the run: stamps timing, folds in the cleaning
// summary, records metrics, and writes the run manifest.
func (p *Processor) finishReport(ctx context.Context, report *models.BatchReport, runLog *cleaning.TransformationLog, logger *logrus.Entry) {
	report.Transformations = runLog.Summary()
	report.CompletedAt = time.Now().UTC()
	report.Duration = report.CompletedAt.Sub(report.StartedAt)
	metrics.BatchDuration.WithLabelValues(string(report.Entity)).Observe(report.Duration.Seconds())

	if err := p.writeManifest(ctx, report); err != nil {
		logger.WithError(err).Warn("Failed to write run manifest")
	}

	logger.WithFields(logrus.Fields{
		"total":           report.TotalRecords,
		"valid":           report.ValidRecords,
		"invalid":         report.InvalidRecords,
		"quarantined":     report.QuarantinedOK,
		"quarantine_fail": report.QuarantineFails,
		"stored":          report.StoredRecords,
		"avg_quality":     report.AverageQuality,
		"duration":        report.Duration,
	}).Info("Pipeline run completed")
}

// writeManifest persists the BatchReport as the durable record of the run.
func (p *Processor) writeManifest(ctx context.Context, report *models.BatchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError,
			"failed to encode run manifest")
	}
	key := fmt.Sprintf("manifests/%s/%s/run_%s.json", report.Entity, report.TargetDate, report.RunID)
	return p.store.Put(ctx, key, data)
}

// partitionTypeFor maps a pipeline entity to its daily partition layout.
func partitionTypeFor(entity models.EntityType) partition.Type {
	switch entity {
	case models.EntityPlayerStats:
		return partition.TypePlayerDaily
	case models.EntityTeamStats, models.EntityBoxScore:
		return partition.TypeTeamDaily
	default:
		return partition.TypeLeagueDaily
	}
}

// entityIDField names the record field that owns the partition for an
// entity, or "" for league-wide layouts.
func entityIDField(entity models.EntityType) string {
	switch entity {
	case models.EntityPlayerStats:
		return "player_id"
	case models.EntityTeamStats, models.EntityBoxScore:
		return "team_id"
	default:
		return ""
	}
}

// groupByEntityID buckets processed records by their owning entity id. For
// league-wide entities everything lands in a single group keyed "".
func groupByEntityID(processed []*models.ProcessedRecord, entity models.EntityType) map[string][]*models.ProcessedRecord {
	field := entityIDField(entity)
	groups := make(map[string][]*models.ProcessedRecord)
	for _, pr := range processed {
		id := ""
		if field != "" {
			id = entityIDString(pr.Record[field])
		}
		groups[id] = append(groups[id], pr)
	}
	return groups
}

func entityIDString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// splitGroup sizes one partition group and divides it per the file size
// optimizer so no single output blows past the target ceiling. Returns the
// parts and the measured average row size.
func splitGroup(sizer *partition.FileSizeOptimizer, group []*models.ProcessedRecord) ([][]*models.ProcessedRecord, int64, error) {
	sample, err := json.Marshal(group[0])
	if err != nil {
		return nil, 0, errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError,
			"failed to size processed record")
	}
	avgRow := int64(len(sample))

	rec := sizer.RecommendSplitStrategy(int64(len(group)), avgRow)
	if rec.Splits <= 1 {
		return [][]*models.ProcessedRecord{group}, avgRow, nil
	}

	var parts [][]*models.ProcessedRecord
	for start := int64(0); start < int64(len(group)); start += rec.RowsPerSplit {
		end := start + rec.RowsPerSplit
		if end > int64(len(group)) {
			end = int64(len(group))
		}
		parts = append(parts, group[start:end])
	}
	return parts, avgRow, nil
}

// SeasonForDate derives the NBA season label (YYYY-YY) from a game date.
// Seasons roll over in October: games from October through December belong
// to the season starting that year, January through September to the season
// starting the prior year.
func SeasonForDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", errors.NewConfigurationError(errors.CodeInvalidConfig,
			fmt.Sprintf("cannot derive season from date %q", date))
	}
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100), nil
}
