package partition

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HealthReport is the outcome of checking a key against the documented
// partitioning standard.
type HealthReport struct {
	IsValid         bool     `json:"is_valid"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// PartitionHealthChecker validates partition layout health. Keys built via
// NewKey always pass; the checker exists for keys reconstructed from config
// or storage listings, where drift can creep in.
type PartitionHealthChecker struct{}

// NewPartitionHealthChecker creates a health checker.
func NewPartitionHealthChecker() *PartitionHealthChecker {
	return &PartitionHealthChecker{}
}

// maxPartitionDepth bounds prefix depth under the bucket; deeper layouts
// slow down listing and defeat partition pruning.
const maxPartitionDepth = 4

// ValidatePartitionStructure checks the key's depth, ordering, and naming
// against the documented partitioning standard.
func (c *PartitionHealthChecker) ValidatePartitionStructure(key *Key) *HealthReport {
	report := &HealthReport{IsValid: true}

	spec, known := typeSpecs[key.PartitionType]
	if !known {
		report.IsValid = false
		report.Warnings = append(report.Warnings, "unknown partition type "+string(key.PartitionType))
		report.Recommendations = append(report.Recommendations, "use one of the registered partition types")
		return report
	}

	if key.Bucket == "" {
		report.IsValid = false
		report.Warnings = append(report.Warnings, "bucket is empty")
	}

	if err := ValidateSeason(key.Season); err != nil {
		report.IsValid = false
		report.Warnings = append(report.Warnings, "season does not match YYYY-YY")
		report.Recommendations = append(report.Recommendations, "format seasons like 2023-24")
	}

	if spec.requiresEntity && key.EntityID == "" {
		report.IsValid = false
		report.Warnings = append(report.Warnings, string(key.PartitionType)+" requires an entity id")
	}
	if !spec.requiresEntity && key.EntityID != "" {
		report.Warnings = append(report.Warnings, "entity id present on a league-wide partition")
		report.Recommendations = append(report.Recommendations, "drop the entity id for league-wide layouts")
	}

	if spec.requiresDate {
		if err := ValidateDate(key.Date); err != nil {
			report.IsValid = false
			report.Warnings = append(report.Warnings, "date is missing or not YYYY-MM-DD")
		}
	} else if key.Date != "" {
		report.Warnings = append(report.Warnings, "date present on a season-level partition")
		report.Recommendations = append(report.Recommendations, "drop the date for season-level layouts")
	}

	if depth := len(key.segments()); depth > maxPartitionDepth {
		report.Warnings = append(report.Warnings, "partition prefix deeper than the standard")
		report.Recommendations = append(report.Recommendations, "keep prefixes at most four segments deep")
	}

	if key.Filename == "" {
		report.IsValid = false
		report.Warnings = append(report.Warnings, "filename is empty")
	} else if !strings.HasSuffix(key.Filename, ".parquet") {
		report.Warnings = append(report.Warnings, "filename does not end in .parquet")
		report.Recommendations = append(report.Recommendations, "store Gold outputs as parquet")
	}

	return report
}

// CalculatePartitionHash returns a stable hash over the key's canonical
// string form, used for change detection between runs.
func (c *PartitionHealthChecker) CalculatePartitionHash(key *Key) string {
	sum := sha256.Sum256([]byte(key.S3Path()))
	return hex.EncodeToString(sum[:])[:16]
}
