package schema

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// FieldType describes the wire type expected for a field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldDatetime FieldType = "datetime"
	FieldBool     FieldType = "bool"
)

// FieldSpec declares the constraints on one schema field.
type FieldSpec struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	// Identity marks a field needed to identify the record. A missing
	// identity field makes the record invalid even in lenient mode.
	Identity bool `json:"identity,omitempty"`
	// Critical marks a stat deemed analytically essential; its absence is
	// flagged by the quality scorer even when the record is schema-valid.
	Critical bool     `json:"critical,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	// Rate marks percentage/rate fields that must never be zero-filled.
	Rate bool `json:"rate,omitempty"`
}

// Schema is the versioned record definition for one entity type.
type Schema struct {
	Entity  models.EntityType    `json:"entity"`
	Version string               `json:"version"`
	Fields  map[string]FieldSpec `json:"fields"`
}

// MigrationFunc transforms record data from one schema version to the next.
type MigrationFunc func(data models.Record) (models.Record, error)

type migrationKey struct {
	entity models.EntityType
	from   string
	to     string
}

// Registry holds the versioned schemas and the explicit migration table.
// Migrations are registered per (from, to) pair; unknown pairs are rejected
// rather than guessed at from field differences.
type Registry struct {
	logger     *logrus.Logger
	schemas    map[models.EntityType]*Schema
	migrations map[migrationKey]MigrationFunc
}

// NewRegistry creates a registry preloaded with the current schemas and the
// built-in migration table.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}

	r := &Registry{
		logger:     logger,
		schemas:    make(map[models.EntityType]*Schema),
		migrations: make(map[migrationKey]MigrationFunc),
	}

	for _, s := range builtinSchemas() {
		r.schemas[s.Entity] = s
	}
	r.registerBuiltinMigrations()

	return r
}

// GetSchema returns the current schema for an entity type.
func (r *Registry) GetSchema(entity models.EntityType) (*Schema, error) {
	s, ok := r.schemas[entity]
	if !ok {
		return nil, errors.NewSchemaError(errors.CodeUnknownEntity,
			fmt.Sprintf("no schema registered for entity type %q", entity))
	}
	return s, nil
}

// RegisterMigration registers a migration function for one version step.
func (r *Registry) RegisterMigration(entity models.EntityType, from, to string, fn MigrationFunc) error {
	if fn == nil {
		return errors.NewSchemaError(errors.CodeInvalidInput, "migration function cannot be nil")
	}

	key := migrationKey{entity: entity, from: from, to: to}
	r.migrations[key] = fn

	r.logger.WithFields(logrus.Fields{
		"entity": entity,
		"from":   from,
		"to":     to,
	}).Debug("Registered schema migration")

	return nil
}

// MigrateFromVersion applies the chain of registered migrations taking data
// from fromVersion to toVersion. There is no implicit fallback: if no path
// exists between the versions the call fails with ErrUnsupportedMigration.
func (r *Registry) MigrateFromVersion(data models.Record, entity models.EntityType, fromVersion, toVersion string) (models.Record, error) {
	if fromVersion == toVersion {
		return data.Clone(), nil
	}

	path, ok := r.findPath(entity, fromVersion, toVersion)
	if !ok {
		return nil, errors.WrapError(errors.ErrUnsupportedMigration, errors.ErrorTypeSchema,
			errors.CodeUnsupportedMigration,
			fmt.Sprintf("no migration path for %s from %s to %s", entity, fromVersion, toVersion))
	}

	current := data.Clone()
	for _, step := range path {
		migrated, err := r.migrations[step](current)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeSchema, errors.CodeUnsupportedMigration,
				fmt.Sprintf("migration %s -> %s failed", step.from, step.to))
		}
		current = migrated
	}

	r.logger.WithFields(logrus.Fields{
		"entity": entity,
		"from":   fromVersion,
		"to":     toVersion,
		"steps":  len(path),
	}).Debug("Migrated record between schema versions")

	return current, nil
}

// findPath searches the registered migration table for a chain connecting
// the two versions. Breadth-first, so the shortest chain wins.
func (r *Registry) findPath(entity models.EntityType, from, to string) ([]migrationKey, bool) {
	type node struct {
		version string
		path    []migrationKey
	}

	visited := map[string]bool{from: true}
	queue := []node{{version: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for key := range r.migrations {
			if key.entity != entity || key.from != cur.version || visited[key.to] {
				continue
			}
			next := append(append([]migrationKey{}, cur.path...), key)
			if key.to == to {
				return next, true
			}
			visited[key.to] = true
			queue = append(queue, node{version: key.to, path: next})
		}
	}

	return nil, false
}

// SchemaDocument is the machine-readable schema description generated for
// external documentation and validation tooling.
type SchemaDocument struct {
	Entity         models.EntityType          `json:"entity"`
	Version        string                     `json:"version"`
	RequiredFields []string                   `json:"required_fields"`
	OptionalFields []string                   `json:"optional_fields"`
	IdentityFields []string                   `json:"identity_fields"`
	CriticalFields []string                   `json:"critical_fields"`
	Constraints    map[string]FieldConstraint `json:"constraints"`
}

// FieldConstraint is the exported constraint form for one field.
type FieldConstraint struct {
	Type FieldType `json:"type"`
	Min  *float64  `json:"min,omitempty"`
	Max  *float64  `json:"max,omitempty"`
	Rate bool      `json:"rate,omitempty"`
}

// GenerateSchema emits the machine-readable description of an entity's
// required and optional fields plus constraints. Pure function over the
// registered tables.
func (r *Registry) GenerateSchema(entity models.EntityType) (*SchemaDocument, error) {
	s, err := r.GetSchema(entity)
	if err != nil {
		return nil, err
	}

	doc := &SchemaDocument{
		Entity:      s.Entity,
		Version:     s.Version,
		Constraints: make(map[string]FieldConstraint, len(s.Fields)),
	}

	for name, spec := range s.Fields {
		if spec.Required {
			doc.RequiredFields = append(doc.RequiredFields, name)
		} else {
			doc.OptionalFields = append(doc.OptionalFields, name)
		}
		if spec.Identity {
			doc.IdentityFields = append(doc.IdentityFields, name)
		}
		if spec.Critical {
			doc.CriticalFields = append(doc.CriticalFields, name)
		}
		doc.Constraints[name] = FieldConstraint{
			Type: spec.Type,
			Min:  spec.Min,
			Max:  spec.Max,
			Rate: spec.Rate,
		}
	}

	sort.Strings(doc.RequiredFields)
	sort.Strings(doc.OptionalFields)
	sort.Strings(doc.IdentityFields)
	sort.Strings(doc.CriticalFields)

	return doc, nil
}
