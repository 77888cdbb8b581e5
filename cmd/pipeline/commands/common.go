package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/hoopstat-haus/pipeline/internal/cleaning"
	"github.com/hoopstat-haus/pipeline/internal/storage/file"
	"github.com/hoopstat-haus/pipeline/internal/storage/s3"
	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/interfaces"
	"github.com/hoopstat-haus/pipeline/pkg/models"
)

// storageFlags are the store selection flags shared by commands that touch
// the object store.
type storageFlags struct {
	Backend string
	Bucket  string
	Region  string
	Root    string
}

// openStore builds the object store selected by flags or config. The file
// backend keeps local runs and tests off the network.
func openStore(ctx context.Context, flags storageFlags, logger *logrus.Logger) (interfaces.ObjectStore, error) {
	backend := flags.Backend
	if backend == "" {
		backend = viper.GetString("storage.backend")
	}

	switch backend {
	case "", "s3":
		cfg := &s3.Config{
			Region:         firstNonEmpty(flags.Region, viper.GetString("storage.s3.region")),
			Bucket:         firstNonEmpty(flags.Bucket, viper.GetString("storage.s3.bucket")),
			Prefix:         viper.GetString("storage.s3.prefix"),
			Endpoint:       viper.GetString("storage.s3.endpoint"),
			ForcePathStyle: viper.GetBool("storage.s3.force_path_style"),
			UseCompression: viper.GetBool("storage.s3.use_compression"),
			MaxRetries:     3,
		}
		store, err := s3.NewStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Connect(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "file":
		root := firstNonEmpty(flags.Root, viper.GetString("storage.file.root"))
		if root == "" {
			root = "./data"
		}
		return file.NewStore(root, logger)
	default:
		return nil, errors.NewConfigurationError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown storage backend %q", backend))
	}
}

// loadRules returns the rule set from --rules, falling back to the built-in
// defaults when no file is given.
func loadRules(path string) (*cleaning.RuleSet, error) {
	if path == "" {
		path = viper.GetString("cleaning.rules_file")
	}
	if path == "" {
		return cleaning.DefaultRuleSet(), nil
	}
	return cleaning.LoadRuleSet(path)
}

// readPayload reads a raw API payload from a JSON file, or stdin when path
// is "-".
func readPayload(path string) (map[string]interface{}, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfiguration, errors.CodeInvalidConfig,
			fmt.Sprintf("cannot read input %q", path))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfiguration, errors.CodeInvalidConfig,
			fmt.Sprintf("input %q is not a JSON object", path))
	}
	return payload, nil
}

// parseEntity validates the --entity flag against the known entity types.
func parseEntity(s string) (models.EntityType, error) {
	entity := models.EntityType(s)
	for _, known := range models.ValidEntityTypes() {
		if entity == known {
			return entity, nil
		}
	}
	return "", errors.NewConfigurationError(errors.CodeInvalidConfig,
		fmt.Sprintf("unknown entity type %q", s))
}

// parseMode validates the --mode flag.
func parseMode(s string) (models.ValidationMode, error) {
	switch models.ValidationMode(s) {
	case models.ModeStrict:
		return models.ModeStrict, nil
	case models.ModeLenient:
		return models.ModeLenient, nil
	default:
		return "", errors.NewConfigurationError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown validation mode %q", s))
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
