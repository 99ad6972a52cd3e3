package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// GetSchemaJSON returns the JSON Schema for findexer configuration
func GetSchemaJSON() string {
	return `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "findexer Configuration",
  "description": "Configuration file for findexer - a file index reconciliation tool",
  "type": "object",
  "properties": {
    "allowed_base_directory": {
      "type": "string",
      "minLength": 1,
      "description": "Root directory; nothing above it is ever indexed or modified"
    },
    "base_directory": {
      "type": "string",
      "description": "Directory against which relative input paths are resolved"
    },
    "table": {
      "type": "string",
      "pattern": "^[A-Za-z_][A-Za-z0-9_]*$",
      "description": "Database table name"
    },
    "cache_fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "string",
        "pattern": "^[A-Za-z_][A-Za-z0-9_]*$"
      },
      "description": "Columns stored besides fid/dir/filename; the first is the content hash"
    },
    "hash_algo": {
      "type": "string",
      "enum": ["sha1", "sha256", "sha512", "blake3"],
      "description": "Content hash algorithm"
    },
    "case_insensitive_database": {
      "type": "boolean",
      "description": "Whether the table collation ignores case"
    },
    "case_insensitive_filesystem": {
      "type": "boolean",
      "description": "Whether filenames on disk ignore case"
    },
    "reindex_all": {
      "type": "boolean",
      "description": "Rehash every file regardless of the cached record"
    },
    "remove_nonexistent_from_index": {
      "type": "boolean",
      "description": "Delete inconsistent records instead of warning about them"
    },
    "process_symlinks": {
      "type": "boolean",
      "description": "Index symlinks like regular entries instead of skipping them"
    },
    "sort_directory_entries": {
      "type": "boolean",
      "description": "Sort directory entries before processing"
    },
    "db": {
      "type": "object",
      "properties": {
        "driver": {
          "type": "string",
          "enum": ["sqlite3", "mysql", "postgres"],
          "description": "database/sql driver name"
        },
        "dsn": {
          "type": "string",
          "description": "Driver-specific data source name"
        }
      },
      "additionalProperties": false
    },
    "log_level": {
      "type": "string",
      "enum": ["debug", "info", "warn", "warning", "error"],
      "description": "Minimum log level"
    }
  },
  "required": ["allowed_base_directory"],
  "additionalProperties": false
}`
}

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult contains the results of config validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidateFile validates a config file against the schema
func ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var data map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(content, &data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "syntax",
				Message: fmt.Sprintf("Invalid YAML syntax: %v", err),
			})
			return result, nil
		}
	case ".json":
		if err := json.Unmarshal(content, &data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "syntax",
				Message: fmt.Sprintf("Invalid JSON syntax: %v", err),
			})
			return result, nil
		}
	case ".toml":
		// TOML goes through the koanf loader; schema checks run on the
		// normalized map.
		cfg, err := Load(path)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "syntax",
				Message: fmt.Sprintf("Invalid TOML config: %v", err),
			})
			return result, nil
		}
		data = map[string]interface{}{
			"allowed_base_directory":        cfg.AllowedBaseDirectory,
			"table":                         cfg.Table,
			"cache_fields":                  cfg.CacheFields,
			"hash_algo":                     cfg.HashAlgo,
			"case_insensitive_database":     cfg.CaseInsensitiveDatabase,
			"case_insensitive_filesystem":   cfg.CaseInsensitiveFilesystem,
			"reindex_all":                   cfg.ReindexAll,
			"remove_nonexistent_from_index": cfg.RemoveNonexistentFromIndex,
			"process_symlinks":              cfg.ProcessSymlinks,
			"sort_directory_entries":        cfg.SortDirectoryEntries,
		}
	default:
		return nil, fmt.Errorf("unsupported file format")
	}

	schemaLoader := gojsonschema.NewStringLoader(GetSchemaJSON())
	documentLoader := gojsonschema.NewGoLoader(data)

	validationResult, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if !validationResult.Valid() {
		result.Valid = false
		for _, err := range validationResult.Errors() {
			result.Errors = append(result.Errors, ValidationError{
				Field:   err.Field(),
				Message: err.Description(),
			})
		}
	}

	return result, nil
}
