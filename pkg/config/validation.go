package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for rules spanning
// both stores that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The content store receives every user write.
	if cfg.Content.Type == "archive" {
		return fmt.Errorf("content: archive stores are read-only and cannot hold content")
	}
	if readOnly, _ := cfg.Content.Filesystem["read_only"].(bool); readOnly && cfg.Content.Type == "filesystem" {
		return fmt.Errorf("content: filesystem store must be writable")
	}

	// Sidecars written into the content store would show up as user
	// entries, so both stores need separate locations.
	if overlap, where := storesOverlap(&cfg.Content, &cfg.Metadata); overlap {
		return fmt.Errorf("content and metadata stores must not share %s", where)
	}

	return nil
}

// storesOverlap reports whether two store configurations address the same
// or nested locations.
func storesOverlap(a, b *StoreConfig) (bool, string) {
	if a.Type != b.Type {
		return false, ""
	}

	switch a.Type {
	case "filesystem":
		pa, _ := a.Filesystem["path"].(string)
		pb, _ := b.Filesystem["path"].(string)
		if pa != "" && pb != "" && pathsNested(pa, pb) {
			return true, fmt.Sprintf("a directory (%s, %s)", pa, pb)
		}
	case "badger":
		pa, _ := a.Badger["path"].(string)
		pb, _ := b.Badger["path"].(string)
		if pa != "" && pb != "" && pathsNested(pa, pb) {
			return true, fmt.Sprintf("a database (%s, %s)", pa, pb)
		}
	case "s3":
		ba, _ := a.S3["bucket"].(string)
		bb, _ := b.S3["bucket"].(string)
		if ba == "" || ba != bb {
			return false, ""
		}
		ka, _ := a.S3["key_prefix"].(string)
		kb, _ := b.S3["key_prefix"].(string)
		if prefixesNested(ka, kb) {
			return true, fmt.Sprintf("a key prefix in bucket %s (%q, %q)", ba, ka, kb)
		}
	}
	return false, ""
}

// pathsNested reports whether a and b are equal or one contains the other.
func pathsNested(a, b string) bool {
	a, errA := filepath.Abs(a)
	b, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return a == b || within(a, b) || within(b, a)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// prefixesNested is pathsNested for slash-separated S3 key prefixes. The
// empty prefix is the whole bucket.
func prefixesNested(a, b string) bool {
	a = strings.Trim(a, "/")
	b = strings.Trim(b, "/")
	if a == "" || b == "" || a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
