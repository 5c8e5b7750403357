// Package setting provides the typed configuration store backing the admin
// settings screens and the OAuth provider gate.
//
// The key space is fixed by the seed catalog: values can be read and mutated
// at runtime but settings are never created or deleted outside seeding.
// Each setting declares a type (text, textarea, boolean, number, select) that
// directs parsing on read and coercion on write.
package setting

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

const (
	keyQueryPattern = "key = ?"
)

var (
	// ErrSettingNotFound is returned when a setting key is not part of the catalog.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when a lookup or mutation uses an empty key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrUnknownGroup is returned when listing an unknown settings group.
	ErrUnknownGroup = errors.New("unknown settings group")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting row by its key.
func Get(db *gorm.DB, key string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var s models.Setting
	result := db.Where(keyQueryPattern, key).First(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	return &s, nil
}

// GetValue looks up a setting by key and parses its raw value per the
// setting's declared type. Missing keys, null values and unparseable numbers
// yield the supplied default:
//   - boolean settings parse permissively ("1", "true", "on", "yes" are true)
//   - number settings parse as float64, falling back to the default
//   - all other types return the raw string
func GetValue(db *gorm.DB, key string, def any) any {
	s, err := Get(db, key)
	if err != nil {
		return def
	}

	switch s.Type {
	case models.SettingTypeBoolean:
		if s.Value == nil {
			return def
		}
		return parseBool(*s.Value)
	case models.SettingTypeNumber:
		if s.Value == nil {
			return def
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(*s.Value), 64)
		if err != nil {
			return def
		}
		return f
	default:
		if s.Value == nil {
			return def
		}
		return *s.Value
	}
}

// GetBool reads a boolean setting, falling back to def for missing keys.
func GetBool(db *gorm.DB, key string, def bool) bool {
	v, ok := GetValue(db, key, def).(bool)
	if !ok {
		return def
	}

	return v
}

// GetFloat reads a number setting, falling back to def for missing keys.
func GetFloat(db *gorm.DB, key string, def float64) float64 {
	v, ok := GetValue(db, key, def).(float64)
	if !ok {
		return def
	}

	return v
}

// GetString reads a string-valued setting, falling back to def for missing keys.
func GetString(db *gorm.DB, key, def string) string {
	v, ok := GetValue(db, key, def).(string)
	if !ok {
		return def
	}

	return v
}

// SetValue updates the value of an existing setting identified by key.
// Unknown keys return ErrSettingNotFound: the catalog is not extensible at
// runtime. The value is coerced to its storage string form (slices and maps
// serialize to JSON, booleans to "1"/"0", everything else via fmt).
// SetValue does not re-validate the value against the setting's type; that is
// the caller's validation pass.
func SetValue(db *gorm.DB, key string, value any) (*models.Setting, error) {
	s, err := Get(db, key)
	if err != nil {
		return nil, err
	}

	raw, err := coerce(value)
	if err != nil {
		return nil, err
	}

	s.Value = &raw
	if result := db.Save(s); result.Error != nil {
		return nil, result.Error
	}

	return s, nil
}

// ListByGroup retrieves all settings of one group, ordered by key.
// This is the unit the admin UI renders and validates one page at a time.
func ListByGroup(db *gorm.DB, group models.SettingGroup) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if !group.Valid() {
		return nil, ErrUnknownGroup
	}

	var settings []models.Setting
	// map condition so gorm quotes the reserved "group" column per dialect
	result := db.Where(map[string]interface{}{"group": group}).Order("key ASC").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// ListPublic retrieves the settings safe to expose to unauthenticated
// contexts, ordered by key.
func ListPublic(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	result := db.Where("is_public = ?", true).Order("key ASC").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// parseBool interprets the permissive boolean token set.
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// coerce converts a caller-supplied value to its storage string form.
func coerce(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	}

	// Slices and maps serialize to JSON
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		out, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to encode setting value: %w", err)
		}

		return string(out), nil
	}

	return fmt.Sprint(value), nil
}
