// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettingGroup identifies the admin page a setting is rendered and edited on.
type SettingGroup string

const (
	// SettingGroupGeneral holds core platform settings like site name and maintenance mode.
	SettingGroupGeneral SettingGroup = "general"
	// SettingGroupAuth holds OAuth and third-party login configuration.
	SettingGroupAuth SettingGroup = "auth"
	// SettingGroupMail holds email sender configuration.
	SettingGroupMail SettingGroup = "mail"
	// SettingGroupSocial holds social media links.
	SettingGroupSocial SettingGroup = "social"
	// SettingGroupSeo holds search engine optimization metadata.
	SettingGroupSeo SettingGroup = "seo"
	// SettingGroupBilling holds billing and payment configuration.
	SettingGroupBilling SettingGroup = "billing"
)

// SettingGroups lists all setting groups in display order.
var SettingGroups = []SettingGroup{
	SettingGroupGeneral,
	SettingGroupAuth,
	SettingGroupMail,
	SettingGroupSocial,
	SettingGroupSeo,
	SettingGroupBilling,
}

// Label returns the human-readable label for the group.
func (g SettingGroup) Label() string {
	switch g {
	case SettingGroupGeneral:
		return "General"
	case SettingGroupAuth:
		return "Authentication"
	case SettingGroupMail:
		return "Mail"
	case SettingGroupSocial:
		return "Social Media"
	case SettingGroupSeo:
		return "SEO"
	case SettingGroupBilling:
		return "Billing"
	default:
		return string(g)
	}
}

// Valid reports whether g is a known setting group.
func (g SettingGroup) Valid() bool {
	for _, known := range SettingGroups {
		if g == known {
			return true
		}
	}

	return false
}

// SettingType determines how a setting's raw string value is parsed,
// validated and rendered.
type SettingType string

const (
	// SettingTypeText is a single-line string value (max 255 characters).
	SettingTypeText SettingType = "text"
	// SettingTypeTextarea is a multi-line string value (max 5000 characters).
	SettingTypeTextarea SettingType = "textarea"
	// SettingTypeBoolean is a true/false value stored as "1"/"0".
	SettingTypeBoolean SettingType = "boolean"
	// SettingTypeNumber is a floating point value.
	SettingTypeNumber SettingType = "number"
	// SettingTypeSelect is a string value restricted to the setting's Options.
	SettingTypeSelect SettingType = "select"
)

// SettingOption is a single choice of a select-typed setting.
// Options are stored as an ordered JSON array so the admin UI renders
// choices in the order they were defined.
type SettingOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Setting represents a typed configuration entry stored in the database.
// The key space is fixed by the seed catalog; values are mutated through the
// permission-gated admin settings screens and read at request time, so a
// changed value takes effect on the next request without a restart.
type Setting struct {
	// ID is the UUID primary key of the setting.
	ID string `gorm:"primaryKey;size:36"`
	// Key is the unique, externally addressable identifier of the setting.
	Key string `gorm:"size:100;not null;uniqueIndex"`
	// Value is the raw string payload (nil when unset).
	Value *string
	// Group is the settings page this entry belongs to.
	Group SettingGroup `gorm:"size:20;not null;index"`
	// Type determines value parsing and validation.
	Type SettingType `gorm:"size:20;not null"`
	// Description is shown as help text in the admin UI.
	Description string `gorm:"size:255"`
	// Options holds the ordered choices for select-typed settings (nil otherwise).
	Options datatypes.JSONSlice[SettingOption]
	// IsPublic indicates whether the setting may be exposed to unauthenticated contexts.
	IsPublic bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the setting was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the setting was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
// This overrides GORM's default pluralized table naming.
func (Setting) TableName() string {
	return "settings"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (s *Setting) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	return nil
}
