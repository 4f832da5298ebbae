package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"financial-import-platform/internal/mapping"
)

// MappingConfiguration is a named, persisted column mapping configuration.
// FilePattern is a regular expression matched against incoming file names so
// the ingestion pipeline can pick a configuration without user interaction.
type MappingConfiguration struct {
	ID                 string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name               string         `json:"name" gorm:"not null;uniqueIndex" validate:"required,min=1,max=255"`
	FilePattern        string         `json:"file_pattern,omitempty"`
	AutoDetect         bool           `json:"auto_detect" gorm:"default:true"`
	CustomMappings     StringMap      `json:"custom_mappings,omitempty" gorm:"type:jsonb"`
	RequiredFields     StringList     `json:"required_fields,omitempty" gorm:"type:jsonb"`
	DateFormats        StringList     `json:"date_formats,omitempty" gorm:"type:jsonb"`
	DecimalSeparator   string         `json:"decimal_separator,omitempty" gorm:"size:1"`
	ThousandsSeparator string         `json:"thousands_separator,omitempty" gorm:"size:1"`
	EntityDefault      string         `json:"entity_default,omitempty"`
	AccountDefault     string         `json:"account_default,omitempty"`
	IsActive           bool           `json:"is_active" gorm:"default:true"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for MappingConfiguration
func (MappingConfiguration) TableName() string {
	return "mapping_configurations"
}

// ToMappingConfig converts the persisted record into the core engine's config.
func (m *MappingConfiguration) ToMappingConfig() mapping.Config {
	return mapping.Config{
		AutoDetect:         m.AutoDetect,
		CustomMappings:     m.CustomMappings,
		RequiredFields:     m.RequiredFields,
		DateFormats:        m.DateFormats,
		DecimalSeparator:   m.DecimalSeparator,
		ThousandsSeparator: m.ThousandsSeparator,
		EntityDefault:      m.EntityDefault,
		AccountDefault:     m.AccountDefault,
	}
}

// StringMap is a string-to-string map stored as jsonb.
type StringMap map[string]string

// Value implements driver.Valuer interface for GORM
func (s StringMap) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface for GORM
func (s *StringMap) Scan(value interface{}) error {
	if value == nil {
		*s = make(StringMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into StringMap", value)
	}

	return json.Unmarshal(bytes, s)
}

// StringList is a string slice stored as jsonb.
type StringList []string

// Value implements driver.Valuer interface for GORM
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(bytes, l)
}
