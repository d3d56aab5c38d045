package course

import (
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"
)

// LegacyConfigID identifies the synthetic configuration built from a
// course's flat legacy export fields.
const LegacyConfigID = "legacy-0"

// defaults applied when legacy cadence fields are unset
const (
	defaultExportDay    = 1 // Monday
	defaultExportHour   = 8
	defaultExportMinute = 0
)

type (
	// ExportConfig is one scheduled-or-manual report rule attached to a Course.
	ExportConfig struct {
		ID         string   `json:"id"`
		CourseID   string   `json:"-"`
		Enabled    bool     `json:"enabled"`
		Recipients []string `json:"recipients"`
		// APIKey is a legacy per-config delivery credential; when set the
		// report is delivered through the Sendgrid channel instead of SMTP.
		APIKey      string    `json:"api_key,omitempty"`
		Day         int       `json:"day"`    // 0-6, Sunday = 0
		Hour        int       `json:"hour"`   // 0-23
		Minute      int       `json:"minute"` // 0-59
		Institution string    `json:"institution,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	// LegacyExport carries the flat single-config export fields kept for
	// courses created before configs became a list.
	LegacyExport struct {
		Enabled     bool     `json:"enabled"`
		Recipients  []string `json:"recipients,omitempty"`
		APIKey      string   `json:"api_key,omitempty"`
		Day         null.Int `json:"day,omitempty"`
		Hour        null.Int `json:"hour,omitempty"`
		Minute      null.Int `json:"minute,omitempty"`
		Institution string   `json:"institution,omitempty"`
	}

	Course struct {
		ID   string `json:"id"` // slug, e.g. "form_1"
		Name string `json:"name"`
		// ScoreTable references the per-course attempt collection written by
		// the quiz-taking flow; read-only here.
		ScoreTable    string         `json:"score_table"`
		Position      int            `json:"position"`
		ExportConfigs []ExportConfig `json:"export_configs"`
		LegacyExport  LegacyExport   `json:"legacy_export"`
		CreatedAt     time.Time      `json:"created_at"`
		UpdatedAt     time.Time      `json:"updated_at"`
	}
)

// Label annotates the course name with this config's sub-audience, if any.
// It is the display label stored on export log entries.
func (c ExportConfig) Label(courseName string) string {
	if c.Institution != "" {
		return fmt.Sprintf("%s (%s)", courseName, c.Institution)
	}
	return courseName
}

// MatchesTime reports whether this config's weekly cadence fires at t.
func (c ExportConfig) MatchesTime(t time.Time) bool {
	return int(t.Weekday()) == c.Day && t.Hour() == c.Hour && t.Minute() == c.Minute
}

func (c ExportConfig) IsLegacy() bool { return c.ID == LegacyConfigID }

// EffectiveExportConfigs resolves the configuration set to run: the modern
// list when present, otherwise a single config synthesized from the legacy
// fields when those indicate the feature is enabled with at least one
// recipient.
func (c Course) EffectiveExportConfigs() []ExportConfig {
	if len(c.ExportConfigs) > 0 {
		return c.ExportConfigs
	}

	le := c.LegacyExport
	if !le.Enabled || len(le.Recipients) == 0 {
		return nil
	}

	cfg := ExportConfig{
		ID:          LegacyConfigID,
		CourseID:    c.ID,
		Enabled:     true,
		Recipients:  le.Recipients,
		APIKey:      le.APIKey,
		Day:         defaultExportDay,
		Hour:        defaultExportHour,
		Minute:      defaultExportMinute,
		Institution: le.Institution,
	}
	if le.Day.Valid {
		cfg.Day = le.Day.Int
	}
	if le.Hour.Valid {
		cfg.Hour = le.Hour.Int
	}
	if le.Minute.Valid {
		cfg.Minute = le.Minute.Int
	}
	return []ExportConfig{cfg}
}

// HasEnabledExport reports whether any effective configuration is enabled.
func (c Course) HasEnabledExport() bool {
	for _, cfg := range c.EffectiveExportConfigs() {
		if cfg.Enabled {
			return true
		}
	}
	return false
}
