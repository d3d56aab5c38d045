package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestExportConfig_Label(t *testing.T) {
	cfg := ExportConfig{}
	assert.Equal(t, "Form 1", cfg.Label("Form 1"))

	cfg.Institution = "Clinique Ngaliema"
	assert.Equal(t, "Form 1 (Clinique Ngaliema)", cfg.Label("Form 1"))
}

func TestExportConfig_MatchesTime(t *testing.T) {
	cfg := ExportConfig{Day: 1, Hour: 8, Minute: 30} // Monday 08:30

	monday := time.Date(2026, 8, 24, 8, 30, 45, 0, time.UTC)
	assert.True(t, cfg.MatchesTime(monday))
	assert.False(t, cfg.MatchesTime(monday.Add(time.Minute)))
	assert.False(t, cfg.MatchesTime(monday.Add(time.Hour)))
	assert.False(t, cfg.MatchesTime(monday.AddDate(0, 0, 1)))
}

func TestCourse_EffectiveExportConfigs(t *testing.T) {
	tests := []struct {
		name string
		crs  Course
		want []ExportConfig
	}{
		{
			name: "no configs at all",
			crs:  Course{ID: "form_1"},
			want: nil,
		},
		{
			name: "modern list wins over legacy",
			crs: Course{
				ID: "form_1",
				ExportConfigs: []ExportConfig{
					{ID: "cfg-1", Enabled: true, Recipients: []string{"a@test.cd"}},
				},
				LegacyExport: LegacyExport{Enabled: true, Recipients: []string{"b@test.cd"}},
			},
			want: []ExportConfig{
				{ID: "cfg-1", Enabled: true, Recipients: []string{"a@test.cd"}},
			},
		},
		{
			name: "legacy disabled",
			crs: Course{
				ID:           "form_1",
				LegacyExport: LegacyExport{Recipients: []string{"a@test.cd"}},
			},
			want: nil,
		},
		{
			name: "legacy enabled without recipients",
			crs: Course{
				ID:           "form_1",
				LegacyExport: LegacyExport{Enabled: true},
			},
			want: nil,
		},
		{
			name: "legacy synthesized with cadence defaults",
			crs: Course{
				ID:           "form_1",
				LegacyExport: LegacyExport{Enabled: true, Recipients: []string{"a@test.cd"}},
			},
			want: []ExportConfig{
				{
					ID:         LegacyConfigID,
					CourseID:   "form_1",
					Enabled:    true,
					Recipients: []string{"a@test.cd"},
					Day:        1,
					Hour:       8,
					Minute:     0,
				},
			},
		},
		{
			name: "legacy cadence overrides kept, including zeros",
			crs: Course{
				ID: "form_1",
				LegacyExport: LegacyExport{
					Enabled:     true,
					Recipients:  []string{"a@test.cd"},
					APIKey:      "SG.legacy",
					Day:         null.IntFrom(0),
					Hour:        null.IntFrom(14),
					Minute:      null.IntFrom(5),
					Institution: "HGR",
				},
			},
			want: []ExportConfig{
				{
					ID:          LegacyConfigID,
					CourseID:    "form_1",
					Enabled:     true,
					Recipients:  []string{"a@test.cd"},
					APIKey:      "SG.legacy",
					Day:         0,
					Hour:        14,
					Minute:      5,
					Institution: "HGR",
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.crs.EffectiveExportConfigs())
		})
	}
}

func TestCourse_HasEnabledExport(t *testing.T) {
	assert.False(t, Course{}.HasEnabledExport())
	assert.False(t, Course{
		ExportConfigs: []ExportConfig{{Recipients: []string{"a@test.cd"}}},
	}.HasEnabledExport())
	assert.True(t, Course{
		ExportConfigs: []ExportConfig{
			{Recipients: []string{"a@test.cd"}},
			{Enabled: true, Recipients: []string{"b@test.cd"}},
		},
	}.HasEnabledExport())
	assert.True(t, Course{
		LegacyExport: LegacyExport{Enabled: true, Recipients: []string{"a@test.cd"}},
	}.HasEnabledExport())
}

func TestExportConfig_IsLegacy(t *testing.T) {
	assert.True(t, ExportConfig{ID: LegacyConfigID}.IsLegacy())
	assert.False(t, ExportConfig{ID: "cfg-1"}.IsLegacy())
}
