package course

import (
	"github.com/tmalela/mafunzo/core"
)

type (
	NewCourse struct {
		ID         string `json:"id" validate:"required,alphanum_"`
		Name       string `json:"name" validate:"required"`
		ScoreTable string `json:"score_table" validate:"required,alphanum_"`
		Position   int    `json:"position" validate:"min=0"`
	}

	UpdateCourse struct {
		Name         string        `json:"name"`
		ScoreTable   string        `json:"score_table" validate:"omitempty,alphanum_"`
		Position     *int          `json:"position" validate:"omitempty,min=0"`
		LegacyExport *LegacyExport `json:"legacy_export"`
	}

	NewExportConfig struct {
		Enabled     bool     `json:"enabled"`
		Recipients  []string `json:"recipients" validate:"required,min=1,dive,email"`
		APIKey      string   `json:"api_key"`
		Day         int      `json:"day" validate:"min=0,max=6"`
		Hour        int      `json:"hour" validate:"min=0,max=23"`
		Minute      int      `json:"minute" validate:"min=0,max=59"`
		Institution string   `json:"institution"`
	}

	ReorderRequest struct {
		IDs []string `json:"ids" validate:"required,min=1"`
	}
)

func (nc *NewCourse) Validate() error {
	nc.ID = core.CleanString(nc.ID, true /* lower */)
	nc.Name = core.CleanString(nc.Name)
	nc.ScoreTable = core.CleanString(nc.ScoreTable, true /* lower */)
	return core.Validate.Struct(nc)
}

func (uc *UpdateCourse) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	uc.ScoreTable = core.CleanString(uc.ScoreTable, true /* lower */)
	return core.Validate.Struct(uc)
}

func (nec *NewExportConfig) Validate() error {
	for i, r := range nec.Recipients {
		nec.Recipients[i] = core.CleanString(r, true /* lower */)
	}
	nec.Institution = core.CleanString(nec.Institution)
	return core.Validate.Struct(nec)
}

func (rr *ReorderRequest) Validate() error {
	return core.Validate.Struct(rr)
}
