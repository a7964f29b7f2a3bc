package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type Survey struct {
	ID                  int            `db:"id" json:"id"`
	UserID              int            `db:"user_id" json:"user_id"`
	SurveyType          string         `db:"survey_type" json:"survey_type"`
	VaccineType         *string        `db:"vaccine_type" json:"vaccine_type,omitempty"`
	VaccineRound        *string        `db:"vaccine_round" json:"vaccine_round,omitempty"`
	IsCrossed           *bool          `db:"is_crossed" json:"is_crossed,omitempty"`
	IsPregnant          *bool          `db:"is_pregnant" json:"is_pregnant,omitempty"`
	IsUnderlyingDisease *bool          `db:"is_underlying_disease" json:"is_underlying_disease,omitempty"`
	DateFrom            *string        `db:"date_from" json:"date_from,omitempty"`
	Data                types.JSONText `db:"data" json:"data"` // jsonb answer set keyed by question id
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}
