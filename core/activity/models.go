package activity

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Activity struct {
	ID          string     `json:"id" db:"id"`
	TeacherID   string     `json:"teacher_id" db:"teacher_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"` // UTC
	Questions   []Question `json:"questions" db:"-"`
}

type Question struct {
	ID         string    `json:"id" db:"id"`
	ActivityID string    `json:"activity_id" db:"activity_id"`
	Text       string    `json:"text" db:"text"`
	Options    []string  `json:"options" db:"options"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewActivity contains information needed to create an Activity.
type NewActivity struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Description *string `json:"description"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	if na.Description != nil {
		desc := core.CleanString(*na.Description)
		if desc == "" {
			na.Description = nil
		} else {
			na.Description = &desc
		}
	}
	return validate.Struct(na)
}

// NewQuestion contains information needed to add a Question to an Activity.
type NewQuestion struct {
	ActivityID string   `json:"activityId" validate:"required,notblank"`
	Text       string   `json:"text" validate:"required,notblank"`
	Options    []string `json:"options" validate:"required,min=1,dive,required,notblank"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.ActivityID = core.CleanString(nq.ActivityID)
	nq.Text = core.CleanString(nq.Text)
	for i := range nq.Options {
		nq.Options[i] = core.CleanString(nq.Options[i])
	}
	return validate.Struct(nq)
}
