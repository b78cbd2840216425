package seats

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FreeSeatsQuery lists seats free at one point in time
type FreeSeatsQuery struct {
	Date string `form:"date" json:"date" binding:"required,datetime=2006-01-02"`
	Time string `form:"time" json:"time" binding:"required,datetime=15:04"`
}

// CoveringRequest searches seats bookable for a whole window
type CoveringRequest struct {
	Date            string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" binding:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=30"`
	ResourceType    int    `json:"resource_type" binding:"omitempty,min=1"`
}

type AutoBookRequest struct {
	Date            string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" binding:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=30"`
	ResourceType    int    `json:"resource_type" binding:"omitempty,min=1"`
	Email           string `json:"email" binding:"omitempty,email"`
	PreferredSeats  []int  `json:"preferred_seats" binding:"omitempty,dive,min=1"`
	DryRun          bool   `json:"dry_run"`
}

func (r AutoBookRequest) covering() CoveringRequest {
	return CoveringRequest{
		Date:            r.Date,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		ResourceType:    r.ResourceType,
	}
}

// Same rules as gin's binding, for callers that do not go through gin.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

func validateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
