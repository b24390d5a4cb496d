package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type issueBody struct {
	UserID uint   `validate:"required"`
	Swid   string `validate:"required,swid,max=8"`
	Amount int    `validate:"required,gt=0"`
}

func TestGetValidationErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(ValidateStruct(&issueBody{UserID: 1, Swid: "SW-A", Amount: 1})))

	errs := GetValidationErrors(ValidateStruct(&issueBody{Swid: "SW A", Amount: -2}))
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Tag
	}
	assert.Equal(t, map[string]string{"userID": "required", "swid": "swid", "amount": "gt"}, fields)
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(nil))
	assert.Empty(t, GetValidationErrors(assert.AnError))
}
