package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storybookapp/storybook-server/internal/domain"
	domainerrors "github.com/storybookapp/storybook-server/internal/errors"
)

type generateRequest struct {
	Prompt   string          `json:"prompt" validate:"required,min=3"`
	Genre    domain.Genre    `json:"genre" validate:"required,genre"`
	Audience domain.Audience `json:"audience" validate:"required,audience"`
}

func TestValidate_OK(t *testing.T) {
	v := New()

	err := v.Validate(generateRequest{
		Prompt:   "A dragon who collects teacups",
		Genre:    domain.GenreFantasy,
		Audience: domain.AudienceChildren,
	})
	assert.NoError(t, err)
}

func TestValidate_ReportsFieldsByJSONName(t *testing.T) {
	v := New()

	err := v.Validate(generateRequest{
		Prompt:   "x",
		Genre:    "Noir",
		Audience: domain.AudienceAdult,
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "prompt")
	assert.Contains(t, details, "genre")
	assert.NotContains(t, details, "audience")
}

func TestValidate_WizardStepTag(t *testing.T) {
	type stepRequest struct {
		Step domain.Step `json:"step" validate:"wizardstep"`
	}

	v := New()
	assert.NoError(t, v.Validate(stepRequest{Step: domain.StepEditing}))
	assert.Error(t, v.Validate(stepRequest{Step: domain.Step(9)}))
}
