package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/validator"
)

func translate(key string, values map[string]any) string {
	catalog := map[string]string{
		"validation.required":       "The {{field}} field is required.",
		"validation.length_between": "{{field}} must be between {{min}} and {{max}} characters long",
	}
	tmpl, ok := catalog[key]
	if !ok {
		return key
	}
	for k, v := range values {
		tmpl = strings.ReplaceAll(tmpl, "{{"+k+"}}", fmt.Sprint(v))
	}
	return tmpl
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("title", "Abbey Road"),
			validator.LenBetweenString("title", "Abbey Road", 5, 80),
			validator.Email("email", "john@example.com"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects failures", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("email", ""),
			validator.MinLenString("password", "short", 10),
			validator.MaxLenString("username", strings.Repeat("a", 21), 20),
		)
		require.Error(t, err)
		require.True(t, validator.IsValidationError(err))

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 3)
		assert.True(t, ve.Has("email"))
		assert.Equal(t, []string{"must be at least 10 characters long"}, ve.Get("password"))
		assert.Equal(t, 20, ve.GetErrors("username")[0].TranslationValues["max"])
	})

	t.Run("wrapped errors are detected", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("bind: %w", validator.Apply(validator.RequiredString("a", "")))
		assert.True(t, validator.IsValidationError(err))
		assert.Len(t, validator.ExtractValidationErrors(err), 1)
		assert.False(t, validator.IsValidationError(errors.New("other")))
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("other")))
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)

	tests := []struct {
		name string
		rule validator.Rule
		ok   bool
		key  string
	}{
		{"required ok", validator.RequiredString("f", "x"), true, "validation.required"},
		{"required time zero", validator.RequiredTime("f", time.Time{}), false, "validation.required"},
		{"between lower bound", validator.LenBetweenString("f", "abcde", 5, 80), true, "validation.length_between"},
		{"between counts runes", validator.LenBetweenString("f", "Café", 2, 4), true, "validation.length_between"},
		{"between too long", validator.LenBetweenString("f", "abc", 1, 2), false, "validation.length_between"},
		{"min num", validator.MinNum("age", 15, 18), false, "validation.min"},
		{"max num", validator.MaxNum("score", 100, 100), true, "validation.max"},
		{"email display name rejected", validator.Email("e", "John <j@x.io>"), false, "validation.email"},
		{"email invalid", validator.Email("e", "nope"), false, "validation.email"},
		{"equal", validator.EqualString("confirm", "a", "b", "password"), false, "validation.equal"},
		{"not after ok", validator.NotAfter("start_date", start, end, "end_date"), true, "validation.not_after"},
		{"not after fails", validator.NotAfter("start_date", end, start, "end_date"), false, "validation.not_after"},
		{"one of", validator.OneOf("ext", "gif", "jpeg", "jpg", "png"), false, "validation.one_of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, tt.rule.Check)
			assert.Equal(t, tt.key, tt.rule.Error.TranslationKey)
			assert.Contains(t, tt.rule.Error.TranslationValues, "field")
		})
	}
}

func TestWithMessageAndFirstFailure(t *testing.T) {
	t.Parallel()

	first, failed := validator.FirstFailure(
		validator.RequiredString("title", "").WithMessage("Data is required!"),
		validator.LenBetweenString("title", "", 5, 80).WithMessage("Title must be between 5 and 80 characters long"),
	)
	require.True(t, failed)
	assert.Equal(t, "Data is required!", first.Error.Message)
	assert.Equal(t, "Data is required!", first.Error.TranslationKey)

	_, failed = validator.FirstFailure(validator.RequiredString("title", "ok"))
	assert.False(t, failed)
}

func TestValidationErrorsTranslate(t *testing.T) {
	t.Parallel()

	ve := validator.ValidationErrors{
		validator.RequiredString("email", "").Error,
		validator.LenBetweenString("title", "abc", 5, 80).Error,
		{Field: "raw", Message: "untouched"},
	}
	ve.Translate(translate)

	assert.Equal(t, "The email field is required.", ve[0].Message)
	assert.Equal(t, "title must be between 5 and 80 characters long", ve[1].Message)
	assert.Equal(t, "untouched", ve[2].Message)

	ve.Translate(nil)
	assert.Equal(t, "untouched", ve[2].Message)
	assert.Equal(t, map[string][]string{
		"email": {"The email field is required."},
		"title": {"title must be between 5 and 80 characters long"},
		"raw":   {"untouched"},
	}, ve.Fields())
}
