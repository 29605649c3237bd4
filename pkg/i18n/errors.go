package i18n

import "errors"

var (
	ErrNoLanguages     = errors.New("i18n: at least one language is required")
	ErrInvalidLanguage = errors.New("i18n: invalid language tag")
	ErrInvalidFile     = errors.New("i18n: invalid catalog file")
)
