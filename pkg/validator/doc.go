// Package validator provides rule-based validation with translatable errors.
//
// Rules are plain values: each carries whether the check passed and the
// error to report when it did not. Apply collects the failures:
//
//	err := validator.Apply(
//		validator.RequiredString("email", form.Email),
//		validator.LenBetweenString("password", form.Password, 10, 40),
//	)
//	if validator.IsValidationError(err) {
//		errs := validator.ExtractValidationErrors(err)
//		errs.Translate(translator.TranslateMessage)
//	}
//
// Every error carries a TranslationKey ("validation.required",
// "validation.min_length", ...) and TranslationValues so messages can be
// localized after validation.
package validator
