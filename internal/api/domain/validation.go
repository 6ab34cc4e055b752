package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTextLength = 10000
)

var languageCodePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

var supportedLanguages = map[string]struct{}{
	"en": {}, "pt": {}, "es": {}, "fr": {}, "de": {}, "it": {},
	"ja": {}, "ko": {}, "zh": {}, "ru": {},
	"pt-br": {}, "en-us": {}, "en-gb": {}, "es-es": {}, "es-mx": {},
	"fr-fr": {}, "de-de": {},
}

// IsSupportedLanguage reports whether code (already lower-cased) is accepted.
func IsSupportedLanguage(code string) bool {
	_, ok := supportedLanguages[code]
	return ok
}

// CreateInput is a translation request after normalisation.
type CreateInput struct {
	Text       string
	SourceLang string
	TargetLang string
}

// NormalizeCreateInput trims the text, lower-cases language codes and checks
// every field. All problems are reported together.
func NormalizeCreateInput(text, sourceLang, targetLang string) (CreateInput, error) {
	in := CreateInput{
		Text:       strings.TrimSpace(text),
		SourceLang: strings.ToLower(strings.TrimSpace(sourceLang)),
		TargetLang: strings.ToLower(strings.TrimSpace(targetLang)),
	}

	verr := &ValidationError{}
	switch n := utf8.RuneCountInString(in.Text); {
	case n == 0:
		verr.add("text", "text is required")
	case n > MaxTextLength:
		verr.add("text", "text must be at most 10000 characters")
	}

	checkLang := func(field, code string) {
		switch {
		case code == "":
			verr.add(field, field+" is required")
		case !languageCodePattern.MatchString(code):
			verr.add(field, field+" must look like 'en' or 'pt-br'")
		case !IsSupportedLanguage(code):
			verr.add(field, field+" '"+code+"' is not supported")
		}
	}
	checkLang("sourceLang", in.SourceLang)
	checkLang("targetLang", in.TargetLang)

	if in.SourceLang != "" && in.SourceLang == in.TargetLang {
		verr.add("targetLang", "targetLang must differ from sourceLang")
	}

	if err := verr.orNil(); err != nil {
		return CreateInput{}, err
	}
	return in, nil
}
