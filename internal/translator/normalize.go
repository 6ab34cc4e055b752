package translator

import "strings"

var languageAliases = map[string]string{
	"pt-br": "pt",
	"pt-pt": "pt",

	"en-us": "en",
	"en-gb": "en",
	"en-ca": "en",
	"en-au": "en",

	"es-es": "es",
	"es-mx": "es",
	"es-ar": "es",

	"fr-fr": "fr",
	"fr-ca": "fr",

	"de-de": "de",
	"de-at": "de",
	"de-ch": "de",

	"zh-cn": "zh",
	"zh-tw": "zh-tw",
	"zh-hk": "zh-tw",
}

// NormalizeLanguageCode maps a regional code to the code the provider expects.
// Unknown regional codes fall back to their base subtag.
func NormalizeLanguageCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if mapped, ok := languageAliases[code]; ok {
		return mapped
	}
	base, _, _ := strings.Cut(code, "-")
	return base
}
