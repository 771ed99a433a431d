package site

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// I18n lists the locales the site is published in.
type I18n struct {
	DefaultLocale string                  `toml:"default_locale"`
	Locales       []string                `toml:"locales"`
	LocaleConfigs map[string]LocaleConfig `toml:"locale_configs"`
}

// LocaleConfig overrides the presentation of a single locale.
type LocaleConfig struct {
	Label     string `toml:"label"`
	Direction string `toml:"direction"` // "ltr" or "rtl"
	HTMLLang  string `toml:"html_lang"`
}

// Locale is a fully resolved locale.
type Locale struct {
	Code      string
	Label     string
	Direction string
	HTMLLang  string
	Default   bool
}

// PathPrefix returns the URL prefix of the locale: nothing for the default
// locale and "/<code>" otherwise.
func (l Locale) PathPrefix() string {
	if l.Default {
		return ""
	}
	return "/" + l.Code
}

// rtlScripts are the scripts written right to left.
var rtlScripts = map[string]bool{
	"Arab": true,
	"Hebr": true,
	"Syrc": true,
	"Thaa": true,
	"Nkoo": true,
	"Adlm": true,
}

// Resolve validates the locales and fills in labels and directions. The default
// locale must be listed, and no locale may be listed twice.
func (i I18n) Resolve() ([]Locale, error) {
	if i.DefaultLocale == "" {
		return nil, errors.New("default_locale is required")
	}
	var (
		errs     []error
		result   = make([]Locale, 0, len(i.Locales))
		seen     = make(map[string]bool, len(i.Locales))
		hasDeflt bool
	)
	for _, code := range i.Locales {
		if seen[code] {
			errs = append(errs, fmt.Errorf("locale %q listed twice", code))
			continue
		}
		seen[code] = true
		tag, err := language.Parse(code)
		if err != nil {
			errs = append(errs, fmt.Errorf("locale %q: %w", code, err))
			continue
		}
		loc := Locale{
			Code:      code,
			Label:     display.Self.Name(tag),
			Direction: "ltr",
			HTMLLang:  tag.String(),
			Default:   code == i.DefaultLocale,
		}
		if loc.Label == "" {
			loc.Label = display.English.Tags().Name(tag)
		}
		if script, conf := tag.Script(); conf != language.No && rtlScripts[script.String()] {
			loc.Direction = "rtl"
		}
		if lc, ok := i.LocaleConfigs[code]; ok {
			if lc.Label != "" {
				loc.Label = lc.Label
			}
			switch lc.Direction {
			case "":
			case "ltr", "rtl":
				loc.Direction = lc.Direction
			default:
				errs = append(errs, fmt.Errorf("locale %q: direction must be ltr or rtl, not %q", code, lc.Direction))
			}
			if lc.HTMLLang != "" {
				loc.HTMLLang = lc.HTMLLang
			}
		}
		hasDeflt = hasDeflt || loc.Default
		result = append(result, loc)
	}
	for code := range i.LocaleConfigs {
		if !seen[code] {
			errs = append(errs, fmt.Errorf("locale_configs has %q which is not in locales", code))
		}
	}
	if !hasDeflt {
		errs = append(errs, fmt.Errorf("default locale %q is not in locales %v", i.DefaultLocale, i.Locales))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}
