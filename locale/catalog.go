// Package locale holds the display strings for each supported
// locale and the currently active locale.
package locale

import (
	"os"
	"sort"

	errgo "gopkg.in/errgo.v1"
	yaml "gopkg.in/yaml.v2"
)

// Tag identifies a locale, for example "de" or "en".
type Tag string

// ErrUnknownLocale is the cause of errors returned when a
// locale is requested that isn't in the catalog.
var ErrUnknownLocale = errgo.New("unknown locale")

// Locale holds the data for a single locale.
type Locale struct {
	// DecimalSeparator holds the separator to use between
	// the integer and fractional parts of a number.
	// If it's empty, "." is used.
	DecimalSeparator string `yaml:"decimal_separator"`
	// Strings maps translation keys to display text.
	Strings map[string]string `yaml:"strings"`
}

// Catalog maps locale tags to their display strings.
// The zero value is an empty catalog. A Catalog must not
// be changed while it's being used concurrently.
type Catalog struct {
	locales map[Tag]*Locale
}

// NewCatalog returns a catalog holding the given locales.
func NewCatalog(locales map[Tag]*Locale) *Catalog {
	cat := &Catalog{}
	for tag, loc := range locales {
		cat.Add(tag, loc)
	}
	return cat
}

// Default returns a new catalog holding the built-in locales.
func Default() *Catalog {
	return NewCatalog(builtin)
}

// Add adds or replaces the given locale. Strings in loc are
// merged with any strings already present for the tag.
func (cat *Catalog) Add(tag Tag, loc *Locale) {
	if cat.locales == nil {
		cat.locales = make(map[Tag]*Locale)
	}
	old := cat.locales[tag]
	merged := &Locale{
		Strings: make(map[string]string),
	}
	if old != nil {
		merged.DecimalSeparator = old.DecimalSeparator
		for k, v := range old.Strings {
			merged.Strings[k] = v
		}
	}
	if loc.DecimalSeparator != "" {
		merged.DecimalSeparator = loc.DecimalSeparator
	}
	for k, v := range loc.Strings {
		merged.Strings[k] = v
	}
	cat.locales[tag] = merged
}

// Has reports whether the catalog holds the given locale.
func (cat *Catalog) Has(tag Tag) bool {
	_, ok := cat.locales[tag]
	return ok
}

// Tags returns all the known locale tags in sorted order.
func (cat *Catalog) Tags() []Tag {
	tags := make([]Tag, 0, len(cat.locales))
	for tag := range cat.locales {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i] < tags[j]
	})
	return tags
}

// Keys returns all the translation keys known in any locale,
// in sorted order.
func (cat *Catalog) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, loc := range cat.locales {
		for k := range loc.Strings {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the text for the given key in the given locale.
// If either the locale or the key is unknown, the key itself is
// returned so that the omission is visible without breaking
// anything else.
func (cat *Catalog) Lookup(tag Tag, key string) string {
	if s, ok := cat.lookup(tag, key); ok {
		return s
	}
	return key
}

func (cat *Catalog) lookup(tag Tag, key string) (string, bool) {
	loc := cat.locales[tag]
	if loc == nil {
		return "", false
	}
	s, ok := loc.Strings[key]
	return s, ok
}

// DecimalSeparator returns the decimal separator for the
// given locale, or "." if the locale is unknown.
func (cat *Catalog) DecimalSeparator(tag Tag) string {
	if loc := cat.locales[tag]; loc != nil && loc.DecimalSeparator != "" {
		return loc.DecimalSeparator
	}
	return "."
}

// ParseYAML adds the locales defined in the given YAML
// document to the catalog. The document maps locale tags
// to Locale values, for example:
//
//	fr:
//	  decimal_separator: ","
//	  strings:
//	    app_title: Moniteur de consommation
func (cat *Catalog) ParseYAML(data []byte) error {
	var locales map[Tag]*Locale
	if err := yaml.UnmarshalStrict(data, &locales); err != nil {
		return errgo.Notef(err, "cannot parse locales")
	}
	for tag, loc := range locales {
		if tag == "" || loc == nil {
			return errgo.Newf("invalid empty locale entry")
		}
		cat.Add(tag, loc)
	}
	return nil
}

// LoadFile reads locale definitions from the given YAML
// file and adds them to the catalog.
func (cat *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}
	if err := cat.ParseYAML(data); err != nil {
		return errgo.Notef(err, "cannot load %q", path)
	}
	return nil
}
