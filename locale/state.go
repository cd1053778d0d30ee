package locale

import (
	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/prefs"
)

var logger = loggo.GetLogger("ehz.locale")

// PrefKey holds the preference key used to persist the active locale.
const PrefKey = "appLang"

// DefaultTag holds the locale used when no preference has been saved.
const DefaultTag Tag = "de"

// State holds the currently active locale. It is read by
// everything that formats text and changed only by Switch.
// A State is not safe for concurrent use.
type State struct {
	catalog *Catalog
	store   prefs.Store
	current Tag
}

// NewState returns the locale state, initialized from the
// preference held in store, or from fallback if there is no
// usable preference. If fallback is empty, DefaultTag is used.
func NewState(cat *Catalog, store prefs.Store, fallback Tag) *State {
	if fallback == "" {
		fallback = DefaultTag
	}
	s := &State{
		catalog: cat,
		store:   store,
		current: fallback,
	}
	v, err := prefs.GetDefault(store, PrefKey, string(fallback))
	if err != nil {
		logger.Warningf("cannot read locale preference: %v", err)
		return s
	}
	if !cat.Has(Tag(v)) {
		logger.Warningf("ignoring unknown saved locale %q", v)
		return s
	}
	s.current = Tag(v)
	return s
}

// Current returns the active locale.
func (s *State) Current() Tag {
	return s.current
}

// Catalog returns the catalog that the state selects from.
func (s *State) Catalog() *Catalog {
	return s.catalog
}

// Lookup is a shorthand for s.Catalog().Lookup(s.Current(), key).
func (s *State) Lookup(key string) string {
	return s.catalog.Lookup(s.current, key)
}

// Switch makes tag the active locale and saves it as the
// preference. If the tag isn't in the catalog, the active
// locale is left unchanged and an error with an
// ErrUnknownLocale cause is returned.
func (s *State) Switch(tag Tag) error {
	if !s.catalog.Has(tag) {
		return errgo.WithCausef(nil, ErrUnknownLocale, "unknown locale %q", tag)
	}
	s.current = tag
	if err := s.store.Put(PrefKey, string(tag)); err != nil {
		// The switch still takes effect for this session.
		logger.Warningf("cannot save locale preference: %v", err)
	}
	return nil
}
