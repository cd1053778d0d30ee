package prefs_test

import (
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/prefs"
)

func TestMemStore(t *testing.T) {
	testStore(qt.New(t), new(prefs.MemStore))
}

func TestBoltStore(t *testing.T) {
	c := qt.New(t)
	s, err := prefs.OpenBolt(filepath.Join(c.TempDir(), "prefs.db"))
	c.Assert(err, qt.IsNil)
	defer s.Close()
	testStore(c, s)
}

func TestBoltStorePersists(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "prefs.db")
	s, err := prefs.OpenBolt(path)
	c.Assert(err, qt.IsNil)
	err = s.Put("appLang", "en")
	c.Assert(err, qt.IsNil)
	c.Assert(s.Close(), qt.IsNil)

	s, err = prefs.OpenBolt(path)
	c.Assert(err, qt.IsNil)
	defer s.Close()
	v, err := s.Get("appLang")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, "en")
}

func testStore(c *qt.C, s prefs.Store) {
	_, err := s.Get("appLang")
	c.Assert(errgo.Cause(err), qt.Equals, prefs.ErrNotFound)

	v, err := prefs.GetDefault(s, "appLang", "de")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, "de")

	err = s.Put("appLang", "en")
	c.Assert(err, qt.IsNil)

	v, err = s.Get("appLang")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, "en")

	v, err = prefs.GetDefault(s, "appLang", "de")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, "en")
}
