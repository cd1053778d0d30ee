package asset_test

import (
	"io/fs"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/rogpeppe/ehz/asset"
)

func TestData(t *testing.T) {
	c := qt.New(t)
	names, err := fs.Glob(asset.Data(), "*")
	c.Assert(err, qt.IsNil)
	c.Assert(names, qt.DeepEquals, []string{"app.js", "style.css"})
	data, err := fs.ReadFile(asset.Data(), "app.js")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "google.visualization.DataTable")
}
