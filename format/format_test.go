package format_test

import (
	"math"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/rogpeppe/ehz/format"
	"github.com/rogpeppe/ehz/locale"
)

var numberTests = []struct {
	testName string
	v        float64
	tag      locale.Tag
	decimals int
	expect   string
}{{
	testName: "de",
	v:        1234.5,
	tag:      "de",
	decimals: 1,
	expect:   "1234,5",
}, {
	testName: "en",
	v:        1234.5,
	tag:      "en",
	decimals: 1,
	expect:   "1234.5",
}, {
	testName: "no-grouping",
	v:        1234567.25,
	tag:      "en",
	decimals: 2,
	expect:   "1234567.25",
}, {
	testName: "pad",
	v:        500,
	tag:      "de",
	decimals: 1,
	expect:   "500,0",
}, {
	testName: "round-half-up",
	v:        0.25,
	tag:      "en",
	decimals: 1,
	expect:   "0.3",
}, {
	testName: "round-half-negative",
	v:        -0.25,
	tag:      "en",
	decimals: 1,
	expect:   "-0.3",
}, {
	testName: "negative-de",
	v:        -200,
	tag:      "de",
	decimals: 1,
	expect:   "-200,0",
}, {
	testName: "zero-decimals",
	v:        12.5,
	tag:      "de",
	decimals: 0,
	expect:   "13",
}, {
	testName: "negative-decimals",
	v:        12.4,
	tag:      "de",
	decimals: -1,
	expect:   "12",
}, {
	testName: "unknown-locale",
	v:        1.5,
	tag:      "xx",
	decimals: 1,
	expect:   "1.5",
}, {
	testName: "nan",
	v:        math.NaN(),
	tag:      "de",
	decimals: 1,
	expect:   format.Unavailable,
}, {
	testName: "inf",
	v:        math.Inf(-1),
	tag:      "en",
	decimals: 1,
	expect:   format.Unavailable,
}}

func TestNumber(t *testing.T) {
	c := qt.New(t)
	cat := locale.Default()
	for _, test := range numberTests {
		c.Run(test.testName, func(c *qt.C) {
			c.Assert(format.Number(cat, test.v, test.tag, test.decimals), qt.Equals, test.expect)
		})
	}
}

func TestOptNumber(t *testing.T) {
	c := qt.New(t)
	cat := locale.Default()
	c.Assert(format.OptNumber(cat, nil, "de", 1), qt.Equals, format.Unavailable)
	v := 1234.5
	c.Assert(format.OptNumber(cat, &v, "de", 1), qt.Equals, "1234,5")
}

func TestNumberWithLoadedLocale(t *testing.T) {
	c := qt.New(t)
	cat := locale.Default()
	err := cat.ParseYAML([]byte("fr:\n  decimal_separator: ','\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(format.Number(cat, 3.25, "fr", 2), qt.Equals, "3,25")
}

func TestStatusLabel(t *testing.T) {
	c := qt.New(t)
	cat := locale.Default()
	c.Assert(format.StatusLabel(cat, true, "de"), qt.Equals, "Einspeisung")
	c.Assert(format.StatusLabel(cat, false, "de"), qt.Equals, "Bezug")
	c.Assert(format.StatusLabel(cat, true, "en"), qt.Equals, "Grid Feed-in")
	c.Assert(format.StatusLabel(cat, false, "en"), qt.Equals, "Consumption")
	c.Assert(format.StatusLabel(cat, true, "xx"), qt.Equals, locale.KeyStatusFeedIn)
}
