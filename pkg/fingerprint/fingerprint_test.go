package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeAmazon(t *testing.T) {
	cases := map[string]string{
		"https://www.amazon.eg/dp/B0CHX1W1XY":                                      "AMZN-B0CHX1W1XY",
		"https://www.amazon.eg/-/en/Apple-iPhone-15/dp/b0chx1w1xy/ref=sr_1_1?th=1": "AMZN-B0CHX1W1XY",
		"https://amazon.com/gp/product/B08N5WRWNW?psc=1#reviews":                   "AMZN-B08N5WRWNW",
		"https://www.amazon.sa/dp/B08N5WRWNW/":                                     "AMZN-B08N5WRWNW",
		"www.amazon.eg/dp/B0CHX1W1XY":                                              "AMZN-B0CHX1W1XY",
		"amazon.com/gp/product/B08N5WRWNW?psc=1":                                   "AMZN-B08N5WRWNW",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonicalize(in), in)
	}
}

func TestCanonicalizeNoon(t *testing.T) {
	got := Canonicalize("https://www.noon.com/egypt-en/galaxy-s24-ultra/N70035211V/p/?o=abc&shareId=1")
	assert.Equal(t, "NOON-N70035211V", got)

	got = Canonicalize("https://www.noon.com/saudi-en/galaxy-s24-ultra/n70035211v/p")
	assert.Equal(t, "NOON-N70035211V", got)

	got = Canonicalize("www.noon.com/egypt-en/galaxy-s24-ultra/N70035211V/p/")
	assert.Equal(t, "NOON-N70035211V", got)
}

func TestCanonicalizeFallback(t *testing.T) {
	got := Canonicalize("https://Shop.Example.com/Items/42/?ref=abc#top")
	assert.Equal(t, "https://shop.example.com/items/42", got)
}

func TestCanonicalizeIgnoresDecorations(t *testing.T) {
	base := "https://www.example.com/product/red-shoe"
	variants := []string{
		base,
		base + "/",
		base + "?utm_source=x",
		base + "#details",
		base + "/?session=123#x",
	}
	want := Canonicalize(base)
	for _, v := range variants {
		assert.Equal(t, want, Canonicalize(v), v)
	}
}

func TestCanonicalizeIsStable(t *testing.T) {
	in := "https://www.amazon.eg/dp/B0CHX1W1XY?tag=aff-21"
	first := Canonicalize(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Canonicalize(in))
	}
}

func TestAmazonPatternOnOtherHostFallsBack(t *testing.T) {
	got := Canonicalize("https://blog.example.com/dp/ABCDEFGHIJ")
	assert.Equal(t, "https://blog.example.com/dp/abcdefghij", got)
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://www.noon.com/egypt-en/X/N1/p", CleanURL(" https://www.noon.com/egypt-en/X/N1/p/?o=1 "))
	assert.Equal(t, "https://a.com/B", CleanURL("https://a.com/B#frag"))
}

func TestMemo(t *testing.T) {
	m := NewMemo(nil, time.Minute, time.Minute)
	in := "https://www.amazon.eg/dp/B0CHX1W1XY?x=1"
	assert.Equal(t, Canonicalize(in), m.Canonicalize(in))
	assert.Equal(t, Canonicalize(in), m.Canonicalize(in))
}
