package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClipPreview(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "a boy and a river", clipPreview("a boy and a river", 160))
	})

	t.Run("long text clipped with ellipsis", func(t *testing.T) {
		long := strings.Repeat("x", 200)
		got := clipPreview(long, 160)
		assert.Equal(t, strings.Repeat("x", 160)+"...", got)
	})

	t.Run("never splits a multi-byte rune", func(t *testing.T) {
		// "ö" occupies bytes 9-10; a cut at byte 10 lands mid-rune and
		// must back up to byte 9.
		got := clipPreview("eine tragödie und mehr", 10)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "eine trag...", got)
	})

	t.Run("cut exactly on a rune boundary", func(t *testing.T) {
		got := clipPreview("eine tragödie und mehr", 11)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "eine tragö...", got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", clipPreview("", 160))
	})
}
