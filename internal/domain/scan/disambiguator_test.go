package scan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
)

var t0 = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

// typed genera las pulsaciones de s seguidas de Enter, separadas por gap.
func typed(start time.Time, s string, gap time.Duration) []scan.Key {
	keys := make([]scan.Key, 0, len(s)+1)
	at := start
	for _, r := range s {
		keys = append(keys, scan.Key{Rune: r, At: at})
		at = at.Add(gap)
	}
	return append(keys, scan.Key{Enter: true, At: at})
}

func feedAll(d *scan.Disambiguator, keys []scan.Key) []string {
	var out []string
	for _, k := range keys {
		if code, ok := d.Feed(k); ok {
			out = append(out, code)
		}
	}
	return out
}

func TestFeed_LectorRapido(t *testing.T) {
	d := scan.NewDisambiguator(scan.Config{GapThreshold: 50 * time.Millisecond, MinLength: 3})
	got := feedAll(d, typed(t0, "8410000123456", 10*time.Millisecond))
	assert.Equal(t, []string{"8410000123456"}, got)
	assert.Empty(t, d.Pending())
}

func TestFeed_TecleoHumanoSeDescarta(t *testing.T) {
	d := scan.NewDisambiguator(scan.Config{GapThreshold: 50 * time.Millisecond, MinLength: 3})
	got := feedAll(d, typed(t0, "ABC123", 180*time.Millisecond))
	assert.Empty(t, got, "cada pausa larga reinicia el búfer")
}

func TestFeed_PausaLargaReiniciaAntesDelEscaneo(t *testing.T) {
	d := scan.NewDisambiguator(scan.Config{GapThreshold: 50 * time.Millisecond, MinLength: 3})
	// basura suelta de un humano
	feedAll(d, []scan.Key{{Rune: 'x', At: t0}, {Rune: 'y', At: t0.Add(20 * time.Millisecond)}})
	// un segundo después, el lector
	got := feedAll(d, typed(t0.Add(time.Second), "A1B2", 5*time.Millisecond))
	assert.Equal(t, []string{"A1B2"}, got)
}

func TestFeed_LongitudMinima(t *testing.T) {
	d := scan.NewDisambiguator(scan.Config{GapThreshold: 50 * time.Millisecond, MinLength: 3})
	got := feedAll(d, typed(t0, "AB", 5*time.Millisecond))
	assert.Empty(t, got)
	assert.Equal(t, "AB", d.Pending(), "un Enter con búfer corto no lo descarta")

	code, ok := d.Feed(scan.Key{Rune: 'C', At: t0.Add(15 * time.Millisecond)})
	assert.False(t, ok)
	assert.Empty(t, code)
	code, ok = d.Feed(scan.Key{Enter: true, At: t0.Add(20 * time.Millisecond)})
	assert.True(t, ok)
	assert.Equal(t, "ABC", code)
}

func TestFeed_UmbralConfigurable(t *testing.T) {
	keys := typed(t0, "12345", 70*time.Millisecond)

	strict := scan.NewDisambiguator(scan.Config{GapThreshold: 50 * time.Millisecond, MinLength: 3})
	assert.Empty(t, feedAll(strict, keys))

	lenient := scan.NewDisambiguator(scan.Config{GapThreshold: 100 * time.Millisecond, MinLength: 3})
	assert.Equal(t, []string{"12345"}, feedAll(lenient, keys))
}

func TestFeed_IgnoraNoImprimibles(t *testing.T) {
	d := scan.NewDisambiguator(scan.Config{})
	keys := []scan.Key{
		{Rune: 'A', At: t0},
		{Rune: '\t', At: t0.Add(time.Millisecond)},
		{Rune: '1', At: t0.Add(2 * time.Millisecond)},
		{Rune: '2', At: t0.Add(3 * time.Millisecond)},
		{Enter: true, At: t0.Add(4 * time.Millisecond)},
	}
	assert.Equal(t, []string{"A12"}, feedAll(d, keys))
}

func TestFeed_DosEscaneosSeguidos(t *testing.T) {
	d := scan.NewDisambiguator(scan.Config{})
	keys := append(typed(t0, "111", time.Millisecond), typed(t0.Add(4*time.Millisecond), "222", time.Millisecond)...)
	assert.Equal(t, []string{"111", "222"}, feedAll(d, keys))
}
