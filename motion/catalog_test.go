package motion

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotechat/protocol"
)

func TestSimplify(t *testing.T) {
	assert.Equal(t, "wave", Simplify("a/b/wave"))
	assert.Equal(t, "wave", Simplify("wave"))
	assert.Equal(t, "", Simplify("emotes/"))
}

func TestCatalogResolveAndDurations(t *testing.T) {
	c := NewCatalog([]string{"idle", "emotes/wave", "extra/wave", "dance"}, map[string]time.Duration{
		"emotes/wave": 1500 * time.Millisecond,
	})

	assert.Equal(t, "emotes/wave", c.Resolve("wave"), "first full name wins for a shared short name")
	assert.Equal(t, "extra/wave", c.Resolve("extra/wave"))
	assert.Equal(t, "unknown", c.Resolve("unknown"))
	assert.Equal(t, []string{"idle", "wave", "dance"}, c.SimpleNames())

	assert.Equal(t, 1500*time.Millisecond, c.Duration("emotes/wave"))
	assert.Equal(t, DefaultEmoteDuration, c.Duration("dance"))

	var nilCatalog *Catalog
	assert.Equal(t, "wave", nilCatalog.Resolve("wave"))
	assert.Equal(t, DefaultEmoteDuration, nilCatalog.Duration("wave"))
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "animations:\n  - name: idle\n  - name: emotes/wave\n    duration: 1.2s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"idle", "emotes/wave"}, c.Names())
	assert.Equal(t, 1200*time.Millisecond, c.Duration("emotes/wave"))
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := ParseCatalog([]byte("animations:\n  - name: wave\n    duration: forever\n"))
	assert.Error(t, err)
	_, err = ParseCatalog([]byte("animations:\n  - duration: 1s\n"))
	assert.Error(t, err)
}

func TestThrottle(t *testing.T) {
	th := NewThrottle(SendInterval)
	assert.True(t, th.Allow(at(0)))
	assert.False(t, th.Allow(at(100)))
	assert.False(t, th.Allow(at(200)))
	assert.True(t, th.Allow(at(201)))
}

func TestSpawnPointMatchesServerZone(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		p := protocol.SpawnPoint(rng, 2000, 0.05)
		assert.True(t, p.X >= 900 && p.X <= 1100, "x=%v", p.X)
		assert.True(t, p.Y >= 900 && p.Y <= 1100, "y=%v", p.Y)
		assert.Equal(t, p, p.Rounded())
	}
}
