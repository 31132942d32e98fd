package driver

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apix/internal/config"
	"apix/internal/diag"
	"apix/internal/version"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	require.NoError(t, err)
	key := Digest(sha256.Sum256([]byte("k")))

	var out CachePayload
	ok, err := cache.Get(key, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	in := &CachePayload{
		Schema:  cacheSchemaVersion,
		Tool:    version.Version,
		Report:  "report",
		Rollups: map[string]string{"public": "x"},
		Logged:  []diag.LoggedMessage{{Level: diag.LevelWarning, Message: diag.Message{ID: diag.AEForgottenExport, Text: "t"}}},
	}
	require.NoError(t, cache.Put(key, in))
	ok, err = cache.Get(key, &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "report", out.Report)
	assert.Equal(t, "x", out.Rollups["public"])
	require.Len(t, out.Logged, 1)
	assert.Equal(t, diag.AEForgottenExport, out.Logged[0].Message.ID)

	in.Schema = cacheSchemaVersion + 1
	require.NoError(t, cache.Put(key, in))
	ok, err = cache.Get(key, &CachePayload{})
	require.NoError(t, err)
	assert.False(t, ok, "other schema is a miss")
}

func TestPayloadFreshness(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.d.ts")
	require.NoError(t, os.WriteFile(path, []byte("export {};"), 0o644))

	hashes, ok := hashFiles([]string{path})
	require.True(t, ok)
	p := &CachePayload{FilePaths: []string{path}, FileHashes: hashes}
	assert.True(t, p.fresh())

	require.NoError(t, os.WriteFile(path, []byte("export {}; "), 0o644))
	assert.False(t, p.fresh())

	require.NoError(t, os.Remove(path))
	assert.False(t, p.fresh())
	assert.False(t, (&CachePayload{}).fresh())
}

func TestConfigKeyDependsOnSettings(t *testing.T) {
	a := &config.Config{PackageName: "p"}
	b := &config.Config{PackageName: "p"}
	b.DocModel.Enabled = true

	ka, err := configKey(a)
	require.NoError(t, err)
	ka2, err := configKey(a)
	require.NoError(t, err)
	kb, err := configKey(b)
	require.NoError(t, err)
	assert.Equal(t, ka, ka2)
	assert.NotEqual(t, ka, kb)
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedUnique([]string{"c", "a", "b", "a", "c"}))
}
