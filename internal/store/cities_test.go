package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCityListRoundTrip(t *testing.T) {
	cities := NewCityList(NewMemoryKV(), zap.NewNop())

	assert.Equal(t, []string{}, cities.Load())

	require.NoError(t, cities.Save([]string{"Pune", "New York", "London, Uk"}))
	assert.Equal(t, []string{"Pune", "New York", "London, Uk"}, cities.Load())

	require.NoError(t, cities.Save(nil))
	assert.Equal(t, []string{}, cities.Load())
}

func TestCityListCorruptValueIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	cities := NewCityList(kv, zap.NewNop())

	for _, raw := range []string{`not json`, `{"a":1}`, `null`, `[1,2]`} {
		require.NoError(t, kv.Set(CitiesKey, []byte(raw)))
		assert.Equal(t, []string{}, cities.Load(), "value %q", raw)
	}
}

func TestCityListClear(t *testing.T) {
	kv := NewMemoryKV()
	cities := NewCityList(kv, zap.NewNop())
	require.NoError(t, cities.Save([]string{"Pune"}))

	require.NoError(t, cities.Clear())
	_, ok, err := kv.Get(CitiesKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{}, cities.Load())

	require.NoError(t, cities.Clear(), "clearing twice is fine")
}

func TestSQLiteKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dashboard.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	cities := NewCityList(kv, zap.NewNop())
	require.NoError(t, cities.Save([]string{"Pune", "Mumbai"}))
	require.NoError(t, cities.Save([]string{"Pune", "Mumbai", "Delhi"}))
	require.NoError(t, kv.Close())

	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	assert.Equal(t, []string{"Pune", "Mumbai", "Delhi"}, NewCityList(kv, zap.NewNop()).Load())
}

func TestSQLiteKVMissingAndDelete(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	_, ok, err := kv.Get("absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("k", []byte("v")))
	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, kv.Delete("k"))
	_, ok, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryKVCopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	value := []byte("abc")
	require.NoError(t, kv.Set("k", value))
	value[0] = 'x'

	got, ok, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), got)
}
