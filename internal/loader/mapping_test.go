package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMatchesAliasesCaseInsensitively(t *testing.T) {
	t.Parallel()

	header := []string{"School DBN", "SCHOOL_NAME", "Borough", "geo_coordinates"}
	cols, err := DefaultMapping().Resolve(header)
	require.NoError(t, err)

	assert.Equal(t, 0, cols[FieldID])
	assert.Equal(t, 1, cols[FieldName])
	assert.Equal(t, 2, cols[FieldBorough])
	assert.Equal(t, 3, cols[FieldCoordinates])
}

func TestResolveRequiresIDColumn(t *testing.T) {
	t.Parallel()

	_, err := DefaultMapping().Resolve([]string{"school_name", "borough"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id column")
}

func TestResolveFirstMatchWins(t *testing.T) {
	t.Parallel()

	cols, err := DefaultMapping().Resolve([]string{"dbn", "school_dbn"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols[FieldID])
}

func TestLoadMappingMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: [ats_code]\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)

	cols, err := m.Resolve([]string{"ATS Code", "school_name"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols[FieldID])
	assert.Equal(t, 1, cols[FieldName], "unlisted fields keep their defaults")
}

func TestLoadMappingRejectsUnknownField(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zipcode: [zip]\n"), 0o644))

	_, err := LoadMapping(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}
