package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogsDirectory = "../../testdata/catalogs"

func TestGetCatalogs(t *testing.T) {
	//** Act
	catalogs, err := getCatalogs(catalogsDirectory)

	//** Assert
	require.NoError(t, err)
	require.Len(t, catalogs, 2)
	assert.True(t, strings.HasSuffix(catalogs[0].Name, "lab_department.json"))
	assert.Equal(t, 7, catalogs[0].Professors)
	assert.Equal(t, 4, catalogs[0].Rooms)
}

func TestBenchmark(t *testing.T) {
	//** Arrange
	catalogs, err := getCatalogs(catalogsDirectory)
	require.NoError(t, err)
	profiles := getProfiles()[:2]
	announced := 0

	//** Act
	results, err := benchmark(context.Background(), catalogs, profiles, []int{0, 64}, func(CatalogMetadata, Profile, int) { announced++ })

	//** Assert
	require.NoError(t, err)
	assert.Len(t, results, len(catalogs)*2*2)
	assert.Equal(t, len(results), announced)
	for _, result := range results {
		assert.Equal(t, "solved", result.Result, "%v/%v/%v", result.Catalog, result.Profile, result.NogoodCapacity)
		assert.Zero(t, result.Unresolved)
		assert.Positive(t, result.Sessions)
	}

	t.Run("Csv", func(t *testing.T) {
		//** Arrange
		path := filepath.Join(t.TempDir(), "results.csv")

		//** Act
		err := toCsv(path, results)

		//** Assert
		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		assert.Equal(t, "catalog,profile,nogood_capacity,subjects,professors,groups,rooms,sessions,unresolved,steps,duration_ms,memory_mb,score,result", lines[0])
		assert.Len(t, lines, len(results)+1)
	})
}
