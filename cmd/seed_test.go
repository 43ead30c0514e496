package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/pipeline"
	"github.com/grazbites/scraper/internal/store"
)

func writeCleanSnapshot(t *testing.T, rs []model.Restaurant) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), pipeline.CleanFile)
	require.NoError(t, pipeline.WriteSnapshot(path, model.NewSnapshot(rs, time.Now())))
	return path
}

func TestSeedCommand_LoadsSnapshot(t *testing.T) {
	useDefaults(t)
	dbPath := filepath.Join(t.TempDir(), "nested", "grazbites.db")
	cfg.Store.DatabaseURL = dbPath

	seedFile = writeCleanSnapshot(t, []model.Restaurant{
		{
			Name:    "Gasthaus Stainzerbauer",
			Address: "Bürgergasse 4, 8010 Graz, Austria",
			Cuisine: []string{"Austrian"},
			MenuItems: []model.MenuItem{
				{Name: "Backhendl", Price: "€ 16,90", Category: "Main"},
			},
			DataSources: []string{model.SourceOpenStreetMap, model.SourceWebsite},
		},
	})
	seedCmd.SetContext(context.Background())
	require.NoError(t, seedCmd.RunE(seedCmd, nil))

	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	got, err := st.ListRestaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gasthaus Stainzerbauer", got[0].Name)
	require.Len(t, got[0].MenuItems, 1)
	assert.InDelta(t, 16.9, *got[0].MenuItems[0].PriceValue, 1e-9)
}

func TestSeedCommand_EmptySnapshot(t *testing.T) {
	useDefaults(t)
	dbPath := filepath.Join(t.TempDir(), "grazbites.db")
	cfg.Store.DatabaseURL = dbPath

	seedFile = writeCleanSnapshot(t, nil)
	seedCmd.SetContext(context.Background())
	require.NoError(t, seedCmd.RunE(seedCmd, nil))

	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSeedCommand_MissingFile(t *testing.T) {
	useDefaults(t)
	cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "grazbites.db")

	seedFile = filepath.Join(t.TempDir(), "nope.json")
	seedCmd.SetContext(context.Background())
	assert.Error(t, seedCmd.RunE(seedCmd, nil))
}
