package state

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateFiltersDefaults(t *testing.T) {
	store := NewStore(NewMemoryKV(), "")

	filters, err := store.HydrateFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultFilters(), filters)
}

func TestFiltersRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, "")

	want := Filters{Query: "taladro", Category: "herramientas", CurrentPage: 3, ItemsPerPage: 50}
	require.NoError(t, store.PersistFilters(context.Background(), want))

	got, err := store.HydrateFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPersistFiltersWritesRootShadows(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, "")

	require.NoError(t, store.PersistFilters(context.Background(), Filters{CurrentPage: 7, ItemsPerPage: 25}))

	data, err := kv.Get(context.Background(), DefaultRootKey)
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, json.Unmarshal(data, &root))
	assert.EqualValues(t, 7, root["currentPage"], "legacy readers expect the shadow at the root")
	assert.EqualValues(t, 25, root["itemsPerPage"])
}

func TestHydrateFiltersLegacyRootShadowFallback(t *testing.T) {
	kv := NewMemoryKV()
	// A pre-segment document: fields live at the root only.
	require.NoError(t, kv.Set(context.Background(), DefaultRootKey,
		[]byte(`{"currentPage": 4, "itemsPerPage": 10, "tema": "dark"}`)))
	store := NewStore(kv, "")

	filters, err := store.HydrateFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, filters.CurrentPage)
	assert.Equal(t, 10, filters.ItemsPerPage)

	ui, err := store.HydrateUI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dark", ui.Theme)
}

func TestHydrateFiltersSanitizesBadValues(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), DefaultRootKey,
		[]byte(`{"filters": {"currentPage": -2, "itemsPerPage": 0}}`)))
	store := NewStore(kv, "")

	filters, err := store.HydrateFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, filters.CurrentPage)
	assert.Equal(t, DefaultFilters().ItemsPerPage, filters.ItemsPerPage)
}

func TestCorruptRootDocumentDiscarded(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), DefaultRootKey, []byte(`not json at all`)))
	store := NewStore(kv, "")

	filters, err := store.HydrateFilters(context.Background())
	require.NoError(t, err, "corrupt state never wedges the terminal")
	assert.Equal(t, DefaultFilters(), filters)
}

func TestUIRoundTripAndShadow(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, "custom.key")

	require.NoError(t, store.PersistUI(context.Background(), UI{Theme: "dark", SidebarOpen: false}))

	ui, err := store.HydrateUI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dark", ui.Theme)
	assert.False(t, ui.SidebarOpen)

	data, err := kv.Get(context.Background(), "custom.key")
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, json.Unmarshal(data, &root))
	assert.Equal(t, "dark", root["tema"])
}

func TestSegmentsDoNotClobberEachOther(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, "")

	require.NoError(t, store.PersistFilters(context.Background(), Filters{Query: "cemento", CurrentPage: 2, ItemsPerPage: 20}))
	require.NoError(t, store.PersistUI(context.Background(), UI{Theme: "dark", SidebarOpen: true}))

	filters, err := store.HydrateFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cemento", filters.Query)

	ui, err := store.HydrateUI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dark", ui.Theme)
}
