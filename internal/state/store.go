package state

import (
	"context"
	"encoding/json"

	"posfront/internal/normalize"
)

// DefaultRootKey is the persisted root document key.
const DefaultRootKey = "pos.front.state"

const (
	segmentFilters = "filters"
	segmentUI      = "ui"
)

// Filters is the product search segment.
type Filters struct {
	Query        string `json:"query"`
	Category     string `json:"category"`
	StoreID      string `json:"storeId"`
	SortBy       string `json:"sortBy"`
	CurrentPage  int    `json:"currentPage"`
	ItemsPerPage int    `json:"itemsPerPage"`
}

// DefaultFilters is the state of a fresh session.
func DefaultFilters() Filters {
	return Filters{CurrentPage: 1, ItemsPerPage: 20}
}

// UI is the presentation preferences segment.
type UI struct {
	Theme       string `json:"tema"`
	SidebarOpen bool   `json:"sidebarOpen"`
}

func DefaultUI() UI {
	return UI{Theme: "light", SidebarOpen: true}
}

// Store reads and writes the segmented root document.
type Store struct {
	kv      KV
	rootKey string
}

func NewStore(kv KV, rootKey string) *Store {
	if rootKey == "" {
		rootKey = DefaultRootKey
	}
	return &Store{kv: kv, rootKey: rootKey}
}

func (s *Store) loadRoot(ctx context.Context) (map[string]any, error) {
	data, err := s.kv.Get(ctx, s.rootKey)
	if err != nil {
		return nil, err
	}
	root := map[string]any{}
	if len(data) == 0 {
		return root, nil
	}
	// A corrupt root document is discarded, not an error: session state is
	// reconstructable and must never wedge the terminal.
	if err := json.Unmarshal(data, &root); err != nil {
		return map[string]any{}, nil
	}
	return root, nil
}

func (s *Store) saveRoot(ctx context.Context, root map[string]any) error {
	data, err := json.Marshal(root)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.rootKey, data)
}

func segment(root map[string]any, name string) (map[string]any, bool) {
	seg, ok := root[name].(map[string]any)
	return seg, ok
}

// HydrateFilters loads the filters segment. Missing fields fall back to
// the legacy root-level currentPage/itemsPerPage shadows, then to defaults.
func (s *Store) HydrateFilters(ctx context.Context) (Filters, error) {
	root, err := s.loadRoot(ctx)
	if err != nil {
		return DefaultFilters(), err
	}
	filters := DefaultFilters()
	if seg, ok := segment(root, segmentFilters); ok {
		filters.Query = normalize.String(seg, filters.Query, "query")
		filters.Category = normalize.String(seg, filters.Category, "category")
		filters.StoreID = normalize.String(seg, filters.StoreID, "storeId")
		filters.SortBy = normalize.String(seg, filters.SortBy, "sortBy")
		filters.CurrentPage = intField(seg, filters.CurrentPage, "currentPage")
		filters.ItemsPerPage = intField(seg, filters.ItemsPerPage, "itemsPerPage")
	} else {
		filters.CurrentPage = intField(root, filters.CurrentPage, "currentPage")
		filters.ItemsPerPage = intField(root, filters.ItemsPerPage, "itemsPerPage")
	}
	if filters.CurrentPage < 1 {
		filters.CurrentPage = 1
	}
	if filters.ItemsPerPage < 1 {
		filters.ItemsPerPage = DefaultFilters().ItemsPerPage
	}
	return filters, nil
}

// PersistFilters writes the segment and refreshes the root shadows.
func (s *Store) PersistFilters(ctx context.Context, filters Filters) error {
	root, err := s.loadRoot(ctx)
	if err != nil {
		return err
	}
	root[segmentFilters] = map[string]any{
		"query":        filters.Query,
		"category":     filters.Category,
		"storeId":      filters.StoreID,
		"sortBy":       filters.SortBy,
		"currentPage":  filters.CurrentPage,
		"itemsPerPage": filters.ItemsPerPage,
	}
	root["currentPage"] = filters.CurrentPage
	root["itemsPerPage"] = filters.ItemsPerPage
	return s.saveRoot(ctx, root)
}

// HydrateUI loads the UI segment, falling back to the legacy root-level
// tema shadow.
func (s *Store) HydrateUI(ctx context.Context) (UI, error) {
	root, err := s.loadRoot(ctx)
	if err != nil {
		return DefaultUI(), err
	}
	ui := DefaultUI()
	if seg, ok := segment(root, segmentUI); ok {
		ui.Theme = normalize.String(seg, ui.Theme, "tema", "theme")
		if open, ok := seg["sidebarOpen"].(bool); ok {
			ui.SidebarOpen = open
		}
	} else {
		ui.Theme = normalize.String(root, ui.Theme, "tema")
	}
	return ui, nil
}

// PersistUI writes the segment and refreshes the root tema shadow.
func (s *Store) PersistUI(ctx context.Context, ui UI) error {
	root, err := s.loadRoot(ctx)
	if err != nil {
		return err
	}
	root[segmentUI] = map[string]any{
		"tema":        ui.Theme,
		"sidebarOpen": ui.SidebarOpen,
	}
	root["tema"] = ui.Theme
	return s.saveRoot(ctx, root)
}

func intField(raw map[string]any, fallback int, keys ...string) int {
	value := normalize.Number(raw, keys...)
	if value.Sign() <= 0 {
		return fallback
	}
	return int(value.IntPart())
}
