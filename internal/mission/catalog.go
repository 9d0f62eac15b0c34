package mission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Info is the catalog record for one mission.
type Info struct {
	Map  string `json:"map"`
	Mode string `json:"mode"`
}

// Catalog is the in-process mission metadata cache. Readers take an atomic
// snapshot; Refresh swaps in a fresh map fetched from the content endpoint.
// A failed refresh keeps the previous snapshot.
type Catalog struct {
	url    string
	client *http.Client
	cell   atomic.Pointer[map[string]Info]
}

// NewCatalog creates a catalog refreshing from the given content URL.
func NewCatalog(url string) *Catalog {
	c := &Catalog{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	empty := make(map[string]Info)
	c.cell.Store(&empty)
	return c
}

// Refresh fetches the mission document and atomically swaps the cache.
func (c *Catalog) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("mission data request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch mission data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch mission data: status %d", resp.StatusCode)
	}

	var doc struct {
		Missions map[string]Info `json:"missions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode mission data: %w", err)
	}
	if doc.Missions == nil {
		doc.Missions = make(map[string]Info)
	}

	c.cell.Store(&doc.Missions)
	log.Info().Int("missions", len(doc.Missions)).Msg("Mission catalog refreshed")
	return nil
}

// Resolve looks up a mission by name in the current snapshot.
func (c *Catalog) Resolve(name string) (Info, bool) {
	snapshot := *c.cell.Load()
	info, ok := snapshot[name]
	return info, ok
}

// Size returns the number of missions in the current snapshot.
func (c *Catalog) Size() int {
	return len(*c.cell.Load())
}
