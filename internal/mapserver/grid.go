package mapserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sh00ty/stadium-map/internal/models"
)

type tileResponse struct {
	ID           models.TileID       `json:"id"`
	GridX        int                 `json:"grid_x"`
	GridY        int                 `json:"grid_y"`
	Level        int                 `json:"level"`
	Bounds       models.Bounds       `json:"bounds"`
	Walkable     bool                `json:"walkable"`
	EntityCounts models.EntityCounts `json:"entity_counts"`
}

type tilesResponse struct {
	Tiles      []tileResponse `json:"tiles"`
	TotalTiles int            `json:"total_tiles"`
}

type rebuildResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TilesCreated int    `json:"tiles_created"`
}

func (srv *Server) gridConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, srv.grid.Config())
}

func (srv *Server) gridTiles(w http.ResponseWriter, r *http.Request) {
	level, ok := queryInt(w, r, "level")
	if !ok {
		return
	}
	tiles, err := srv.repo.ListTiles(r.Context(), level)
	if err != nil {
		srv.writeError(w, r, err, "Tiles not found")
		return
	}

	resp := tilesResponse{
		Tiles:      make([]tileResponse, 0, len(tiles)),
		TotalTiles: len(tiles),
	}
	for _, t := range tiles {
		resp.Tiles = append(resp.Tiles, tileResponse{
			ID:           t.ID,
			GridX:        t.GridX,
			GridY:        t.GridY,
			Level:        t.Level,
			Bounds:       t.Bounds,
			Walkable:     t.Walkable,
			EntityCounts: t.Counts(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (srv *Server) gridStats(w http.ResponseWriter, r *http.Request) {
	tiles, err := srv.repo.ListTiles(r.Context(), nil)
	if err != nil {
		srv.writeError(w, r, err, "Tiles not found")
		return
	}
	writeJSON(w, http.StatusOK, srv.grid.Stats(tiles))
}

func (srv *Server) gridRebuild(w http.ResponseWriter, r *http.Request) {
	count, err := srv.rebuilder.Rebuild(r.Context())
	if err != nil {
		srv.metrics.Increment("mapserver.grid_rebuild.failed")
		srv.log.Error().Err(err).Msg("grid rebuild failed")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Grid rebuild failed: %v", err))
		return
	}
	srv.metrics.Gauge("grid.tiles", count)
	writeJSON(w, http.StatusOK, rebuildResponse{
		Status:       "success",
		Message:      fmt.Sprintf("Grid rebuilt with %d tiles.", count),
		TilesCreated: count,
	})
}

// queryInt reads an optional integer query parameter, nil when absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be an integer, got %q", name, raw))
		return nil, false
	}
	return &v, true
}
