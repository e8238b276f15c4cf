package mapserver

import (
	"fmt"
	"net/http"
)

func (srv *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resetResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	NodesCreated int    `json:"nodes_created"`
	EdgesCreated int    `json:"edges_created"`
	TilesCreated int    `json:"tiles_created"`
}

// reset drops every node, edge, closure and tile and writes the seed
// dataset with a fresh grid in one transaction.
func (srv *Server) reset(w http.ResponseWriter, r *http.Request) {
	srv.log.Warn().Msg("resetting database to the seed dataset")

	summary, err := srv.reseeder.Reload(r.Context())
	if err != nil {
		srv.metrics.Increment("mapserver.reset.failed")
		srv.log.Error().Err(err).Msg("reset failed")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Reset failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{
		Status:       "success",
		Message:      "Database reset to initial state with sample data",
		NodesCreated: summary.Nodes,
		EdgesCreated: summary.Edges,
		TilesCreated: summary.Tiles,
	})
}
