package mapserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Sh00ty/stadium-map/internal/models"
)

func (srv *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := srv.repo.ListEdges(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "Edges not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(edges))
}

func (srv *Server) getEdge(w http.ResponseWriter, r *http.Request) {
	edge, err := srv.repo.GetEdge(r.Context(), models.EdgeID(mux.Vars(r)["id"]))
	if err != nil {
		srv.writeError(w, r, err, "Edge not found")
		return
	}
	writeJSON(w, http.StatusOK, edge)
}

func (srv *Server) updateEdge(w http.ResponseWriter, r *http.Request) {
	upd := models.EdgeUpdate{}
	if !decodeBody(w, r, &upd) {
		return
	}
	if upd.Weight != nil && *upd.Weight < 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "weight must not be negative")
		return
	}
	edge, err := srv.repo.UpdateEdge(r.Context(), models.EdgeID(mux.Vars(r)["id"]), upd)
	if err != nil {
		srv.writeError(w, r, err, "Edge not found")
		return
	}
	writeJSON(w, http.StatusOK, edge)
}
