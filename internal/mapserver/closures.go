package mapserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Sh00ty/stadium-map/internal/models"
)

type createClosureRequest struct {
	ID     string  `json:"id"`
	Reason string  `json:"reason"`
	EdgeID *string `json:"edge_id"`
	NodeID *string `json:"node_id"`
}

func (req createClosureRequest) toClosure() models.Closure {
	closure := models.Closure{
		ID:     models.ClosureID(req.ID),
		Reason: req.Reason,
	}
	if closure.ID == "" {
		closure.ID = models.ClosureID(uuid.NewString())
	}
	// empty ids are treated as not set
	if req.EdgeID != nil && *req.EdgeID != "" {
		id := models.EdgeID(*req.EdgeID)
		closure.EdgeID = &id
	}
	if req.NodeID != nil && *req.NodeID != "" {
		id := models.NodeID(*req.NodeID)
		closure.NodeID = &id
	}
	return closure
}

func (srv *Server) listClosures(w http.ResponseWriter, r *http.Request) {
	closures, err := srv.repo.ListClosures(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "Closures not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(closures))
}

func (srv *Server) getClosure(w http.ResponseWriter, r *http.Request) {
	closure, err := srv.repo.GetClosure(r.Context(), models.ClosureID(mux.Vars(r)["id"]))
	if err != nil {
		srv.writeError(w, r, err, "Closure not found")
		return
	}
	writeJSON(w, http.StatusOK, closure)
}

func (srv *Server) createClosure(w http.ResponseWriter, r *http.Request) {
	req := createClosureRequest{}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "reason is required")
		return
	}
	closure := req.toClosure()
	err := closure.Validate()
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Either edge_id or node_id must be provided")
		return
	}

	err = srv.repo.CreateClosure(r.Context(), closure)
	if err != nil {
		srv.writeError(w, r, err, "Closure not found")
		return
	}
	srv.notifier.NotifyClosureChanged(models.ClosureEvent{
		Op:      models.ClosureCreated,
		Closure: closure,
		At:      srv.now(),
	})
	srv.metrics.Increment("mapserver.closure.created")
	writeJSON(w, http.StatusCreated, closure)
}

func (srv *Server) deleteClosure(w http.ResponseWriter, r *http.Request) {
	id := models.ClosureID(mux.Vars(r)["id"])
	closure, err := srv.repo.DeleteClosure(r.Context(), id)
	if err != nil {
		srv.writeError(w, r, err, "Closure not found")
		return
	}
	srv.notifier.NotifyClosureChanged(models.ClosureEvent{
		Op:      models.ClosureDeleted,
		Closure: closure,
		At:      srv.now(),
	})
	srv.metrics.Increment("mapserver.closure.deleted")
	writeJSON(w, http.StatusOK, map[string]models.ClosureID{"deleted": id})
}
