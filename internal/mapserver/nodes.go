package mapserver

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Sh00ty/stadium-map/internal/models"
)

func (srv *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	filter := models.NodeFilter{}
	for _, raw := range r.URL.Query()["type"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Types = append(filter.Types, models.NodeType(t))
			}
		}
	}
	level, ok := queryInt(w, r, "level")
	if !ok {
		return
	}
	filter.Level = level

	nodes, err := srv.repo.ListNodes(r.Context(), filter)
	if err != nil {
		srv.writeError(w, r, err, "Nodes not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(nodes))
}

func (srv *Server) getNode(w http.ResponseWriter, r *http.Request) {
	node, err := srv.repo.GetNode(r.Context(), models.NodeID(mux.Vars(r)["id"]))
	if err != nil {
		srv.writeError(w, r, err, "Node not found")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (srv *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	upd := models.NodeUpdate{}
	if !decodeBody(w, r, &upd) {
		return
	}
	node, err := srv.repo.UpdateNode(r.Context(), models.NodeID(mux.Vars(r)["id"]), upd)
	if err != nil {
		srv.writeError(w, r, err, "Node not found")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// nodeKind is a typed view over nodes: POIs, seats and gates are nodes
// of specific types with their own endpoints.
type nodeKind struct {
	path  string
	label string
	types []models.NodeType
	// blockFilter enables ?block= on the list endpoint
	blockFilter bool
	// restrict keeps only the fields the kind endpoint may change
	restrict func(models.NodeUpdate) models.NodeUpdate
}

var (
	poiKind = nodeKind{
		path:  "pois",
		label: "POI",
		types: models.POITypes,
		restrict: func(u models.NodeUpdate) models.NodeUpdate {
			return models.NodeUpdate{
				Name:        u.Name,
				Type:        u.Type,
				X:           u.X,
				Y:           u.Y,
				Level:       u.Level,
				NumServers:  u.NumServers,
				ServiceRate: u.ServiceRate,
			}
		},
	}
	seatKind = nodeKind{
		path:        "seats",
		label:       "Seat",
		types:       []models.NodeType{models.NodeTypeSeat},
		blockFilter: true,
		restrict: func(u models.NodeUpdate) models.NodeUpdate {
			return models.NodeUpdate{
				Block:  u.Block,
				Row:    u.Row,
				Number: u.Number,
				X:      u.X,
				Y:      u.Y,
				Level:  u.Level,
			}
		},
	}
	gateKind = nodeKind{
		path:  "gates",
		label: "Gate",
		types: []models.NodeType{models.NodeTypeGate},
		restrict: func(u models.NodeUpdate) models.NodeUpdate {
			return models.NodeUpdate{
				Name:        u.Name,
				X:           u.X,
				Y:           u.Y,
				Level:       u.Level,
				NumServers:  u.NumServers,
				ServiceRate: u.ServiceRate,
			}
		},
	}
)

func (k nodeKind) notFound() string {
	return k.label + " not found"
}

func (k nodeKind) has(n models.Node) bool {
	return slices.Contains(k.types, n.Type)
}

func (srv *Server) listKind(k nodeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := models.NodeFilter{Types: k.types}
		if block := r.URL.Query().Get("block"); k.blockFilter && block != "" {
			filter.Block = &block
		}
		nodes, err := srv.repo.ListNodes(r.Context(), filter)
		if err != nil {
			srv.writeError(w, r, err, k.notFound())
			return
		}
		writeJSON(w, http.StatusOK, nonNil(nodes))
	}
}

func (srv *Server) getKind(k nodeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		node, ok := srv.lookupKind(w, r, k)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, node)
	}
}

func (srv *Server) updateKind(k nodeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upd := models.NodeUpdate{}
		if !decodeBody(w, r, &upd) {
			return
		}
		node, ok := srv.lookupKind(w, r, k)
		if !ok {
			return
		}
		node, err := srv.repo.UpdateNode(r.Context(), node.ID, k.restrict(upd))
		if err != nil {
			srv.writeError(w, r, err, k.notFound())
			return
		}
		writeJSON(w, http.StatusOK, node)
	}
}

// lookupKind answers 404 for missing nodes and for nodes of another kind.
func (srv *Server) lookupKind(w http.ResponseWriter, r *http.Request, k nodeKind) (models.Node, bool) {
	node, err := srv.repo.GetNode(r.Context(), models.NodeID(mux.Vars(r)["id"]))
	if err != nil {
		srv.writeError(w, r, err, k.notFound())
		return models.Node{}, false
	}
	if !k.has(node) {
		writeDetail(w, http.StatusNotFound, k.notFound())
		return models.Node{}, false
	}
	return node, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
