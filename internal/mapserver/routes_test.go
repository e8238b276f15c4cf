package mapserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sh00ty/stadium-map/internal/models"
)

func withRoutes(env *testEnv) {
	env.repo.addNode(models.Node{ID: "Exit-A", X: 0, Y: 0, Type: models.NodeTypeEmergencyExit, Name: ptr("Exit A")})
	env.repo.addNode(models.Node{ID: "Exit-B", X: 100, Y: 0, Level: 1, Type: models.NodeTypeEmergencyExit})
	env.repo.routes["ER-Exit-A"] = models.EmergencyRoute{
		ID:          "ER-Exit-A",
		Name:        "Route A",
		Description: ptr("to A"),
		ExitID:      "Exit-A",
		NodeIDs:     []models.NodeID{"N1", "N2", "Exit-A"},
	}
	env.repo.routes["ER-Exit-B"] = models.EmergencyRoute{
		ID:      "ER-Exit-B",
		Name:    "Route B",
		ExitID:  "Exit-B",
		NodeIDs: []models.NodeID{"N3", "Exit-B"},
	}
}

func TestListEmergencyRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/emergency-routes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	withRoutes(env)
	rec = env.do(t, http.MethodGet, "/emergency-routes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	routes := decode[[]models.EmergencyRoute](t, rec)
	require.Len(t, routes, 2)
	assert.Equal(t, models.RouteID("ER-Exit-A"), routes[0].ID)
	assert.Equal(t, "to A", *routes[0].Description)
	assert.Equal(t, []models.NodeID{"N3", "Exit-B"}, routes[1].NodeIDs)
	assert.Nil(t, routes[1].Description)
}

func TestNearestEmergencyRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/emergency-routes/nearest?x=1&y=1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"detail":"No emergency routes defined"}`, rec.Body.String())

	withRoutes(env)

	// N3 sits on the spot but one level up, N1 is 5 away on the same level
	rec = env.do(t, http.MethodGet, "/emergency-routes/nearest?x=6&y=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"route_id": "ER-Exit-A",
		"route_name": "Route A",
		"exit_id": "Exit-A",
		"start_node": {"id": "N1", "x": 1, "y": 2, "level": 0},
		"distance_to_start": 5,
		"num_waypoints": 3
	}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/emergency-routes/nearest?x=6&y=2&level=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[nearestRouteResponse](t, rec)
	assert.Equal(t, models.RouteID("ER-Exit-B"), resp.RouteID)
	assert.Zero(t, resp.DistanceToStart)

	rec = env.do(t, http.MethodGet, "/emergency-routes/nearest?x=1.5&y=2.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[nearestRouteResponse](t, rec)
	assert.InDelta(t, 0.71, resp.DistanceToStart, 1e-9)

	for _, query := range []string{"?y=1", "?x=1", "?x=abc&y=1", "?x=1&y=2&level=top"} {
		rec = env.do(t, http.MethodGet, "/emergency-routes/nearest"+query, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, query)
	}
}

func TestNearestEmergencyRoute_StartNodeMissing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.repo.routes["ER-X"] = models.EmergencyRoute{ID: "ER-X", ExitID: "Gate-1", NodeIDs: []models.NodeID{"ghost", "Gate-1"}}
	env.repo.routes["ER-Y"] = models.EmergencyRoute{ID: "ER-Y", ExitID: "Gate-1"}

	rec := env.do(t, http.MethodGet, "/emergency-routes/nearest?x=1&y=1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"detail":"No valid emergency routes found"}`, rec.Body.String())
}

func TestGetEmergencyRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	withRoutes(env)

	rec := env.do(t, http.MethodGet, "/emergency-routes/ER-Exit-A", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[routeCollection](t, rec)
	require.Equal(t, "FeatureCollection", resp.Type)
	require.Len(t, resp.Features, 4)

	line := resp.Features[0]
	assert.Equal(t, "LineString", line.Geometry.Type)
	assert.Equal(t, []any{[]any{1.0, 2.0}, []any{6.0, 2.0}, []any{0.0, 0.0}}, line.Geometry.Coordinates)
	assert.Equal(t, "emergency_route", line.Properties["type"])

	assert.Equal(t, "Point", resp.Features[1].Geometry.Type)
	assert.Equal(t, "start", resp.Features[1].Properties["role"])
	assert.Equal(t, "waypoint", resp.Features[2].Properties["role"])
	assert.Equal(t, "exit", resp.Features[3].Properties["role"])
	assert.Equal(t, "Exit-A", resp.Features[3].Properties["node_id"])
	assert.Equal(t, 2.0, resp.Features[3].Properties["order"])

	assert.Equal(t, models.RouteID("ER-Exit-A"), resp.Metadata.RouteID)
	assert.Equal(t, 3, resp.Metadata.NumWaypoints)
	assert.Equal(t, []models.NodeID{"N1", "N2", "Exit-A"}, resp.Metadata.NodeIDs)

	rec = env.do(t, http.MethodGet, "/emergency-routes/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"detail":"Emergency route 'nope' not found"}`, rec.Body.String())
}
