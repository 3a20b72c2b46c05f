package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/repair"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	projects map[string]mdf.Project
	shares   map[string]mdf.Share
	seq      int
}

func newMemStore() *memStore {
	return &memStore{projects: map[string]mdf.Project{}, shares: map[string]mdf.Share{}}
}

func (m *memStore) CreateSchema(context.Context) error { return nil }
func (m *memStore) DropSchema(context.Context) error   { return nil }

func (m *memStore) SaveProject(_ context.Context, p *mdf.Project) (*mdf.Project, error) {
	if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("p-%d", m.seq)
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	m.projects[p.ID] = *p
	return p, nil
}

func (m *memStore) GetProject(_ context.Context, id string) (*mdf.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) ListProjects(context.Context) ([]mdf.Project, error) {
	out := []mdf.Project{}
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) DeleteProject(_ context.Context, id string) error {
	delete(m.projects, id)
	return nil
}

func (m *memStore) CreateShare(_ context.Context, projectID string) (*mdf.Share, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return nil, mdf.ErrProjectNotFound
	}
	m.seq++
	s := mdf.Share{ID: fmt.Sprintf("s-%d", m.seq), ProjectID: p.ID, Graph: p.Graph, CreatedAt: time.Now()}
	m.shares[s.ID] = s
	return &s, nil
}

func (m *memStore) GetShare(_ context.Context, id string) (*mdf.Share, error) {
	s, ok := m.shares[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestCatalogAndProfiles(t *testing.T) {
	app := newApp(newMemStore())

	resp, body := doJSON(t, app, "GET", "/catalog", nil)
	require.Equal(t, 200, resp.StatusCode)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(body, &entries))
	assert.Greater(t, len(entries), 30)

	resp, body = doJSON(t, app, "GET", "/profiles", nil)
	require.Equal(t, 200, resp.StatusCode)
	var profiles []map[string]any
	require.NoError(t, json.Unmarshal(body, &profiles))
	assert.Len(t, profiles, 3)
}

func TestGenerateEndpoints(t *testing.T) {
	app := newApp(newMemStore())

	t.Run("profile", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/generate/profile/snowflake-native", nil)
		require.Equal(t, 200, resp.StatusCode)

		var out struct {
			Graph mdf.Graph `json:"graph"`
			Stats mdf.Stats `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.NotEmpty(t, out.Graph.Nodes)
		assert.NotEmpty(t, out.Graph.Edges)
		assert.Equal(t, len(out.Graph.Nodes), out.Stats.TotalNodes)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resp, _ := doJSON(t, app, "POST", "/generate/profile/atari-2600", nil)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("wizard", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/generate/wizard", map[string]any{
			"wizard": map[string]any{
				"cloud_provider": "snowflake",
				"tools":          []string{"salesforce"},
				"goals":          []string{"activate_audiences"},
			},
		})
		require.Equal(t, 200, resp.StatusCode)

		var out struct {
			Graph mdf.Graph `json:"graph"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.Graph.HasCatalogNode("mdf_hub"))
		assert.True(t, out.Graph.HasCatalogNode("snowflake_warehouse"))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/generate/wizard", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestValidateEndpoint(t *testing.T) {
	app := newApp(newMemStore())

	g := mdf.Graph{
		Nodes: []mdf.Node{
			{ID: "s", Data: mdf.NodeData{CatalogID: "crm_salesforce", Category: "source"}},
			{ID: "d", Data: mdf.NodeData{CatalogID: "dest_email", Category: "destination"}},
		},
		Edges: []mdf.Edge{{ID: "bad", Source: "s", Target: "d"}},
	}

	resp, body := doJSON(t, app, "POST", "/validate", map[string]any{"graph": g})
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Result struct {
			Errors []map[string]any `json:"errors"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Result.Errors, 1)
	assert.Equal(t, "source_to_destination", out.Result.Errors[0]["ruleViolated"])
}

func TestRepairEndpoints(t *testing.T) {
	app := newApp(newMemStore())

	g := mdf.Graph{Nodes: []mdf.Node{
		{ID: "s", Data: mdf.NodeData{CatalogID: "crm_salesforce", Category: "source"}},
	}}

	resp, body := doJSON(t, app, "POST", "/repair", map[string]any{"graph": g})
	require.Equal(t, 200, resp.StatusCode)

	var plan repair.Plan
	require.NoError(t, json.Unmarshal(body, &plan))
	assert.NotZero(t, plan.TotalSuggestions)

	resp, body = doJSON(t, app, "POST", "/repair/apply", map[string]any{"graph": g, "plan": plan})
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Graph mdf.Graph `json:"graph"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Greater(t, len(out.Graph.Nodes), 1)
}

func TestLayoutEndpoint(t *testing.T) {
	app := newApp(newMemStore())

	g := mdf.Graph{
		Nodes: []mdf.Node{
			{ID: "s", Data: mdf.NodeData{CatalogID: "crm_salesforce", Category: "source"}},
			{ID: "w", Data: mdf.NodeData{CatalogID: "snowflake_warehouse", Category: "warehouse-storage"}},
		},
		Edges: []mdf.Edge{{ID: "e", Source: "s", Target: "w"}},
	}

	resp, body := doJSON(t, app, "POST", "/layout", g)
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Nodes []mdf.Node `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Nodes, 2)
	assert.NotEqual(t, out.Nodes[0].Position.X, out.Nodes[1].Position.X)
}

func TestConnectCheckEndpoint(t *testing.T) {
	app := newApp(newMemStore())

	resp, body := doJSON(t, app, "POST", "/connect/check", map[string]any{
		"source_category": "source",
		"target_category": "destination",
	})
	require.Equal(t, 200, resp.StatusCode)

	var v struct {
		Allowed bool   `json:"allowed"`
		Rule    string `json:"rule"`
	}
	require.NoError(t, json.Unmarshal(body, &v))
	assert.False(t, v.Allowed)
	assert.Equal(t, "source_to_destination", v.Rule)
}

func TestProjectLifecycle(t *testing.T) {
	app := newApp(newMemStore())

	resp, body := doJSON(t, app, "POST", "/projects", map[string]any{
		"name":  "q3 architecture",
		"graph": mdf.Graph{Nodes: []mdf.Node{}, Edges: []mdf.Edge{}},
	})
	require.Equal(t, 201, resp.StatusCode)

	var created mdf.Project
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	t.Run("get", func(t *testing.T) {
		resp, body := doJSON(t, app, "GET", "/projects/"+created.ID, nil)
		require.Equal(t, 200, resp.StatusCode)
		var got mdf.Project
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "q3 architecture", got.Name)
	})

	t.Run("list", func(t *testing.T) {
		resp, body := doJSON(t, app, "GET", "/projects", nil)
		require.Equal(t, 200, resp.StatusCode)
		var list []mdf.Project
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list, 1)
	})

	t.Run("share and fetch snapshot", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/projects/"+created.ID+"/share", nil)
		require.Equal(t, 201, resp.StatusCode)
		var share mdf.Share
		require.NoError(t, json.Unmarshal(body, &share))

		resp, _ = doJSON(t, app, "GET", "/shares/"+share.ID, nil)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("share of a missing project is 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, "POST", "/projects/nope/share", nil)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		resp, _ := doJSON(t, app, "DELETE", "/projects/"+created.ID, nil)
		require.Equal(t, 204, resp.StatusCode)

		resp, _ = doJSON(t, app, "GET", "/projects/"+created.ID, nil)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestMissingLookups(t *testing.T) {
	app := newApp(newMemStore())

	resp, _ := doJSON(t, app, "GET", "/projects/ghost", nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/shares/ghost", nil)
	assert.Equal(t, 404, resp.StatusCode)
}
