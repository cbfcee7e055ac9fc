package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanko-field/configurator/internal/services"
)

const keycaseBody = `{
  "parameters": [
    {"node_id": "sleutelhoes-CTRL-height", "section": "Dimensions", "raw_fragment": "<input type=\"number\" id=\"sleutelhoes-CTRL-height\" min=\"10\" max=\"80\" value=\"40\">"},
    {"node_id": "a-colorr", "display_name": "Body", "group_tag": "rgb-1", "channel_tag": "R", "raw_fragment": "<input type=\"color\" id=\"a-colorr\">"},
    {"node_id": "a-colorg", "group_tag": "rgb-1", "channel_tag": "G", "raw_fragment": "<input type=\"color\" id=\"a-colorg\">"},
    {"node_id": "finish", "raw_fragment": "<select id=\"lid-finish\"><option value=\"matte\">Matte</option><option value=\"gloss\" selected>Gloss</option></select>"},
    {"node_id": "orphan"}
  ]
}`

func newTestConfiguratorRouter(t *testing.T, maxBody int64) http.Handler {
	t.Helper()
	svc, err := services.NewConfiguratorService(services.ConfiguratorServiceDeps{
		Clock:       func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "01TESTRUN" },
	})
	require.NoError(t, err)
	h := NewConfiguratorHandlers(svc, maxBody)
	return NewRouter(WithConfiguratorRoutes(h.Routes))
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
}

func TestConfiguratorHandlers_Compile(t *testing.T) {
	router := newTestConfiguratorRouter(t, 0)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/products/keycase-01/mappings", keycaseBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp compileResponse
	decodeBody(t, rec, &resp)

	assert.Equal(t, "run_01testrun", resp.RunID)
	assert.Equal(t, "keycase-01", resp.ProductID)
	assert.Equal(t, "2024-05-01T12:00:00Z", resp.CompiledAt)
	assert.Len(t, resp.Parameters, 4)

	entry, ok := resp.NodeMappings["sleutelhoes_CTRL_height"]
	require.True(t, ok)
	assert.Equal(t, mappingEntryPayload{Path: "/sleutelhoes/CTRL", LeafParam: "height", ControlType: "number", DefaultValue: "40"}, entry)

	height := resp.Parameters["sleutelhoes-CTRL-height"]
	require.NotNil(t, height.Bounds)
	require.NotNil(t, height.Bounds.Max)
	assert.Equal(t, 80.0, *height.Bounds.Max)

	finish := resp.Parameters["finish"]
	assert.Equal(t, "dropdown", finish.ControlType)
	assert.Equal(t, "gloss", finish.DefaultValue)
	require.Len(t, finish.Options, 2)
	assert.True(t, finish.Options[1].Selected)

	rgb, ok := resp.ColorMappings["rgb-1"]
	require.True(t, ok)
	assert.Equal(t, "rgb", rgb.Kind)
	assert.Equal(t, "Body", rgb.DisplayName)
	assert.True(t, rgb.Visible)
	assert.Len(t, rgb.Channels, 2)

	require.Len(t, resp.RGBGroups, 1)
	assert.Equal(t, map[string]string{"r": "a-colorr", "g": "a-colorg"}, resp.RGBGroups[0].Components)

	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "orphan", resp.Skipped[0].NodeID)
}

func TestConfiguratorHandlers_CompileRejectsInvalidRecords(t *testing.T) {
	router := newTestConfiguratorRouter(t, 0)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/products/p/mappings",
		`{"parameters":[{"node_id":"a","channel_tag":"alpha"},{"node_id":"b","min":5,"max":1}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "invalid_request", body.Error)
	assert.Equal(t, "channeltag", body.Fields["Document.Parameters[0].ChannelTag"])
	assert.Equal(t, "gtefield=Min", body.Fields["Document.Parameters[1].Max"])
}

func TestConfiguratorHandlers_BodyErrors(t *testing.T) {
	router := newTestConfiguratorRouter(t, 64)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "empty", body: "  ", status: http.StatusBadRequest, code: "invalid_request"},
		{name: "malformed", body: "{", status: http.StatusBadRequest, code: "invalid_request"},
		{name: "no parameters", body: `{"parameters":[]}`, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "too large", body: keycaseBody, status: http.StatusRequestEntityTooLarge, code: "payload_too_large"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/products/p/mappings", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			var body map[string]any
			decodeBody(t, rec, &body)
			assert.Equal(t, tc.code, body["error"])
		})
	}
}

func TestConfiguratorHandlers_RGBGroups(t *testing.T) {
	router := newTestConfiguratorRouter(t, 0)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/keycase-01/rgb-groups", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/products/keycase-01/mappings", keycaseBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/products/keycase-01/rgb-groups", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rgbGroupsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "keycase-01", resp.ProductID)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "rgb-1", resp.Groups[0].GroupID)
	assert.Equal(t, "Body", resp.Groups[0].DisplayName)
}

func TestConfiguratorHandlers_Validate(t *testing.T) {
	router := newTestConfiguratorRouter(t, 0)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/validations", keycaseBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reportPayload
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Valid)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], `parameter "orphan"`)
	assert.NotNil(t, resp.Warnings)

	var sawError bool
	for _, issue := range resp.Issues {
		if issue.Severity == "error" {
			sawError = true
			assert.Equal(t, "missing_fragment", issue.Code)
			assert.Equal(t, "orphan", issue.NodeID)
		}
	}
	assert.True(t, sawError)
}

func TestConfiguratorHandlers_DefaultColor(t *testing.T) {
	router := newTestConfiguratorRouter(t, 0)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/colors:default",
		`{"options":[{"id":"red","hex":"#ff0000"},{"id":"navy","name":"Navy","hex":"#000080","in_stock":true}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp defaultColorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "navy", resp.Option.ID)
	assert.Equal(t, services.ColorRuleInStock, resp.Rule)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/colors:default", `{"options":[{"id":"red","hex":"crimson"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "hexcolor", body.Fields["defaultColorRequest.Options[0].Hex"])

	rec = doRequest(t, router, http.MethodPost, "/api/v1/colors:default", `{"options":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfiguratorHandlers_ServiceUnavailable(t *testing.T) {
	h := NewConfiguratorHandlers(nil, 0)
	router := NewRouter(WithConfiguratorRoutes(h.Routes))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/validations", keycaseBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
