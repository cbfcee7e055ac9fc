package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hanko-field/configurator/internal/nodemap"
	"github.com/hanko-field/configurator/internal/paramset"
	"github.com/hanko-field/configurator/internal/platform/httpx"
	"github.com/hanko-field/configurator/internal/services"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// ConfiguratorHandlers exposes the mapping, validation and colour endpoints.
type ConfiguratorHandlers struct {
	svc     services.ConfiguratorService
	maxBody int64
}

// NewConfiguratorHandlers constructs the configurator handler set. A non-positive maxBody
// falls back to the default request size limit.
func NewConfiguratorHandlers(svc services.ConfiguratorService, maxBody int64) *ConfiguratorHandlers {
	return &ConfiguratorHandlers{svc: svc, maxBody: maxBody}
}

// Routes registers the configurator endpoints.
func (h *ConfiguratorHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/products/{productId}/mappings", h.compile)
	r.Get("/products/{productId}/rgb-groups", h.rgbGroups)
	r.Post("/validations", h.validate)
	r.Post("/colors:default", h.defaultColor)
}

type parameterSetRequest struct {
	Parameters []paramset.Record `json:"parameters"`
}

type defaultColorRequest struct {
	DefaultID string               `json:"default_id" validate:"max=64"`
	Options   []colorOptionRequest `json:"options" validate:"required,min=1,dive"`
}

type colorOptionRequest struct {
	ID      string `json:"id" validate:"required,max=64"`
	Name    string `json:"name" validate:"max=128"`
	Hex     string `json:"hex" validate:"omitempty,hexcolor"`
	InStock bool   `json:"in_stock"`
}

func (h *ConfiguratorHandlers) compile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.svc == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "configurator service not available", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product_id is required", http.StatusBadRequest))
		return
	}

	params, ok := h.decodeParameterSet(w, r, productID)
	if !ok {
		return
	}

	result, err := h.svc.Compile(ctx, services.CompileCommand{ProductID: productID, Parameters: params})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCompilePayload(result))
}

func (h *ConfiguratorHandlers) rgbGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.svc == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "configurator service not available", http.StatusServiceUnavailable))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	groups, err := h.svc.RGBGroups(ctx, productID)
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, rgbGroupsResponse{
		ProductID: productID,
		Groups:    buildRGBGroupPayloads(groups),
	})
}

func (h *ConfiguratorHandlers) validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.svc == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "configurator service not available", http.StatusServiceUnavailable))
		return
	}

	params, ok := h.decodeParameterSet(w, r, "")
	if !ok {
		return
	}

	report, err := h.svc.Validate(ctx, services.ValidateCommand{Parameters: params})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildReportPayload(report))
}

func (h *ConfiguratorHandlers) defaultColor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.svc == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "configurator service not available", http.StatusServiceUnavailable))
		return
	}

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req defaultColorRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if err := requestValidator.Struct(req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "colour options failed validation", http.StatusBadRequest).
			WithFieldErrors(paramset.FieldErrors(err)))
		return
	}

	options := make([]services.ColorOption, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, services.ColorOption{
			ID:      strings.TrimSpace(opt.ID),
			Name:    strings.TrimSpace(opt.Name),
			Hex:     strings.TrimSpace(opt.Hex),
			InStock: opt.InStock,
		})
	}

	choice, err := h.svc.DefaultColor(ctx, services.DefaultColorCommand{DefaultID: req.DefaultID, Options: options})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, defaultColorResponse{
		Option: colorOptionPayload{
			ID:      choice.Option.ID,
			Name:    choice.Option.Name,
			Hex:     choice.Option.Hex,
			InStock: choice.Option.InStock,
		},
		Rule: choice.Rule,
	})
}

func (h *ConfiguratorHandlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := readLimitedBody(r, h.maxBody)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(r.Context(), w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return nil, false
	}
	return body, true
}

func (h *ConfiguratorHandlers) decodeParameterSet(w http.ResponseWriter, r *http.Request, productID string) ([]services.Parameter, bool) {
	ctx := r.Context()
	body, ok := h.readBody(w, r)
	if !ok {
		return nil, false
	}

	var req parameterSetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return nil, false
	}
	if len(req.Parameters) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "parameters are required", http.StatusBadRequest))
		return nil, false
	}

	doc := paramset.Document{ProductID: productID, Parameters: req.Parameters}
	if err := doc.Validate(); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "parameters failed validation", http.StatusBadRequest).
			WithFieldErrors(paramset.FieldErrors(err)))
		return nil, false
	}
	return doc.DomainParameters(), true
}

func writeConfiguratorError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, services.ErrConfiguratorInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request failed validation", http.StatusBadRequest))
	case errors.Is(err, services.ErrConfiguratorNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "no compiled mapping for product", http.StatusNotFound))
	case errors.Is(err, services.ErrConfiguratorUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "configurator service unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process request", http.StatusInternalServerError))
	}
}

type compileResponse struct {
	RunID         string                         `json:"run_id"`
	ProductID     string                         `json:"product_id"`
	CompiledAt    string                         `json:"compiled_at"`
	Parameters    map[string]parameterPayload    `json:"parameters"`
	NodeMappings  map[string]mappingEntryPayload `json:"node_mappings"`
	ColorMappings map[string]colorMappingPayload `json:"color_mappings"`
	RGBGroups     []rgbGroupPayload              `json:"rgb_groups"`
	Skipped       []skippedPayload               `json:"skipped"`
	Fragments     map[string]string              `json:"fragments,omitempty"`
}

type mappingEntryPayload struct {
	Path         string `json:"path"`
	LeafParam    string `json:"leaf_param"`
	ControlType  string `json:"control_type"`
	DefaultValue string `json:"default_value"`
}

type boundsPayload struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`
}

type optionPayload struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

type parameterPayload struct {
	NodeID       string          `json:"node_id"`
	Identifier   string          `json:"identifier"`
	DisplayName  string          `json:"display_name"`
	ControlType  string          `json:"control_type"`
	DefaultValue string          `json:"default_value"`
	Path         string          `json:"path"`
	LeafParam    string          `json:"leaf_param"`
	Section      string          `json:"section,omitempty"`
	GroupTag     string          `json:"group_tag,omitempty"`
	Channel      string          `json:"channel,omitempty"`
	Bounds       *boundsPayload  `json:"bounds,omitempty"`
	Checked      *bool           `json:"checked,omitempty"`
	Options      []optionPayload `json:"options,omitempty"`
}

type channelMappingPayload struct {
	Identifier string              `json:"identifier"`
	Entry      mappingEntryPayload `json:"entry"`
}

type colorMappingPayload struct {
	Kind        string                           `json:"kind"`
	Identifier  string                           `json:"identifier,omitempty"`
	Entry       *mappingEntryPayload             `json:"entry,omitempty"`
	GroupID     string                           `json:"group_id,omitempty"`
	DisplayName string                           `json:"display_name,omitempty"`
	Visible     bool                             `json:"visible"`
	Channels    map[string]channelMappingPayload `json:"channels,omitempty"`
}

type collisionPayload struct {
	Channel  string `json:"channel"`
	Replaced string `json:"replaced"`
	By       string `json:"by"`
}

type rgbGroupPayload struct {
	GroupID     string             `json:"group_id"`
	DisplayName string             `json:"display_name"`
	Visible     bool               `json:"visible"`
	Components  map[string]string  `json:"components"`
	Collisions  []collisionPayload `json:"collisions,omitempty"`
}

type rgbGroupsResponse struct {
	ProductID string            `json:"product_id"`
	Groups    []rgbGroupPayload `json:"groups"`
}

type skippedPayload struct {
	NodeID string `json:"node_id"`
	Reason string `json:"reason"`
}

type issuePayload struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	NodeID   string `json:"node_id,omitempty"`
	Message  string `json:"message"`
}

type reportPayload struct {
	Valid       bool           `json:"valid"`
	Errors      []string       `json:"errors"`
	Warnings    []string       `json:"warnings"`
	Suggestions []string       `json:"suggestions"`
	Issues      []issuePayload `json:"issues"`
}

type colorOptionPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hex     string `json:"hex,omitempty"`
	InStock bool   `json:"in_stock"`
}

type defaultColorResponse struct {
	Option colorOptionPayload `json:"option"`
	Rule   string             `json:"rule"`
}

func buildCompilePayload(result services.CompileResult) compileResponse {
	m := result.Mapping
	payload := compileResponse{
		RunID:         result.RunID,
		ProductID:     result.ProductID,
		CompiledAt:    result.CompiledAt.Format(time.RFC3339),
		Parameters:    make(map[string]parameterPayload, len(m.Parameters)),
		NodeMappings:  make(map[string]mappingEntryPayload, len(m.NodeMappings)),
		ColorMappings: make(map[string]colorMappingPayload, len(m.ColorMappings)),
		RGBGroups:     buildRGBGroupPayloads(m.RGBGroups),
		Skipped:       make([]skippedPayload, 0, len(result.Skipped)),
		Fragments:     result.Fragments,
	}
	for key, info := range m.Parameters {
		payload.Parameters[key] = buildParameterPayload(info)
	}
	for key, entry := range m.NodeMappings {
		payload.NodeMappings[key] = buildMappingEntryPayload(entry)
	}
	for key, cm := range m.ColorMappings {
		payload.ColorMappings[key] = buildColorMappingPayload(cm)
	}
	for _, s := range result.Skipped {
		payload.Skipped = append(payload.Skipped, skippedPayload{NodeID: s.NodeID, Reason: s.Reason})
	}
	return payload
}

func buildMappingEntryPayload(entry nodemap.MappingEntry) mappingEntryPayload {
	return mappingEntryPayload{
		Path:         entry.Path,
		LeafParam:    entry.LeafParam,
		ControlType:  string(entry.ControlType),
		DefaultValue: entry.DefaultValue,
	}
}

func buildParameterPayload(info nodemap.ParameterInfo) parameterPayload {
	payload := parameterPayload{
		NodeID:       info.NodeID,
		Identifier:   info.Identifier,
		DisplayName:  info.DisplayName,
		ControlType:  string(info.ControlType),
		DefaultValue: info.DefaultValue,
		Path:         info.Path,
		LeafParam:    info.LeafParam,
		Section:      info.Section,
		GroupTag:     info.GroupTag,
		Channel:      string(info.Channel),
	}
	switch c := info.Control.(type) {
	case nodemap.NumberControl:
		payload.Bounds = &boundsPayload{Min: c.Bounds.Min, Max: c.Bounds.Max, Step: c.Bounds.Step}
	case nodemap.CheckboxControl:
		checked := c.Checked
		payload.Checked = &checked
	case nodemap.DropdownControl:
		for _, opt := range c.Options {
			payload.Options = append(payload.Options, optionPayload{Value: opt.Value, Label: opt.Label, Selected: opt.Selected})
		}
	}
	return payload
}

func buildColorMappingPayload(cm nodemap.ColorMapping) colorMappingPayload {
	switch v := cm.(type) {
	case nodemap.SingleColorMapping:
		entry := buildMappingEntryPayload(v.Entry)
		return colorMappingPayload{Kind: "single", Identifier: v.Identifier, Entry: &entry, Visible: true}
	case nodemap.RGBColorMapping:
		channels := make(map[string]channelMappingPayload, len(v.Channels))
		for ch, mapping := range v.Channels {
			channels[string(ch)] = channelMappingPayload{Identifier: mapping.Identifier, Entry: buildMappingEntryPayload(mapping.Entry)}
		}
		return colorMappingPayload{
			Kind:        "rgb",
			GroupID:     v.GroupID,
			DisplayName: v.DisplayName,
			Visible:     v.Visible(),
			Channels:    channels,
		}
	}
	return colorMappingPayload{}
}

func buildRGBGroupPayloads(groups map[string]services.RGBGroup) []rgbGroupPayload {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]rgbGroupPayload, 0, len(ids))
	for _, id := range ids {
		g := groups[id]
		components := make(map[string]string, len(g.Components))
		for ch, p := range g.Components {
			components[string(ch)] = p.NodeID
		}
		payload := rgbGroupPayload{
			GroupID:     g.GroupID,
			DisplayName: g.DisplayName,
			Visible:     g.Visible(),
			Components:  components,
		}
		for _, c := range g.Collisions {
			payload.Collisions = append(payload.Collisions, collisionPayload{Channel: string(c.Channel), Replaced: c.Replaced, By: c.By})
		}
		out = append(out, payload)
	}
	return out
}

func buildReportPayload(report services.ValidationReport) reportPayload {
	payload := reportPayload{
		Valid:       report.Valid,
		Errors:      nonNilStrings(report.Errors),
		Warnings:    nonNilStrings(report.Warnings),
		Suggestions: nonNilStrings(report.Suggestions),
		Issues:      make([]issuePayload, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		payload.Issues = append(payload.Issues, issuePayload{
			Severity: issue.Severity.String(),
			Code:     issue.Code,
			NodeID:   issue.NodeID,
			Message:  issue.Message,
		})
	}
	return payload
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
