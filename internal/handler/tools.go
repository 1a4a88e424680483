package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bqmcp/bqmcp/internal/models"
	"github.com/bqmcp/bqmcp/internal/tools"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// ToolsHandler exposes the tool table over REST
type ToolsHandler struct {
	d *tools.Dispatcher
}

func NewToolsHandler(d *tools.Dispatcher) *ToolsHandler {
	return &ToolsHandler{d: d}
}

// List handles GET /api/v1/tools
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := make([]models.ToolInfo, 0, len(h.d.Tools()))
	for _, t := range h.d.Tools() {
		params := make([]models.ParamInfo, 0, len(t.Params))
		for _, p := range t.Params {
			params = append(params, models.ParamInfo{
				Name:        p.Name,
				Type:        p.Type,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		infos = append(infos, models.ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			Params:      params,
		})
	}
	models.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"tools":  infos,
		"count":  len(infos),
	})
}

// Call handles POST /api/v1/tools/{name}. Tool failures come back as
// 200 with the classified message in output.
func (h *ToolsHandler) Call(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.d.Lookup(name); !ok {
		models.WriteError(w, http.StatusNotFound, "unknown tool: "+name)
		return
	}

	var req models.ToolCallRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	out, err := h.d.Call(r.Context(), name, tools.Args(req.Arguments))
	if err != nil {
		log.Error().Err(err).Str("tool", name).Msg("tool dispatch failed")
		models.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.ToolCallResponse{
		Status: "success",
		Tool:   name,
		Output: out,
	})
}
