package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandfall/strata/pkg/errors"
	"github.com/sandfall/strata/pkg/pipeline"
	"github.com/sandfall/strata/pkg/preset"
	"github.com/sandfall/strata/pkg/preset/store"
	"github.com/sandfall/strata/pkg/world"
)

// maxBodyBytes bounds request bodies. Preset documents are small; anything
// near this limit is a mistake or an attack.
const maxBodyBytes = 1 << 20

// validateResponse is the body of POST /api/validate.
type validateResponse struct {
	OK       bool             `json:"ok"`
	Warnings []preset.Warning `json:"warnings,omitempty"`
	Error    *apiError        `json:"error,omitempty"`
}

// generateRequest is the body of POST /api/generate.
type generateRequest struct {
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Seed   uint64          `json:"seed,omitempty"`
	Preset json.RawMessage `json:"preset"`
}

// generateResponse is the body of POST /api/generate. Cells is a sparse
// grid dump.
type generateResponse struct {
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Seed     uint64           `json:"seed"`
	Passes   int              `json:"passes"`
	Cells    world.Dump       `json:"cells"`
	Warnings []preset.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := preset.ParseDocument(body)
	if err != nil {
		writeError(w, err)
		return
	}

	_, outcome := preset.Validate(doc, s.table)
	resp := validateResponse{OK: outcome.OK, Warnings: outcome.Warnings}
	if outcome.Err != nil {
		resp.Error = newAPIError(outcome.Err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeJSONMalformed, err, "generate request"))
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width*req.Height > s.maxGridCells {
		writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"grid %dx%d outside supported range", req.Width, req.Height))
		return
	}

	doc, err := preset.ParseDocument(req.Preset)
	if err != nil {
		writeError(w, err)
		return
	}
	p, outcome := preset.Validate(doc, s.table)
	if !outcome.OK {
		writeError(w, outcome.Err)
		return
	}

	mem := world.NewMemWithTable(req.Width, req.Height, s.table)
	runner := pipeline.NewRunner(mem, p, pipeline.Options{
		Seed:   req.Seed,
		Logger: s.logger,
	})
	stats, err := runner.Run(r.Context())
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "generation run"))
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Width:    req.Width,
		Height:   req.Height,
		Seed:     req.Seed,
		Passes:   stats.PassesDone,
		Cells:    world.DumpOf(mem),
		Warnings: outcome.Warnings,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context(), chi.URLParam(r, "folder"))
	if err != nil {
		writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Stored documents must at least parse; deeper validation is the
	// validate endpoint's job, and editors save drafts.
	if _, err := preset.ParseDocument(body); err != nil {
		writeError(w, err)
		return
	}

	rec := &store.Record{
		Folder: chi.URLParam(r, "folder"),
		Name:   chi.URLParam(r, "name"),
		Data:   json.RawMessage(body),
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", maxBodyBytes)
	}
	return body, nil
}
