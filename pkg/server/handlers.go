package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/mindtower/pkg/editor"
	"github.com/matzehuels/mindtower/pkg/errors"
	"github.com/matzehuels/mindtower/pkg/graph"
	"github.com/matzehuels/mindtower/pkg/mindmap"
)

const maxBodyBytes = 64 << 10

// =============================================================================
// Request and response bodies
// =============================================================================

type labelRequest struct {
	Label string `json:"label" validate:"max=512"`
}

type patchRequest struct {
	Label       *string `json:"label" validate:"omitnil,min=1,max=512"`
	Description *string `json:"description" validate:"omitnil,max=4096"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date" validate:"omitnil,max=64"`
}

type positionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
	Z *float64 `json:"z" validate:"required"`
}

type mutationResponse struct {
	ID       string        `json:"id,omitempty"`
	Selected *string       `json:"selected,omitempty"`
	MindMap  graph.MindMap `json:"mindmap"`
	Warnings []string      `json:"warnings,omitempty"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) getMindMap(w http.ResponseWriter, r *http.Request) {
	m := s.store.Snapshot()
	etag := `"` + graph.Fingerprint(m) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromMindMap(m))
}

func (s *Server) addRoot(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Label == "" {
		req.Label = editor.DefaultRootLabel
	}
	id, err := s.store.AddRoot(req.Label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, mutationResponse{ID: id})
}

func (s *Server) addChild(w http.ResponseWriter, r *http.Request) {
	parent, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	var req labelRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Label == "" {
		req.Label = editor.DefaultChildLabel
	}
	id, err := s.store.AddChild(parent, req.Label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, mutationResponse{ID: id})
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	var req patchRequest
	if !s.decode(w, r, &req) {
		return
	}

	var warnings []string
	if req.Label != nil {
		if err := s.store.UpdateLabel(id, *req.Label); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	patch := mindmap.DetailsPatch{Description: req.Description, Status: req.Status, DueDate: req.DueDate}
	if !patch.Empty() {
		if err := s.store.UpdateDetails(id, patch); err != nil {
			if !errors.IsWarning(err) {
				s.writeError(w, r, err)
				return
			}
			warnings = append(warnings, errors.UserMessage(err))
		}
	}
	s.respond(w, http.StatusOK, mutationResponse{ID: id, Warnings: warnings})
}

func (s *Server) updatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	var req positionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.UpdatePosition(id, mindmap.Position{X: *req.X, Y: *req.Y, Z: *req.Z}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mutationResponse{ID: id})
}

func (s *Server) release(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	if err := s.store.EndDrag(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mutationResponse{ID: id})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteNode(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mutationResponse{ID: id})
}

func (s *Server) selectNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	selected, err := s.store.ToggleSelect(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, mutationResponse{ID: id, Selected: &selected})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	s.respond(w, http.StatusOK, mutationResponse{})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) nodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateNodeID(id); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return id, true
}

// decode reads an optional JSON body into dst and validates it. An empty
// body leaves dst at its zero value.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, r, validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid request: %s", strings.Join(msgs, "; "))
}

func (s *Server) respond(w http.ResponseWriter, status int, resp mutationResponse) {
	resp.MindMap = graph.FromMindMap(s.store.Snapshot())
	writeJSON(w, status, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidNodeID, errors.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case errors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRootExists, errors.ErrCodeNoSelection:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
