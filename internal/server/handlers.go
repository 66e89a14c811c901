package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/meshskel/pkg/buildinfo"
	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/forest"
	skelio "github.com/matzehuels/meshskel/pkg/io"
	"github.com/matzehuels/meshskel/pkg/observability"
	"github.com/matzehuels/meshskel/pkg/pipeline"
	"github.com/matzehuels/meshskel/pkg/render/nodelink"
)

// GET /healthz
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.responseJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"forests": s.store.Len(),
		"build":   buildinfo.Get(),
	})
}

// POST /v1/forests?smooth=&root=
func (s *Server) createForest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.responseJSON(w, r, http.StatusRequestEntityTooLarge,
				errors.New(errors.ErrCodeInvalidInput, "body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.responseError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(body) == 0 {
		s.responseError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty body"))
		return
	}

	opts := pipeline.Options{Source: "upload", Input: body}
	q := r.URL.Query()
	if v := q.Get("smooth"); v != "" {
		if opts.UseSmoothVertices, err = strconv.ParseBool(v); err != nil {
			s.responseError(w, r, errors.New(errors.ErrCodeInvalidInput, "smooth: %q is not a boolean", v))
			return
		}
	}
	if v := q.Get("root"); v != "" {
		root, err := strconv.Atoi(v)
		if err != nil || root < 0 {
			s.responseError(w, r, errors.New(errors.ErrCodeInvalidRoot, "root: %q is not a vertex index", v))
			return
		}
		opts.Root = &root
	}

	in, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.responseError(w, r, err)
		return
	}
	f, err := s.runner.Build(r.Context(), in)
	if err != nil {
		s.responseError(w, r, err)
		return
	}
	e := s.store.Add(f, skelio.Summarize(f))
	s.logger.Info("forest stored", "id", e.ID, "components", f.Len())

	w.Header().Set("Location", "/v1/forests/"+e.ID)
	s.responseJSON(w, r, http.StatusCreated, e)
}

// GET /v1/forests/{id}
func (s *Server) getForest(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.responseJSON(w, r, http.StatusOK, e)
}

// DELETE /v1/forests/{id}
func (s *Server) deleteForest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		s.responseError(w, r, errors.New(errors.ErrCodeNotFound, "forest %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/forests/{id}/components/{n}/{format}?scale=&reduced=
func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		s.responseError(w, r, errors.New(errors.ErrCodeComponentNotFound, "component %q is not an index", chi.URLParam(r, "n")))
		return
	}

	format := chi.URLParam(r, "format")
	opts := pipeline.Options{Scale: pipeline.DefaultScale}
	q := r.URL.Query()
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			s.responseError(w, r, errors.New(errors.ErrCodeInvalidScaling, "scale: %q is not a number", v))
			return
		}
	}
	if err := errors.ValidateScaling(opts.Scale); err != nil {
		s.responseError(w, r, err)
		return
	}
	opts.Reduced = q.Get("reduced") == "true"

	var data []byte
	err = e.With(func(f *forest.Forest) error {
		if n < 0 || n >= f.Len() {
			return errors.New(errors.ErrCodeComponentNotFound, "component %d not found (forest has %d)", n, f.Len())
		}
		sk := f.Skeleton(n)
		switch format {
		case pipeline.FormatSWC:
			data, err = pipeline.RenderSWC(sk, n, opts)
			return err
		case pipeline.FormatDOT, pipeline.FormatSVG:
			dot := nodelink.ToDOT(sk, nodelink.Options{Reduced: opts.Reduced, Name: fmt.Sprintf("component-%d", n)})
			if format == pipeline.FormatDOT {
				data = []byte(dot)
				return nil
			}
			data, err = nodelink.RenderSVG(r.Context(), dot)
			return err
		}
		return errors.New(errors.ErrCodeUnsupported, "component format %q not supported", format)
	})
	if err != nil {
		s.responseError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="component-%d.%s"`, n, format))
	_, _ = io.Copy(w, bytes.NewReader(data))
}

var contentTypes = map[string]string{
	pipeline.FormatSWC: "text/plain; charset=utf-8",
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
}

// entry resolves the {id} parameter, writing a 404 when it is unknown.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	id := chi.URLParam(r, "id")
	e, ok := s.store.Get(id)
	if !ok {
		s.responseError(w, r, errors.New(errors.ErrCodeNotFound, "forest %s not found", id))
	}
	return e, ok
}

// responseError writes err with the status its code maps to.
func (s *Server) responseError(w http.ResponseWriter, r *http.Request, err error) {
	s.responseJSON(w, r, statusFor(err), err)
}

// responseJSON writes v as JSON. Errors are wrapped as
// {"error": {"code": ..., "message": ...}}.
func (s *Server) responseJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err, ok := v.(error); ok {
		if code >= http.StatusInternalServerError {
			s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
			observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		}
		errCode := errors.GetCode(err)
		if errCode == "" {
			errCode = errors.ErrCodeInternal
		}
		v = map[string]any{"error": map[string]string{
			"code":    string(errCode),
			"message": errors.UserMessage(err),
		}}
	}
	data, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		data = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"encode response"}}`)
	}
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	if errors.IsInput(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeComponentNotFound, errors.ErrCodeUnsupported:
		return http.StatusNotFound
	case errors.ErrCodeNoBridge:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
