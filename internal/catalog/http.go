package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pricewatch/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20

	defaultListLimit = 100
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/prices", s.list)
	r.Post("/prices/create", s.create)
	r.Get("/prices/{id}", s.get)
	r.Put("/prices/{id}", s.update)
	r.Delete("/prices/{id}", s.remove)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad offset", nil)
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad limit", nil)
		return
	}

	recs, err := s.Store.List(r.Context(), offset, limit)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list prices failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, recs)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get price failed", zap.Error(err), zap.Int64("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "price not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, rec)
}

type createReq struct {
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// create inserts unconditionally. Unlike the ingest path it performs no
// FindByName check, so a duplicate name produces a second record.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.Name == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "name required", nil)
		return
	}
	if req.Cost < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "cost must be non-negative", nil)
		return
	}

	rec, err := s.Store.Insert(r.Context(), req.Name, req.Cost)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("create price failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if patch.Cost != nil && *patch.Cost < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "cost must be non-negative", nil)
		return
	}

	rec, err := s.Store.Update(r.Context(), id, patch)
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "price not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("update price failed", zap.Error(err), zap.Int64("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := s.Store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "price not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("delete price failed", zap.Error(err), zap.Int64("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", nil)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("not a non-negative integer")
	}
	return v, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("trailing data after JSON body")
	}
	return nil
}
