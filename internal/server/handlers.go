package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pkgpulse/pkg/dataset"
	"github.com/matzehuels/pkgpulse/pkg/errors"
	"github.com/matzehuels/pkgpulse/pkg/registry"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListPackages returns dataset records, optionally sorted and limited:
// GET /api/packages?sort=total_installs&limit=50
func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load dataset"))
		return
	}

	records := make([]dataset.PackageInfo, 0, len(d))
	for _, info := range d {
		records = append(records, info)
	}

	switch sortKey := r.URL.Query().Get("sort"); sortKey {
	case "", "name":
		sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	case "total_installs":
		sort.Slice(records, func(i, j int) bool { return records[i].TotalInstalls > records[j].TotalInstalls })
	case "last_scraped":
		sort.Slice(records, func(i, j int) bool { return records[i].LastScraped < records[j].LastScraped })
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown sort key %q", sortKey))
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", limitStr))
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(records),
		"packages": records,
	})
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	d, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load dataset"))
		return
	}

	info, ok := d[name]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodePackageNotFound, "package %q not in dataset", name))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	reg, err := registry.Load(s.registryPath)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// errorBody is the JSON error envelope returned by the API.
type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

// statusFor maps error codes to HTTP statuses. Unknown codes read as 500.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRegistry, errors.ErrCodeInvalidDataset, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePackageNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
