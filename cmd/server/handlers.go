package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xtding233/dmgcalc/internal/build"
	"github.com/xtding233/dmgcalc/internal/service"
)

// request bodies above this size are rejected
const maxBodyBytes = 1 << 20

type errResp struct {
	Err string `json:"err"`
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

// queryParams lists the query keys a GET request may carry, by type.
type queryParams struct {
	floats  []string
	ints    []string
	strings []string
	bools   []string
}

// queryDoc turns GET query parameters into the JSON document the service expects.
func queryDoc(r *http.Request, p queryParams) ([]byte, string) {
	doc := make(map[string]any)
	for _, k := range p.floats {
		v, ok, msg := parseFloat(r, k)
		if msg != "" {
			return nil, msg
		}
		if ok {
			doc[k] = v
		}
	}
	for _, k := range p.ints {
		v, ok, msg := parseInt(r, k)
		if msg != "" {
			return nil, msg
		}
		if ok {
			doc[k] = v
		}
	}
	for _, k := range p.strings {
		if s := r.URL.Query().Get(k); s != "" {
			doc[k] = s
		}
	}
	for _, k := range p.bools {
		if s := r.URL.Query().Get(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, "invalid " + k
			}
			doc[k] = b
		}
	}
	b, _ := json.Marshal(doc)
	return b, ""
}

// requestBody reads a POST body, or builds one from the query for GET.
func requestBody(w http.ResponseWriter, r *http.Request, p queryParams) ([]byte, bool) {
	switch r.Method {
	case http.MethodGet:
		b, msg := queryDoc(r, p)
		if msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return nil, false
		}
		return b, true
	case http.MethodPost:
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		return b, true
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, build.ErrProfileNotFound):
		code = http.StatusNotFound
	case errors.Is(err, build.ErrInvalidProfile), errors.Is(err, service.ErrBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, code, errResp{Err: err.Error()})
}

type handlers struct {
	svc *service.Service
}

func newMux(svc *service.Service) *http.ServeMux {
	h := &handlers{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", h.evaluate)
	mux.HandleFunc("/optimize", h.optimize)
	mux.HandleFunc("/convert", h.convert)
	mux.HandleFunc("/profiles", h.profiles)
	mux.HandleFunc("/simulate", h.simulate)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// GET /evaluate?profile=name, or POST {"profile", "overrides"} / {"config"}
func (h *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	body, ok := requestBody(w, r, queryParams{strings: []string{"profile"}})
	if !ok {
		return
	}
	resp, err := h.svc.Evaluate(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /optimize?totalPoints=&step=&minCrit=
func (h *handlers) optimize(w http.ResponseWriter, r *http.Request) {
	body, ok := requestBody(w, r, queryParams{
		ints:   []string{"totalPoints", "step"},
		floats: []string{"minCrit"},
	})
	if !ok {
		return
	}
	plan, err := h.svc.Optimize(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// GET /convert?kind=crit&raw=3648 or &percent=50, optional pursuit=true
func (h *handlers) convert(w http.ResponseWriter, r *http.Request) {
	body, ok := requestBody(w, r, queryParams{
		floats:  []string{"raw", "percent"},
		strings: []string{"kind"},
		bools:   []string{"pursuit"},
	})
	if !ok {
		return
	}
	resp, err := h.svc.Convert(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) profiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	list, err := h.svc.Profiles()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []build.Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": list})
}

// GET /simulate?profile=&hits=&trials=&seed=
func (h *handlers) simulate(w http.ResponseWriter, r *http.Request) {
	body, ok := requestBody(w, r, queryParams{
		ints:    []string{"hits", "trials", "seed"},
		strings: []string{"profile"},
	})
	if !ok {
		return
	}
	resp, err := h.svc.Simulate(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
