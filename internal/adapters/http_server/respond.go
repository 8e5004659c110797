package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"unihaven/internal/domain"
)

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type statusMessage struct {
	Status string `json:"status"`
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrLookup):
		writeProblem(w, http.StatusBadRequest, "Address Lookup Failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("malformed JSON body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return domain.Invalid("%s", strings.Join(msgs, "; "))
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("%s must be a positive number", name)
	}
	return id, nil
}

// ---- query string helpers; an absent parameter yields nil ----

func queryInt64(r *http.Request, key string) (*int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, domain.Invalid("%s must be an integer", key)
	}
	return &n, nil
}

func queryInt(r *http.Request, key string) (*int, error) {
	n, err := queryInt64(r, key)
	if n == nil || err != nil {
		return nil, err
	}
	v := int(*n)
	return &v, nil
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, domain.Invalid("%s must be a number", key)
	}
	return &f, nil
}

func queryDay(r *http.Request, key string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := domain.ParseDay(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryTime accepts a calendar date or an RFC 3339 timestamp. A bare end
// date covers the whole day.
func queryTime(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := domain.ParseDay(v)
	if err != nil {
		return nil, domain.Invalid("%s must be YYYY-MM-DD or RFC 3339", key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func pageQuery(r *http.Request) (domain.PageQuery, error) {
	var pg domain.PageQuery
	p, err := queryInt(r, "page")
	if err != nil {
		return pg, err
	}
	if p != nil {
		pg.Page = *p
	}
	sz, err := queryInt(r, "page_size")
	if err != nil {
		return pg, err
	}
	if sz != nil {
		pg.Size = *sz
	}
	return pg, nil
}
