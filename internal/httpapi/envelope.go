package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prabasiva/greport/pkg/logger"
)

// errorBody is §7 / §4.7's error envelope: {"error": {"code", "message"}}.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// dataBody is §4.7's singleton response envelope: {"data": <object>}.
type dataBody struct {
	Data any `json:"data"`
}

// Meta is the pagination block every list endpoint's envelope carries
// (§4.7): page, per_page, total, total_pages.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// listBody is §4.7's list response envelope: {"data": [...], "meta": {...}}.
type listBody struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

const (
	defaultPerPage = 30
	maxPerPage     = 100
)

// pagination resolves the page/per_page query parameters to their §4.7
// defaults and bounds (page=1, per_page=30, max per_page=100).
func pagination(r *http.Request) (page, perPage int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage = queryInt(r, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// paginateSlice slices items to one page and builds the accompanying Meta,
// implementing §8's pagination law (concatenating every page, in the
// underlying stable order, reproduces the full list).
func paginateSlice[T any](items []T, page, perPage int) ([]T, Meta) {
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start >= total {
		return []T{}, Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return items[start:end], Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData writes §4.7's singleton envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataBody{Data: data})
}

// writeList writes §4.7's paginated list envelope.
func writeList(w http.ResponseWriter, data any, meta Meta) {
	writeJSON(w, http.StatusOK, listBody{Data: data, Meta: meta})
}

// writeError writes §7's error envelope and logs the failure, mirroring
// the teacher's handleError (infrastructure/httputil/handler.go) but
// keyed on our closed Kind taxonomy rather than a type switch over
// distinct error types.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	e := classify(err)
	if log != nil {
		log.WithField("request_id", requestIDFrom(r.Context())).
			WithField("code", string(e.Kind)).
			WithError(err).
			Warn("request failed")
	}
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(e.RetryAfter.Seconds())))
	}
	body := errorBody{}
	body.Error.Code = string(e.Kind)
	body.Error.Message = e.Message
	writeJSON(w, e.Status, body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return validationErr("invalid request body: " + err.Error())
	}
	return nil
}
