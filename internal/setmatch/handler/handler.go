// Package handler exposes the set comparison pipeline over HTTP.
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"setmatch-service/internal/config"
	"setmatch-service/internal/setmatch/model"
	"setmatch-service/internal/setmatch/service"
	"setmatch-service/internal/validation"
)

// CompareSets accepts a multipart upload ("file", optional "themes") and
// streams newline-delimited JSON events: metadata, then batches, with error
// events for batches that failed.
func CompareSets(svc *service.Service, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported", nil)
			return
		}

		inv, filename, err := readUpload(r, cfg.MaxUploadBytes())
		if err != nil {
			respondErr(w, log, err)
			return
		}
		themes := service.SplitThemes(r.FormValue("themes"))

		st, err := svc.Compare(r.Context(), inv, themes)
		if err != nil {
			respondErr(w, log, err)
			return
		}
		defer st.Close()

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Accel-Buffering", "no")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)

		enc := json.NewEncoder(w)
		events := 0
		for ev := range st.Events() {
			if err := enc.Encode(ev); err != nil {
				log.Info().Err(err).Int("events", events).Msg("client went away")
				return
			}
			flusher.Flush()
			events++
		}

		log.Info().
			Str("file", filename).
			Int("user_parts", len(inv)).
			Strs("themes", themes).
			Int("candidates", st.Total()).
			Int("batch_errors", st.BatchErrors()).
			Str("state", st.State().String()).
			Dur("elapsed", time.Since(start)).
			Msg("compare done")
	}
}

type missingPartsRequest struct {
	SetNum    string             `json:"set_num" validate:"required,max=64"`
	UserParts []model.PartRecord `json:"user_parts" validate:"dive"`
}

// partLine is one user_parts entry as sent; an omitted color is unknown, not
// black, and an omitted quantity is 1.
type partLine struct {
	PartNum  string `json:"part_num"`
	ColorID  *int   `json:"color_id"`
	Quantity *int   `json:"quantity"`
}

type missingPartsBody struct {
	SetNum    string     `json:"set_num"`
	UserParts []partLine `json:"user_parts"`
}

func (b missingPartsBody) request() missingPartsRequest {
	req := missingPartsRequest{SetNum: strings.TrimSpace(b.SetNum), UserParts: make([]model.PartRecord, len(b.UserParts))}
	for i, p := range b.UserParts {
		rec := model.PartRecord{PartNum: strings.TrimSpace(p.PartNum), ColorID: model.UnknownColor, Quantity: 1}
		if p.ColorID != nil {
			rec.ColorID = *p.ColorID
		}
		if p.Quantity != nil {
			rec.Quantity = *p.Quantity
		}
		req.UserParts[i] = rec
	}
	return req
}

// MissingParts answers with a CSV of what the user still needs for one set.
// The body is either JSON {set_num, user_parts} or a multipart upload with
// "set_num" and "file".
func MissingParts(svc *service.Service, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)

		var req missingPartsRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			inv, _, err := readUpload(r, cfg.MaxUploadBytes())
			if err != nil {
				respondErr(w, log, err)
				return
			}
			req = missingPartsRequest{SetNum: strings.TrimSpace(r.FormValue("set_num")), UserParts: inv}
		} else {
			var body missingPartsBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), nil)
				return
			}
			req = body.request()
		}
		if err := validation.Struct(req); err != nil {
			respondErr(w, log, err)
			return
		}

		report, err := svc.MissingParts(r.Context(), req.SetNum, model.UserInventory(req.UserParts))
		if err != nil {
			respondErr(w, log, err)
			return
		}
		body, err := missingCSV(report)
		if err != nil {
			respondErr(w, log, err)
			return
		}
		log.Info().Str("set_num", req.SetNum).Int("missing", len(report)).Msg("missing parts")
		writeCSV(w, fmt.Sprintf("missing-%s.csv", req.SetNum), body)
	}
}

// InventoryCSV exports the latest bill of materials of {setNum}.
func InventoryCSV(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		setNum := chi.URLParam(r, "setNum")

		inv, err := svc.SetInventory(r.Context(), setNum)
		if err != nil {
			respondErr(w, log, err)
			return
		}
		body, err := inventoryCSV(inv)
		if err != nil {
			respondErr(w, log, err)
			return
		}
		writeCSV(w, fmt.Sprintf("inventory-%s.csv", setNum), body)
	}
}

type generateRequest struct {
	SetNum string `json:"set_num" validate:"required,max=64"`
}

type setInfo struct {
	SetNum  string `json:"set_num"`
	Name    string `json:"name"`
	Year    int    `json:"year"`
	ThemeID int    `json:"theme_id"`
}

type generateResponse struct {
	Success  bool    `json:"success"`
	CSV      string  `json:"csv"`
	NumParts int     `json:"num_parts"`
	SetInfo  setInfo `json:"set_info"`
}

// GenerateInventoryCSV is the JSON flavour of InventoryCSV: the CSV travels
// inside a JSON envelope together with the set metadata.
func GenerateInventoryCSV(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), nil)
			return
		}
		if err := validation.Struct(req); err != nil {
			respondErr(w, log, err)
			return
		}
		inv, err := svc.SetInventory(r.Context(), req.SetNum)
		if err != nil {
			respondErr(w, log, err)
			return
		}
		body, err := inventoryCSV(inv)
		if err != nil {
			respondErr(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{
			Success:  true,
			CSV:      string(body),
			NumParts: len(inv.Lines),
			SetInfo: setInfo{
				SetNum:  inv.Set.SetNum,
				Name:    inv.Set.Name,
				Year:    inv.Set.Year,
				ThemeID: inv.Set.ThemeID,
			},
		})
	}
}

// CountSets reports how many catalog sets fall within ?themes=.
func CountSets(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.CountSets(r.Context(), service.SplitThemes(r.URL.Query().Get("themes")))
		if err != nil {
			respondErr(w, requestLogger(logger, r), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}

func Themes(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		themes, err := svc.Themes(r.Context())
		if err != nil {
			respondErr(w, requestLogger(logger, r), err)
			return
		}
		writeJSON(w, http.StatusOK, themes)
	}
}

// ParseInventory parses an upload without comparing it, so a client can
// preview what was understood.
func ParseInventory(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, _, err := readUpload(r, cfg.MaxUploadBytes())
		if err != nil {
			respondErr(w, requestLogger(logger, r), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":  len(inv),
			"keys":  len(inv.Keys()),
			"parts": inv,
		})
	}
}
