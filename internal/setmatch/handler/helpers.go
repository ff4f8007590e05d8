package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog"
	"setmatch-service/internal/middleware"
	"setmatch-service/internal/setmatch/model"
	"setmatch-service/internal/setmatch/parser"
	"setmatch-service/internal/setmatch/service"
	"setmatch-service/internal/validation"
)

const unknownName = "Unknown"

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		pe  *parser.ParseError
		nf  *service.NotFoundError
		ve  validation.Errors
		mbe *http.MaxBytesError
		cse *service.CandidateSelectionError
		bse *service.BatchScoringError
	)
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &pe), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &cse), errors.As(err, &bse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := statusFor(err)
	var details any
	var ve validation.Errors
	if errors.As(err, &ve) {
		details = []validation.FieldError(ve)
	}
	if status >= 500 {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeError(w, status, err.Error(), details)
}

func requestLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("rid", rid).Logger()
	}
	return logger
}

// readUpload parses the multipart "file" field into an inventory.
func readUpload(r *http.Request, maxBytes int64) (model.UserInventory, string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, "", err
		}
		return nil, "", &parser.ParseError{Err: fmt.Errorf("bad multipart form: %w", err)}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &parser.ParseError{Err: fmt.Errorf("missing file: %w", err)}
	}
	defer file.Close()
	inv, err := parser.ParseReader(file, header.Filename)
	return inv, header.Filename, err
}

func orUnknown(s string) string {
	if s == "" {
		return unknownName
	}
	return s
}

func spareFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func inventoryCSV(inv model.SetInventory) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{"part_num", "color_id", "quantity", "is_spare", "part_name", "color_name", "color_rgb"})
	for _, l := range inv.Lines {
		_ = cw.Write([]string{
			l.PartNum,
			strconv.Itoa(l.ColorID),
			strconv.Itoa(l.Quantity),
			spareFlag(l.IsSpare),
			orUnknown(l.PartName),
			orUnknown(l.ColorName),
			l.ColorRGB,
		})
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func missingCSV(report model.MissingPartsReport) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{"part_num", "color_id", "quantity", "part_name", "color_name"})
	for _, m := range report {
		_ = cw.Write([]string{
			m.PartNum,
			strconv.Itoa(m.ColorID),
			strconv.Itoa(m.MissingQty),
			orUnknown(m.PartName),
			orUnknown(m.ColorName),
		})
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
