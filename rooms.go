/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Seednode/wordparty/games/taboo"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

func validCode(code string) bool {
	if len(code) != taboo.CodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(taboo.CodeAlphabet, r) {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

func serveRoomSummary(cfg *Config, reg *taboo.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		securityHeaders(cfg, w)

		code := taboo.NormalizeCode(ps.ByName("code"))
		if !validCode(code) {
			_ = writeJSON(w, http.StatusBadRequest, taboo.ErrInvalidCommand)
			return
		}

		summary, err := reg.Summary(r.Context(), code)
		switch {
		case errors.Is(err, taboo.ErrRoomNotFound):
			_ = writeJSON(w, http.StatusNotFound, taboo.ErrRoomNotFound)
			return
		case err != nil:
			errs <- err
			http.Error(w, "lookup failed", http.StatusServiceUnavailable)
			return
		}

		if err := writeJSON(w, http.StatusOK, summary); err != nil {
			errs <- err
			return
		}

		logf(cfg, "SERVE: Room summary for %s to %s in %s",
			code,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveRoomQR renders a QR code linking to the home page with the room code
// prefilled, for sharing a room across the table.
func serveRoomQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := taboo.NormalizeCode(ps.ByName("code"))
		if !validCode(code) {
			http.Error(w, "invalid room code", http.StatusBadRequest)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		link := url.URL{
			Scheme:   scheme,
			Host:     r.Host,
			Path:     cfg.prefix + "/",
			RawQuery: url.Values{"room": {code}}.Encode(),
		}

		png, err := qrcode.Encode(link.String(), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}
