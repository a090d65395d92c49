package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-study-sync/internal/logger"
	"github.com/MKhiriev/go-study-sync/internal/utils"
)

// HashHeader carries the hex HMAC-SHA256 of the request body.
const HashHeader = "HashSHA256"

// checkHash rejects requests whose body does not match the HashSHA256
// header. It is disabled when no hash key is configured; requests without a
// body are not checked.
func (h *Handler) checkHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.hashKey == "" || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.checkHash").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if len(body) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		got := r.Header.Get(HashHeader)
		want := utils.HashString(string(body), h.hashKey)
		if !utils.EqualHash(got, want) {
			log.Error().Str("func", "*Handler.checkHash").
				Str("hash from request", got).
				Str("hashed body", want).
				Msg("hashes are not equal")
			http.Error(w, ErrIntegrityCheckFailed.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
