package apiserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ppgtool/ppg/internal/ids"
)

// randomToken mints an unpredictable bearer token the same way the kernel
// mints a session id: a random UUID, not one of the short opaque ids
// (those are meant to be guessable-length and human-typeable).
func randomToken() (string, error) {
	return uuid.NewString(), nil
}

// LoadOrCreateToken returns the project's static bearer token, generating
// and persisting a new random one under paths.APITokenPath() if none
// exists yet (spec's "register" step for the HTTPS façade — pairing and
// rotation flows beyond this are out of scope).
func LoadOrCreateToken(paths ids.Paths) (string, error) {
	if data, err := os.ReadFile(paths.APITokenPath()); err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(paths.APITokenPath(), []byte(token+"\n"), 0600); err != nil {
		return "", err
	}
	return token, nil
}

// RevokeToken deletes the token file, forcing the next LoadOrCreateToken
// call to mint a fresh one.
func RevokeToken(paths ids.Paths) error {
	if err := os.Remove(paths.APITokenPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
