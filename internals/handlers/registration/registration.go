package registration

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"Registration-Intake/internals/credentials"
	"Registration-Intake/internals/models"
	"Registration-Intake/internals/storage"

	"github.com/rs/zerolog/hlog"
)

const (
	SuccessMessage = "Registration successful!"

	maxBodyBytes  = 1 << 20
	maxFormMemory = 1 << 20
)

// Registrar persists one registration.
type Registrar interface {
	Register(ctx context.Context, rec models.Registration) error
}

// RegisterHandler handles registration form submissions. It logs through the
// request scoped logger installed by hlog.NewHandler.
func RegisterHandler(store Registrar, hasher credentials.Hasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		l := hlog.FromRequest(r).With().Str("component", "registration").Logger()

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		req, err := decodeRequest(r)
		if err != nil {
			l.Debug().Err(err).Msg("Rejected malformed registration request")
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		req.Password, err = hasher.Hash(req.Password)
		if errors.Is(err, credentials.ErrPasswordTooLong) {
			l.Info().Str("username", req.Username).Msg("Rejected password too long to hash")
			http.Error(w, "Password too long", http.StatusBadRequest)
			return
		}
		if err != nil {
			l.Error().Err(err).Msg("Failed to prepare password")
			http.Error(w, "Registration failed", http.StatusInternalServerError)
			return
		}

		err = store.Register(r.Context(), req)
		if err == nil {
			l.Info().Str("username", req.Username).Str("regno", req.RegNo).Msg("Registration stored")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(SuccessMessage))
			return
		}

		switch storage.KindOf(err) {
		case storage.KindConnection:
			l.Error().Err(err).Msg("Database connection failed")
			http.Error(w, "Connection failed: "+cause(err).Error(), http.StatusServiceUnavailable)
		default:
			l.Error().Err(err).Str("username", req.Username).Str("regno", req.RegNo).Msg("Failed to store registration")
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
	}
}

// decodeRequest reads the three registration fields from a JSON body or a form.
// Missing fields are left empty.
func decodeRequest(r *http.Request) (models.Registration, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req models.Registration
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return models.Registration{}, err
		}
		return req, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return models.Registration{}, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return models.Registration{}, err
		}
	}
	return models.Registration{
		Username: r.PostFormValue("username"),
		RegNo:    r.PostFormValue("regno"),
		Password: r.PostFormValue("password"),
	}, nil
}

func cause(err error) error {
	var se *storage.Error
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}
