package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upb/blog-platform/internal/validation"
)

// maxBodyBytes bounds JSON and form bodies
const maxBodyBytes = 1 << 20

// ErrBadBody is returned when a request body cannot be decoded
var ErrBadBody = errors.New("malformed request body")

// DecodePayload reads a JSON object or form body into a payload. An empty
// body yields an empty payload so required-field rules can report it.
func DecodePayload(w http.ResponseWriter, r *http.Request) (validation.Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
		}
		payload := make(validation.Payload, len(r.PostForm))
		for key := range r.PostForm {
			payload[key] = r.PostForm.Get(key)
		}
		return payload, nil
	}

	payload := validation.Payload{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	return payload, nil
}

// URLParamUUID parses the chi route parameter name as a UUID
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", name, raw)
	}
	return id, nil
}

// PageParam reads the 1-based ?page= query value, defaulting to 1
func PageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
