package adaptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"user-admin/internal/usecase"
	"user-admin/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeBody fills dst from a JSON body, or from a form body whose keys are
// the JSON field names. Unknown fields are rejected in both cases.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", usecase.ErrInvalidArgument)
		}
		body, err := formToJSON(r.PostForm)
		if err != nil {
			return err
		}
		return decodeJSON(body, dst)
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", usecase.ErrInvalidArgument)
		}
		if len(body) == 0 {
			body = []byte("{}")
		}
		return decodeJSON(body, dst)
	}
}

func decodeJSON(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w: %w", usecase.ErrInvalidArgument, err)
	}
	return nil
}

// formToJSON maps form values onto the JSON shape of the request DTOs.
// group_ids is the only list field.
func formToJSON(values map[string][]string) ([]byte, error) {
	fields := make(map[string]any, len(values))
	for key, vals := range values {
		if key == "group_ids" {
			ids, ok := utils.ParseIDs(vals)
			if !ok {
				return nil, fmt.Errorf("group_ids must be numeric: %w", usecase.ErrInvalidArgument)
			}
			fields[key] = ids
			continue
		}
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return json.Marshal(fields)
}

// pathID reads a positive numeric URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, ok := utils.ParseID(raw)
	if !ok {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, usecase.ErrInvalidArgument)
	}
	return id, nil
}
