package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload of the API error envelope.
type ErrorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Trace   []string `json:"trace,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ResponseJSON writes data as JSON with a custom status code
func ResponseJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusOK, data)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusCreated, data)
}

// returns 204 No Content
func ResponseNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ------------- Error responses -------------

// ResponseError writes {"error":{"code":..,"message":..,"trace":..}}.
func ResponseError(w http.ResponseWriter, code int, message string, trace []string) {
	ResponseJSON(w, code, ErrorEnvelope{Error: ErrorBody{Code: code, Message: message, Trace: trace}})
}
