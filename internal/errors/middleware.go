package errors

import (
	"net/http"
)

// RequestIDHeader carries the request ID on both requests and responses.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware makes sure every request carries an ID: the client's
// own if it sent one, a generated one otherwise. The ID is echoed on the
// response and attached to the context for logging and error payloads.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// Handler is an http.HandlerFunc that reports failures instead of writing
// them itself.
type Handler func(w http.ResponseWriter, r *http.Request) error

// HandleFunc adapts a Handler to http.HandlerFunc, routing any returned
// error through WriteError so every endpoint shares one error shape.
func HandleFunc(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, GetRequestID(r.Context()), err)
		}
	}
}
