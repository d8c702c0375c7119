package http

import (
	"mime"
	"net/http"

	"activity-feed/internal/handler/http/respond"
)

// maxURILength bounds the request target.
const maxURILength = 2048

// InputValidation rejects oversized request targets and bodies that are
// not JSON.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.RequestURI()) > maxURILength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			if hasBody(r) && !isJSON(r.Header.Get("Content-Type")) {
				respond.JSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "content type must be application/json"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}
