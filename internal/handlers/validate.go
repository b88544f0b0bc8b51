package handlers

import (
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}
