package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kbukum/asr-server/errors"
)

// writeError sends err in the standard error envelope from code that runs
// outside gin.
func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(err.ToResponse())
}
