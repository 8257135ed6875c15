package domain

import (
	"net/http"

	"github.com/chilisites/postsapi/shared/status"
)

var (
	ErrValidation = status.Statusf(http.StatusBadRequest, "missing or invalid fields")
	ErrNotFound   = status.Statusf(http.StatusNotFound, "post not found")
	// Duplicates are reported as 400 to match the public API contract.
	ErrConflict = status.Statusf(http.StatusBadRequest, "slug/identifier already exists")
)
