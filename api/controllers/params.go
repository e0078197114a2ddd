package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func customerParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "customer_id"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required")
	}
	return id, nil
}

func goodParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "good_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "good_id must be a positive integer").WithDetails(map[string]any{"good_id": raw})
	}
	return id, nil
}
