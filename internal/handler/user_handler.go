package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/wikiswipe/internal/middleware"
	"github.com/hitoshi/wikiswipe/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Get は指定IDのユーザーを取得する。
	Get(ctx context.Context, userID string) (*model.User, error)
	// SetLanguages はユーザーの言語設定を丸ごと置き換える。
	SetLanguages(ctx context.Context, userID string, languages []string) (*model.User, error)
}

// UserHandler はユーザー設定のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// updateLanguagesRequest は言語設定更新リクエストのボディ。
type updateLanguagesRequest struct {
	Languages []string `json:"languages"`
}

// GetUser は現在のユーザー情報を返す。
// GET /api/user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateLanguages は現在のユーザーの言語設定を置き換える。
// PATCH /api/user/languages
func (h *UserHandler) UpdateLanguages(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req updateLanguagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	user, err := h.service.SetLanguages(r.Context(), userID, req.Languages)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
