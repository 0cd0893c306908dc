// Package account はユーザー登録と設定管理のドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/wikiswipe/internal/model"
	"github.com/hitoshi/wikiswipe/internal/repository"
)

// maxUsernameLength はユーザー名の最大長。
const maxUsernameLength = 64

// minPasswordLength はパスワードの最小長。
const minPasswordLength = 4

// LanguageValidator は言語コード検証のインターフェース。
type LanguageValidator interface {
	ValidateLanguageCode(lang string) error
}

// Service はユーザー登録と設定管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	validator LanguageValidator
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, validator LanguageValidator, logger *slog.Logger) *Service {
	return &Service{
		userRepo:  userRepo,
		validator: validator,
		logger:    logger,
	}
}

// Register は新規ユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存する。言語設定は空で開始する。
// ユーザー名が既に使用されている場合はUsernameTakenエラーを返す。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.NewInvalidRequestError("ユーザー名が空です")
	}
	if len(username) > maxUsernameLength {
		return nil, model.NewInvalidRequestError("ユーザー名が長すぎます")
	}
	if len(password) < minPasswordLength {
		return nil, model.NewInvalidRequestError("パスワードが短すぎます")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Languages:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)
	return user, nil
}

// Get は指定IDのユーザーを取得する。
// 見つからない場合はUserNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// SetLanguages はユーザーの言語設定を丸ごと置き換える（マージしない）。
// 各言語コードは形式検証され、無効なコードはInvalidLanguageエラーを返す。
// 空リストの指定も有効（記事取得が空になるだけで、エラーではない）。
func (s *Service) SetLanguages(ctx context.Context, userID string, languages []string) (*model.User, error) {
	if languages == nil {
		languages = []string{}
	}
	for _, lang := range languages {
		if err := s.validator.ValidateLanguageCode(lang); err != nil {
			return nil, model.NewInvalidLanguageError(lang)
		}
	}

	user, err := s.userRepo.UpdateLanguages(ctx, userID, languages)
	if err != nil {
		return nil, fmt.Errorf("言語設定の更新に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	s.logger.Info("言語設定を更新しました",
		slog.String("user_id", userID),
		slog.Int("language_count", len(languages)),
	)
	return user, nil
}
