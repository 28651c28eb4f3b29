package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	repo "woodify/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	//401 ユーザー不明もパスワード違いも同じ
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 セッション切れ
	ErrNoSession = errors.New("no active session")
	//409 送信中にもう一度送られた
	ErrSubmissionInFlight = errors.New("submission already in flight")
	//409 今のステップでは出来ない操作
	ErrInvalidStep = errors.New("operation not allowed in current step")
)

// ValidationError はフィールドごとのエラー（400）
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation error: " + strings.Join(keys, ", ")
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// 1MB = 1,000,000 バイトで表示（上限と同じ単位）
const bytesPerMB = 1_000_000

// SizeLimitError は保存前のサイズ超過（413）
type SizeLimitError struct {
	Bytes int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("record is %.2f MB, exceeds the %.2f MB limit", float64(e.Bytes)/bytesPerMB, float64(e.Limit)/bytesPerMB)
}

func AsSizeLimitError(err error) (*SizeLimitError, bool) {
	var se *SizeLimitError
	ok := errors.As(err, &se)
	return se, ok
}

// storeError はgateway/repoのエラーをHTTPErrorに寄せる
func storeError(err error, op string) error {
	var tooLarge *repo.DocumentTooLargeError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.As(err, &tooLarge):
		return &SizeLimitError{Bytes: tooLarge.Bytes, Limit: repo.MaxDocumentBytes}
	default:
		return NewHTTPError(http.StatusBadGateway, op+" failed")
	}
}
