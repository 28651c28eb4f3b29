package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"woodify/internal/domain/model"
	"woodify/internal/i18n"
	"woodify/internal/usecase"

	"github.com/labstack/echo/v4"
)

type QuoteResponse struct {
	Quote   *model.QuoteRequest `json:"quote"`
	Title   string              `json:"title"`
	Message string              `json:"message"`
}

// POST /quotes。フォームのステップを順に進めてから送信する
type QuoteHandler struct {
	uc    *usecase.QuoteUsecase
	store *i18n.Store
}

// DI
func NewQuoteHandler(uc *usecase.QuoteUsecase, store *i18n.Store) *QuoteHandler {
	return &QuoteHandler{uc: uc, store: store}
}

func (h *QuoteHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/quotes", h.create)
}

func (h *QuoteHandler) create(c echo.Context) error {
	ctx := c.Request().Context()
	lang := requestLanguage(c, h.store)

	mode := model.QuoteMode(strings.TrimSpace(c.FormValue("mode")))
	if mode == "" {
		mode = model.QuoteModeSpecial
	}

	wf, err := h.uc.NewWorkflow(ctx, mode, c.FormValue("product_id"))
	if err != nil {
		return writeError(c, err)
	}

	contact := usecase.ContactInput{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
	}
	if err := wf.SubmitIdentity(ctx, contact); err != nil {
		return writeStepError(c, err, wf.Step())
	}

	switch mode {
	case model.QuoteModeProduct:
		if err := wf.SubmitProductDetails(c.FormValue("location"), c.FormValue("description")); err != nil {
			return writeStepError(c, err, wf.Step())
		}
	case model.QuoteModeSpecial:
		att, err := readAttachment(c, "file")
		if err != nil {
			return writeStepError(c, err, wf.Step())
		}
		if err := wf.SubmitSpecialDetails(c.FormValue("description"), att); err != nil {
			return writeStepError(c, err, wf.Step())
		}
		if t := strings.TrimSpace(c.FormValue("timeline")); t != "" {
			if err := wf.SelectTimeline(model.Timeline(t)); err != nil {
				return writeStepError(c, err, wf.Step())
			}
		}
	}

	rec, err := h.uc.Submit(ctx, wf)
	if err != nil {
		if he, ok := usecase.AsHTTPError(err); ok && he.Status >= http.StatusInternalServerError {
			// 利用者向けの文言に差し替え
			return c.JSON(he.Status, ErrorResponse{Error: h.store.T(lang, "q_error")})
		}
		return writeStepError(c, err, wf.Step())
	}

	return c.JSON(http.StatusCreated, QuoteResponse{
		Quote:   rec,
		Title:   h.store.T(lang, "q_success_title"),
		Message: h.store.T(lang, "q_success_text"),
	})
}

func writeStepError(c echo.Context, err error, step usecase.QuoteStep) error {
	if ve, ok := usecase.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:       "validation error",
			FieldErrors: ve.Fields,
			Step:        step.String(),
		})
	}
	return writeError(c, err)
}

// readAttachment は任意の添付を読む。無ければnil
func readAttachment(c echo.Context, field string) (*usecase.Attachment, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid multipart body")
	}
	if fh.Size > usecase.MaxAttachmentBytes {
		return nil, &usecase.ValidationError{Fields: map[string]string{field: "file is larger than 5 MB"}}
	}
	data, err := readFileHeader(fh, usecase.MaxAttachmentBytes)
	if err != nil {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "could not read file")
	}
	return &usecase.Attachment{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

// 上限+1バイトまで読む（超えたかどうかは呼び出し側で判定）
func readFileHeader(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}
