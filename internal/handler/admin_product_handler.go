package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"woodify/internal/domain/model"
	"woodify/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductSaveResponse struct {
	Product model.Product `json:"product"`
	// 6枚目以降を落としたときの通知
	Notice string `json:"notice,omitempty"`
}

type AdminProductListResponse struct {
	Items   []model.Product `json:"items"`
	Loading bool            `json:"loading"`
	Stale   bool            `json:"stale"`
}

// /admin/products
type AdminProductHandler struct {
	editor  *usecase.ProductEditor
	catalog CatalogReader
}

// DI
func NewAdminProductHandler(editor *usecase.ProductEditor, catalog CatalogReader) *AdminProductHandler {
	return &AdminProductHandler{editor: editor, catalog: catalog}
}

// adminを登録（ガードは呼び出し側のグループに付ける）
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/products", h.listProducts)
	admin.POST("/products/validate", h.validateProduct)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
}

// 公開できない商品も含めて全部返す
func (h *AdminProductHandler) listProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, AdminProductListResponse{
		Items:   h.catalog.Products(c.QueryParam("category")),
		Loading: h.catalog.Loading(),
		Stale:   h.catalog.Err() != nil,
	})
}

func (h *AdminProductHandler) validateProduct(c echo.Context) error {
	draft, files, err := readProductForm(c)
	if err != nil {
		return writeError(c, err)
	}
	added := h.editor.AddImages(draft.ExistingImageCount(), files)
	return c.JSON(http.StatusOK, h.editor.Validate(draft, added.Accepted))
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	return h.save(c, "")
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	return h.save(c, id)
}

func (h *AdminProductHandler) save(c echo.Context, editingID string) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	draft, files, err := readProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	added := h.editor.AddImages(draft.ExistingImageCount(), files)

	p, err := h.editor.Save(c.Request().Context(), actor, draft, added.Accepted, editingID)
	if err != nil {
		return writeError(c, err)
	}

	status := http.StatusOK
	if editingID == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, ProductSaveResponse{Product: p, Notice: added.Notice})
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.editor.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// multipartのフォームを ProductDraft にする。
// 言語別の項目は name_en / name_tr のように送られてくる
func readProductForm(c echo.Context) (usecase.ProductDraft, []usecase.ImageFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return usecase.ProductDraft{}, nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid multipart body")
	}

	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	localized := func(prefix string) model.LocalizedText {
		t := model.LocalizedText{}
		for _, l := range model.SupportedLanguages {
			if v := value(prefix + "_" + string(l)); v != "" {
				t[l] = v
			}
		}
		return t
	}

	draft := usecase.ProductDraft{
		Names:          localized("name"),
		Descriptions:   localized("description"),
		Category:       value("category"),
		Price:          value("price"),
		Stock:          value("stock"),
		Materials:      localized("material"),
		Finishes:       localized("finish"),
		Dimensions:     localized("dimensions"),
		ExistingImages: form.Value["existing_images"],
		Image:          value("image"),
	}
	for _, l := range model.SupportedLanguages {
		if v := value("price_" + string(l)); v != "" {
			if draft.PriceOverrides == nil {
				draft.PriceOverrides = map[model.Language]string{}
			}
			draft.PriceOverrides[l] = v
		}
	}

	files, err := readImageFiles(form.File["images"])
	if err != nil {
		return usecase.ProductDraft{}, nil, err
	}
	return draft, files, nil
}

func readImageFiles(headers []*multipart.FileHeader) ([]usecase.ImageFile, error) {
	files := make([]usecase.ImageFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFileHeader(fh, usecase.MaxAttachmentBytes)
		if err != nil {
			return nil, usecase.NewHTTPError(http.StatusBadRequest, "could not read file")
		}
		if int64(len(data)) > usecase.MaxAttachmentBytes {
			return nil, &usecase.ValidationError{Fields: map[string]string{"images": fh.Filename + " is larger than 5 MB"}}
		}
		files = append(files, usecase.ImageFile{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
	}
	return files, nil
}
