package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"testforge/internal/app"
	"testforge/internal/pkg/extract"
	"testforge/internal/transport/http/response"
)

type DocumentHandler struct {
	docService *app.DocumentService
}

func NewDocumentHandler(docService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// Upload ingests one or more files from a multipart form. All files go
// in under the same doc_type; the title defaults to each filename. A
// bad file aborts the whole request with nothing ingested from it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files provided")
		return
	}
	docType := c.PostForm("doc_type")
	if docType == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "doc_type is required")
		return
	}
	title := c.PostForm("title")
	if title != "" && len(files) > 1 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title can only be set for a single-file upload")
		return
	}

	results := make([]app.UploadResult, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
			return
		}
		result, err := h.docService.Upload(c.Request.Context(), app.UploadInput{
			Title:    title,
			DocType:  docType,
			Filename: fh.Filename,
			Content:  f,
		})
		f.Close()
		if err != nil {
			var procErr *extract.DocumentProcessingError
			switch {
			case errors.As(err, &procErr):
				response.Error(c, http.StatusUnprocessableEntity, response.CodeDocumentProcessing, procErr.Error())
			case errors.Is(err, app.ErrInvalidInput):
				response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file has no extractable text or missing fields")
			default:
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "document ingestion failed")
			}
			return
		}
		results = append(results, *result)
	}

	response.OK(c, gin.H{"documents": results})
}

func (h *DocumentHandler) ListTitles(c *gin.Context) {
	titles, err := h.docService.ListTitles(c.Query("doc_type"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list titles failed")
		return
	}
	response.OK(c, gin.H{"titles": titles})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	title := c.Query("title")
	docType := c.Query("doc_type")
	err := h.docService.Delete(title, docType)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title and doc_type are required")
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, nil)
}
