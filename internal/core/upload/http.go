package upload

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kurokeita/quotable/internal/platform/apperr"
	"github.com/kurokeita/quotable/internal/platform/constants"
	requestutil "github.com/kurokeita/quotable/internal/platform/request"
	"github.com/kurokeita/quotable/internal/platform/respond"
)

type Handler struct {
	service    *Service
	maxBytes   int64
	writeGuard []func(http.Handler) http.Handler
}

// NewHandler creates a new [Handler]. Bodies above maxBytes are rejected.
func NewHandler(service *Service, maxBytes int64, writeGuard ...func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, maxBytes: maxBytes, writeGuard: writeGuard}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(handler.writeGuard...).Post("/", handler.upload)
}

// upload accepts either a multipart form with the document in the "file"
// part or the document itself as an application/json body.
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	var doc Document

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := handler.decodeMultipart(writer, request, &doc); err != nil {
			respond.Error(writer, request, err)
			return
		}
	} else if err := requestutil.DecodeJSONLimit(writer, request, &doc, handler.maxBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Upload(request.Context(), doc)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

func (handler *Handler) decodeMultipart(writer http.ResponseWriter, request *http.Request, doc *Document) error {
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxBytes)

	if err := request.ParseMultipartForm(constants.MultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.ValidationError("Upload too large")
		}
		return apperr.ValidationError("Malformed multipart form")
	}
	defer request.MultipartForm.RemoveAll()

	file, _, err := request.FormFile(constants.UploadFormField)
	if err != nil {
		return apperr.ValidationError("Missing \"" + constants.UploadFormField + "\" file")
	}
	defer file.Close()

	if err := json.NewDecoder(io.LimitReader(file, handler.maxBytes)).Decode(doc); err != nil {
		return apperr.Unprocessable("The uploaded file is not a valid JSON document")
	}
	return nil
}
