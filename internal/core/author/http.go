package author

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/kurokeita/quotable/internal/platform/request"
	"github.com/kurokeita/quotable/internal/platform/respond"
	"github.com/kurokeita/quotable/internal/platform/validate"
	"github.com/kurokeita/quotable/pkg/pagination"
)

type Handler struct {
	service    *Service
	writeGuard []func(http.Handler) http.Handler
}

// NewHandler creates a new [Handler]. writeGuard wraps the mutating routes.
func NewHandler(service *Service, writeGuard ...func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, writeGuard: writeGuard}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.listAuthors)
	router.Get("/slug/{slug}", handler.getAuthorBySlug)
	router.Get("/{id}", handler.getAuthor)

	// Protected
	router.Group(func(protected chi.Router) {
		protected.Use(handler.writeGuard...)

		protected.Post("/", handler.createAuthor)
		protected.Patch("/{id}", handler.updateAuthor)
		protected.Delete("/{id}", handler.deleteAuthor)
	})
}

func (handler *Handler) listAuthors(writer http.ResponseWriter, request *http.Request) {
	params, err := parseListParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.ListAuthors(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Data, page.Metadata)
}

func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	author, err := handler.service.GetAuthor(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

func (handler *Handler) getAuthorBySlug(writer http.ResponseWriter, request *http.Request) {
	author, err := handler.service.GetAuthorBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

func (handler *Handler) createAuthor(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.CreateAuthor(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, author)
}

func (handler *Handler) updateAuthor(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.UpdateAuthor(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

func (handler *Handler) deleteAuthor(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteAuthor(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Deleted(writer)
}

func parseListParams(request *http.Request) (ListParams, error) {
	page, err := pagination.FromRequest(request)
	if err != nil {
		var fieldErr *pagination.FieldError
		if errors.As(err, &fieldErr) {
			return ListParams{}, validate.FieldError(fieldErr.Field, fieldErr.Message)
		}
		return ListParams{}, err
	}

	query := request.URL.Query()
	validator := &validate.Validator{}

	sortBy, err := ParseSortField(query.Get(FieldSortBy))
	if err != nil {
		validator.Custom(FieldSortBy, true, err.Error())
	}

	order, err := pagination.ParseOrder(query.Get(FieldOrder))
	if err != nil {
		validator.Custom(FieldOrder, true, err.Error())
	}

	if err := validator.Err(); err != nil {
		return ListParams{}, err
	}

	return ListParams{Page: page, SortBy: sortBy, Order: order}, nil
}
