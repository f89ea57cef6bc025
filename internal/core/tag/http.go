package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/kurokeita/quotable/internal/platform/request"
	"github.com/kurokeita/quotable/internal/platform/respond"
	"github.com/kurokeita/quotable/internal/platform/validate"
	"github.com/kurokeita/quotable/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listTags)
	router.Get("/{id}", handler.getTag)
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	sortBy, err := ParseSortField(query.Get(FieldSortBy))
	if err != nil {
		respond.Error(writer, request, validate.FieldError(FieldSortBy, err.Error()))
		return
	}

	order, err := pagination.ParseOrder(query.Get(FieldOrder))
	if err != nil {
		respond.Error(writer, request, validate.FieldError(FieldOrder, err.Error()))
		return
	}

	tags, err := handler.service.ListTags(request.Context(), ListParams{SortBy: sortBy, Order: order})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tag, err := handler.service.GetTag(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}
