package quote

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/kurokeita/quotable/internal/platform/request"
	"github.com/kurokeita/quotable/internal/platform/respond"
	"github.com/kurokeita/quotable/internal/platform/validate"
	"github.com/kurokeita/quotable/pkg/convert"
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
	router.Get("/", handler.indexQuotes)
	router.Get("/random", handler.randomQuotes)
	router.Get("/{id}", handler.getQuote)

	// Protected
	router.Group(func(protected chi.Router) {
		protected.Use(handler.writeGuard...)

		protected.Post("/", handler.createQuote)
		protected.Patch("/{id}", handler.updateQuote)
		protected.Delete("/{id}", handler.deleteQuote)
	})
}

func (handler *Handler) indexQuotes(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	validator := &validate.Validator{}

	filter := parseFilter(query, validator)

	sortBy, err := ParseSortField(query.Get(FieldSortBy))
	if err != nil {
		validator.Custom(FieldSortBy, true, err.Error())
	}
	order, err := pagination.ParseOrder(query.Get(FieldOrder))
	if err != nil {
		validator.Custom(FieldOrder, true, err.Error())
	}

	page, err := pagination.FromRequest(request)
	if err != nil {
		var fieldErr *pagination.FieldError
		if errors.As(err, &fieldErr) {
			validator.Custom(fieldErr.Field, true, fieldErr.Message)
		}
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.IndexQuotes(request.Context(), IndexParams{
		Filter: filter,
		Page:   page,
		SortBy: sortBy,
		Order:  order,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Data, result.Metadata)
}

// randomQuotes answers with one quote (or null) when no limit is given and
// with a list otherwise.
func (handler *Handler) randomQuotes(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	validator := &validate.Validator{}

	filter := parseFilter(query, validator)

	limit, err := convert.OptionalInt(query.Get(FieldLimit))
	if err != nil {
		validator.Custom(FieldLimit, true, "Must be an integer")
	} else if limit != nil {
		validator.Range(FieldLimit, *limit, 1, MaxRandomLimit)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if limit == nil {
		quote, err := handler.service.RandomQuote(request.Context(), filter)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, quote)
		return
	}

	quotes, err := handler.service.RandomQuotes(request.Context(), RandomParams{Filter: filter, Limit: *limit})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, quotes)
}

func (handler *Handler) getQuote(writer http.ResponseWriter, request *http.Request) {
	quote, err := handler.service.GetQuote(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, quote)
}

func (handler *Handler) createQuote(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	quote, err := handler.service.CreateQuote(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, quote)
}

func (handler *Handler) updateQuote(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	quote, err := handler.service.UpdateQuote(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, quote)
}

func (handler *Handler) deleteQuote(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteQuote(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Deleted(writer)
}

// parseFilter reads the shared filter parameters, recording problems on validator.
func parseFilter(query url.Values, validator *validate.Validator) Filter {
	filter := Filter{
		Author: query.Get(FieldAuthor),
		Query:  query.Get(FieldQuery),
	}

	filter.MinLength = parseLength(query, FieldMinLength, validator)
	filter.MaxLength = parseLength(query, FieldMaxLength, validator)

	if filter.MinLength != nil && filter.MaxLength != nil {
		validator.Custom(FieldMaxLength, *filter.MaxLength < *filter.MinLength, "Must be greater than or equal to minLength")
	}

	tags, err := ParseTagExpression(query.Get(FieldTags))
	if err != nil {
		validator.Custom(FieldTags, true, err.Error())
	}
	filter.Tags = tags

	return filter
}

func parseLength(query url.Values, field string, validator *validate.Validator) *int {
	value, err := convert.OptionalInt(query.Get(field))
	if err != nil || (value != nil && *value < 0) {
		validator.Custom(field, true, "Must be an integer >= 0")
		return nil
	}
	return value
}
