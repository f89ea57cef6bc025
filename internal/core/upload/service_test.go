package upload_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/core/author"
	"github.com/kurokeita/quotable/internal/core/quote"
	"github.com/kurokeita/quotable/internal/core/upload"
)

const (
	senecaID      = "0192d3a4-0000-7000-8000-000000000001"
	senecaShortID = "sen0000001"
)

type fakeAuthors struct {
	takenSlugs map[string]bool
	bySlug     map[string]*author.Author
	ids        map[string]bool
	lookups    int
}

func newFakeAuthors() *fakeAuthors {
	return &fakeAuthors{
		takenSlugs: map[string]bool{"seneca": true},
		bySlug:     map[string]*author.Author{"seneca": {ID: senecaID, ShortID: senecaShortID, Slug: "seneca"}},
		ids:        map[string]bool{senecaID: true},
	}
}

func (f *fakeAuthors) BulkUpsert(_ context.Context, authors []*author.Author) ([]*author.Author, error) {
	var inserted []*author.Author
	for _, a := range authors {
		if f.takenSlugs[a.Slug] {
			continue
		}
		f.takenSlugs[a.Slug] = true
		f.bySlug[a.Slug] = a
		f.ids[a.ID] = true
		inserted = append(inserted, a)
	}
	return inserted, nil
}

func (f *fakeAuthors) FindBySlugs(_ context.Context, slugs []string) ([]*author.Author, error) {
	f.lookups++
	var found []*author.Author
	for _, s := range slugs {
		if a, ok := f.bySlug[s]; ok {
			found = append(found, a)
		}
	}
	return found, nil
}

func (f *fakeAuthors) FindByShortIDs(_ context.Context, shortIDs []string) ([]*author.Author, error) {
	var found []*author.Author
	for _, id := range shortIDs {
		for _, a := range f.bySlug {
			if a.ShortID == id {
				found = append(found, a)
			}
		}
	}
	return found, nil
}

func (f *fakeAuthors) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var existing []string
	for _, id := range ids {
		if f.ids[id] {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

type fakeQuotes struct {
	contents map[string]bool
	batches  int
}

func (f *fakeQuotes) BulkUpsert(_ context.Context, quotes []*quote.Quote) ([]*quote.Quote, error) {
	f.batches++
	var inserted []*quote.Quote
	for _, q := range quotes {
		if f.contents[q.Content] {
			continue
		}
		f.contents[q.Content] = true
		inserted = append(inserted, q)
	}
	return inserted, nil
}

type fakeTags struct {
	synced map[string][]string
}

func (f *fakeTags) BulkSync(_ context.Context, tagsByQuote map[string][]string) (int, error) {
	for id, names := range tagsByQuote {
		f.synced[id] = names
	}
	return len(tagsByQuote), nil
}

type passthroughTx struct{ runs int }

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	p.runs++
	return fn(ctx)
}

type fixture struct {
	authors *fakeAuthors
	quotes  *fakeQuotes
	tags    *fakeTags
	tx      *passthroughTx
	service *upload.Service
}

func newFixture(chunkSize int) *fixture {
	f := &fixture{
		authors: newFakeAuthors(),
		quotes:  &fakeQuotes{contents: map[string]bool{"Already here.": true}},
		tags:    &fakeTags{synced: map[string][]string{}},
		tx:      &passthroughTx{},
	}
	f.service = upload.NewService(f.authors, f.quotes, f.tags, f.tx, chunkSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func TestService_Upload_SkipsUnresolvableAuthor(t *testing.T) {
	f := newFixture(500)

	result, err := f.service.Upload(context.Background(), upload.Document{
		Quotes: []upload.QuoteItem{
			{Content: "One", Author: "Seneca", Tags: quote.TagList{"life"}},
			{Content: "Two", AuthorID: senecaID},
			{Content: "Three", Author: "nobody-knows"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Quotes.Input)
	assert.Equal(t, 2, result.Quotes.Created)
	assert.Equal(t, 1, result.Quotes.Skipped)
	assert.Equal(t, []upload.QuoteItem{{Content: "Three", Author: "nobody-knows"}}, result.Quotes.SkippedData)
	assert.Len(t, f.tags.synced, 1)
	assert.Equal(t, 1, f.tx.runs)
}

func TestService_Upload_AuthorIDAcceptsShortID(t *testing.T) {
	tests := []struct {
		name        string
		authorID    string
		wantCreated int
	}{
		{"uuid", senecaID, 1},
		{"short_id", senecaShortID, 1},
		{"padded_short_id", "  " + senecaShortID + " ", 1},
		{"unknown_short_id", "zzz0000000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(500)

			result, err := f.service.Upload(context.Background(), upload.Document{
				Quotes: []upload.QuoteItem{{Content: "Luck is what happens when preparation meets opportunity.", AuthorID: tt.authorID}},
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, result.Quotes.Created)
			assert.Equal(t, 1-tt.wantCreated, result.Quotes.Skipped)
		})
	}
}

func TestService_Upload_ClassifiesEverySkip(t *testing.T) {
	f := newFixture(2)

	result, err := f.service.Upload(context.Background(), upload.Document{
		Authors: []upload.AuthorItem{
			{Name: "Epictetus"},
			{Name: "SENECA"},
			{Name: "  "},
			{Name: "Epictetus"},
		},
		Quotes: []upload.QuoteItem{
			{Content: "New from a new author.", Author: "epictetus"},
			{Content: "Already here.", Author: "seneca"},
			{Content: "", Author: "seneca"},
			{Content: "Bad id.", AuthorID: "not-a-uuid"},
			{Content: "Dup.", Author: "seneca"},
			{Content: "Dup.", Author: "seneca"},
		},
	})

	require.NoError(t, err)

	assert.Equal(t, upload.BulkResult[upload.AuthorItem]{
		Input:       4,
		Created:     1,
		Skipped:     3,
		SkippedData: []upload.AuthorItem{{Name: "SENECA"}, {Name: "  "}, {Name: "Epictetus"}},
	}, result.Authors)

	assert.Equal(t, 6, result.Quotes.Input)
	assert.Equal(t, 2, result.Quotes.Created)
	assert.Equal(t, 4, result.Quotes.Skipped)
	assert.Equal(t, 2, f.quotes.batches, "a chunk without insertable quotes writes nothing")
}

func TestService_Upload_EmptyDocument(t *testing.T) {
	result, err := newFixture(500).service.Upload(context.Background(), upload.Document{})

	require.NoError(t, err)
	assert.Equal(t, upload.BulkResult[upload.AuthorItem]{SkippedData: []upload.AuthorItem{}}, result.Authors)
	assert.Equal(t, upload.BulkResult[upload.QuoteItem]{SkippedData: []upload.QuoteItem{}}, result.Quotes)
}

const document = `{"authors":[{"name":"Epictetus"}],"quotes":[{"content":"First say to yourself what you would be.","author":"epictetus","tags":"will, action"}]}`

func newRouter(f *fixture, maxBytes int64) http.Handler {
	router := chi.NewRouter()
	router.Route("/upload", upload.NewHandler(f.service, maxBytes).RegisterRoutes)
	return router
}

func TestHandler_Upload(t *testing.T) {
	multipartBody := func(t *testing.T, field, content string) (*bytes.Buffer, string) {
		t.Helper()
		body := &bytes.Buffer{}
		form := multipart.NewWriter(body)
		part, err := form.CreateFormFile(field, "quotes.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, form.Close())
		return body, form.FormDataContentType()
	}

	tests := []struct {
		name        string
		build       func(t *testing.T) (io.Reader, string)
		maxBytes    int64
		wantStatus  int
		wantCreated int
	}{
		{
			name:        "raw_json",
			build:       func(*testing.T) (io.Reader, string) { return strings.NewReader(document), "application/json" },
			maxBytes:    1 << 20,
			wantStatus:  http.StatusCreated,
			wantCreated: 1,
		},
		{
			name: "multipart_file",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", document)
			},
			maxBytes:    1 << 20,
			wantStatus:  http.StatusCreated,
			wantCreated: 1,
		},
		{
			name: "multipart_wrong_field",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "document", document)
			},
			maxBytes:   1 << 20,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "multipart_not_json",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", "name,content\n")
			},
			maxBytes:   1 << 20,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "too_large",
			build:      func(*testing.T) (io.Reader, string) { return strings.NewReader(document), "application/json" },
			maxBytes:   16,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := tt.build(t)
			request := httptest.NewRequest(http.MethodPost, "/upload", body)
			request.Header.Set("Content-Type", contentType)
			recorder := httptest.NewRecorder()

			newRouter(newFixture(500), tt.maxBytes).ServeHTTP(recorder, request)

			require.Equal(t, tt.wantStatus, recorder.Code, recorder.Body.String())
			if tt.wantStatus != http.StatusCreated {
				return
			}

			var response struct {
				Data upload.Result `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, tt.wantCreated, response.Data.Quotes.Created)
			assert.Equal(t, 1, response.Data.Authors.Created)
		})
	}
}
