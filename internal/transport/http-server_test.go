package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/service"
)

const testToken = "bb10ef2f-fc68-4b42-8960-e3e3d344ae9a"

// ids at or above 2^63 cannot be stored and must read as missing
var outOfRangeIDs = []string{"9223372036854775808", "18446744073709551615"}

var sqliteSeq int64

func newSQLiteGateway(t *testing.T) service.Gateway {
	t.Helper()

	dsn := fmt.Sprintf("file:transport%d?mode=memory&cache=shared", atomic.AddInt64(&sqliteSeq, 1))
	gormDB, err := db.Open(sqlite.Open(dsn), zap.NewNop().Sugar())
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return service.NewBookmarks(gormDB, zap.NewNop().Sugar())
}

type serverFactory func(t *testing.T) (*HTTPServer, service.Gateway)

// eachGateway runs fn once per gateway implementation.
func eachGateway(t *testing.T, fn func(t *testing.T, newServer serverFactory)) {
	gateways := map[string]func(t *testing.T) service.Gateway{
		"memory": func(t *testing.T) service.Gateway { return service.NewMemory() },
		"sqlite": newSQLiteGateway,
	}

	for name, newGateway := range gateways {
		newGateway := newGateway
		t.Run(name, func(t *testing.T) {
			fn(t, func(t *testing.T) (*HTTPServer, service.Gateway) {
				t.Helper()
				store := newGateway(t)
				return New(&config.Config{Port: "8000"}, store, zap.NewNop().Sugar()), store
			})
		})
	}
}

func newTestServer(t *testing.T) (*HTTPServer, service.Gateway) {
	t.Helper()
	store := service.NewMemory()
	return New(&config.Config{Port: "8000"}, store, zap.NewNop().Sugar()), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+testToken)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBookmark(t *testing.T, rec *httptest.ResponseRecorder) models.Bookmark {
	t.Helper()
	got := models.Bookmark{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func seed(t *testing.T, store service.Gateway, fields models.BookmarkFields) models.Bookmark {
	t.Helper()
	b, err := store.Create(context.Background(), fields)
	require.NoError(t, err)
	return b
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestPing(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestBookmarkList(t *testing.T) {
	eachGateway(t, func(t *testing.T, newServer serverFactory) {
		t.Run("given no bookmarks", func(t *testing.T) {
			s, _ := newServer(t)

			rec := do(t, s, http.MethodGet, "/bookmarks", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})

		t.Run("given bookmarks", func(t *testing.T) {
			s, store := newServer(t)
			seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com", Description: strPtr("first"), Rating: intPtr(5)})
			seed(t, store, models.BookmarkFields{Title: "two", URL: "two.com"})

			rec := do(t, s, http.MethodGet, "/bookmarks", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[
				{"id": 1, "title": "one", "url": "one.com", "description": "first", "rating": 5},
				{"id": 2, "title": "two", "url": "two.com", "description": null, "rating": null}
			]`, rec.Body.String())
		})
	})
}

func TestBookmarkCreate(t *testing.T) {
	eachGateway(t, func(t *testing.T, newServer serverFactory) {
		t.Run("successful create", func(t *testing.T) {
			s, store := newServer(t)

			rec := do(t, s, http.MethodPost, "/bookmarks",
				`{"title": "test", "url": "test.com", "description": "super fun stuff", "rating": 4}`)

			require.Equal(t, http.StatusCreated, rec.Code)
			got := decodeBookmark(t, rec)
			assert.NotZero(t, got.ID)
			assert.Equal(t, "test", got.Title)
			assert.Equal(t, "test.com", got.URL)
			assert.Equal(t, "super fun stuff", *got.Description)
			assert.Equal(t, 4, *got.Rating)
			assert.Equal(t, "http://localhost:8000/bookmarks/1", rec.Header().Get(echo.HeaderLocation))

			stored, found, err := store.Get(context.Background(), got.ID)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, got, stored)
		})

		t.Run("round trip through get", func(t *testing.T) {
			s, _ := newServer(t)

			rec := do(t, s, http.MethodPost, "/bookmarks", `{"title": "test", "url": "test.com"}`)
			require.Equal(t, http.StatusCreated, rec.Code)
			created := decodeBookmark(t, rec)

			rec = do(t, s, http.MethodGet, "/bookmarks/1", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, models.Bookmark{ID: created.ID, Title: "test", URL: "test.com"}, decodeBookmark(t, rec))
		})

		t.Run("configured base url", func(t *testing.T) {
			s := New(&config.Config{Port: "8000", BaseURL: "https://bm.example.com"}, service.NewMemory(), zap.NewNop().Sugar())

			rec := do(t, s, http.MethodPost, "/bookmarks", `{"title": "test", "url": "test.com"}`)

			require.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, "https://bm.example.com/bookmarks/1", rec.Header().Get(echo.HeaderLocation))
		})

		cases := []struct {
			name    string
			body    string
			message string
		}{
			{"missing title", `{"url": "test.com"}`, "'title' is required"},
			{"empty title", `{"title": "", "url": "test.com"}`, "'title' is required"},
			{"missing url", `{"title": "test"}`, "'url' is required"},
			{"rating too low", `{"title": "test", "url": "test.com", "rating": 0}`, "'rating' must be a number between 1 and 5"},
			{"rating too high", `{"title": "test", "url": "test.com", "rating": 6}`, "'rating' must be a number between 1 and 5"},
			{"rating not a number", `{"title": "test", "url": "test.com", "rating": "four"}`, "'rating' must be a number between 1 and 5"},
			{"rating as string", `{"title": "test", "url": "test.com", "rating": "4"}`, "'rating' must be a number between 1 and 5"},
			{"rating not an integer", `{"title": "test", "url": "test.com", "rating": 4.5}`, "'rating' must be a number between 1 and 5"},
			{"title not a string", `{"title": 7, "url": "test.com"}`, "'title' is invalid"},
			{"malformed json", `{"title": `, "Request body must be valid JSON"},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				s, store := newServer(t)

				rec := do(t, s, http.MethodPost, "/bookmarks", tc.body)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.JSONEq(t, `{"error": {"message": "`+tc.message+`"}}`, rec.Body.String())

				all, err := store.List(context.Background())
				require.NoError(t, err)
				assert.Len(t, all, 0)
			})
		}
	})
}

func TestBookmarkGet(t *testing.T) {
	eachGateway(t, func(t *testing.T, newServer serverFactory) {
		t.Run("existing bookmark", func(t *testing.T) {
			s, store := newServer(t)
			seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com"})
			b := seed(t, store, models.BookmarkFields{Title: "three", URL: "three.com", Rating: intPtr(3)})

			rec := do(t, s, http.MethodGet, "/bookmarks/2", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, b, decodeBookmark(t, rec))
		})

		for _, id := range append([]string{"12345", "abc", "-1"}, outOfRangeIDs...) {
			id := id
			t.Run("missing "+id, func(t *testing.T) {
				s, _ := newServer(t)

				rec := do(t, s, http.MethodGet, "/bookmarks/"+id, "")

				assert.Equal(t, http.StatusNotFound, rec.Code)
				assert.Equal(t, "Bookmark not found", rec.Body.String())
			})
		}
	})
}

func TestSanitizedOutput(t *testing.T) {
	eachGateway(t, func(t *testing.T, newServer serverFactory) {
		s, _ := newServer(t)

		rec := do(t, s, http.MethodPost, "/bookmarks",
			`{"title": "<script>alert(1)</script>", "url": "test.com", "description": "<b onmouseover=x>hi</b>"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = do(t, s, http.MethodGet, "/bookmarks/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBookmark(t, rec)
		assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", got.Title)
		assert.Equal(t, "&lt;b onmouseover=x&gt;hi&lt;/b&gt;", *got.Description)
		assert.NotContains(t, got.Title, "<script>")

		rec = do(t, s, http.MethodGet, "/bookmarks", "")
		require.Equal(t, http.StatusOK, rec.Code)
		list := make([]models.Bookmark, 0)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", list[0].Title)
	})
}

func TestBookmarkUpdate(t *testing.T) {
	eachGateway(t, func(t *testing.T, newServer serverFactory) {
		t.Run("given no bookmark, responds with 404", func(t *testing.T) {
			s, _ := newServer(t)

			rec := do(t, s, http.MethodPatch, "/bookmarks/12345", `{"title": "new title"}`)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error": {"message": "Article not found"}}`, rec.Body.String())
		})

		for _, id := range outOfRangeIDs {
			id := id
			t.Run("out of range id "+id+", responds with 404", func(t *testing.T) {
				s, store := newServer(t)
				seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com"})

				rec := do(t, s, http.MethodPatch, "/bookmarks/"+id, `{"title": "new title"}`)

				assert.Equal(t, http.StatusNotFound, rec.Code)
				assert.JSONEq(t, `{"error": {"message": "Article not found"}}`, rec.Body.String())
			})
		}

		t.Run("responds with 204 and updates the bookmark", func(t *testing.T) {
			s, store := newServer(t)
			seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com"})
			before := seed(t, store, models.BookmarkFields{Title: "two", URL: "two.com", Description: strPtr("desc"), Rating: intPtr(2)})

			rec := do(t, s, http.MethodPatch, "/bookmarks/2", `{"title": "new title", "url": "new.url"}`)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Body.String())

			rec = do(t, s, http.MethodGet, "/bookmarks/2", "")
			require.Equal(t, http.StatusOK, rec.Code)
			expected := before
			expected.Title = "new title"
			expected.URL = "new.url"
			assert.Equal(t, expected, decodeBookmark(t, rec))
		})

		t.Run("updating only a subset of fields", func(t *testing.T) {
			s, store := newServer(t)
			before := seed(t, store, models.BookmarkFields{Title: "two", URL: "two.com", Description: strPtr("desc"), Rating: intPtr(2)})

			rec := do(t, s, http.MethodPatch, "/bookmarks/1", `{"title": "beep booop", "fieldToIgnore": "this should be ignored"}`)
			assert.Equal(t, http.StatusNoContent, rec.Code)

			rec = do(t, s, http.MethodGet, "/bookmarks/1", "")
			require.Equal(t, http.StatusOK, rec.Code)
			expected := before
			expected.Title = "beep booop"
			assert.Equal(t, expected, decodeBookmark(t, rec))
		})

		t.Run("rating only", func(t *testing.T) {
			s, store := newServer(t)
			seed(t, store, models.BookmarkFields{Title: "two", URL: "two.com"})

			rec := do(t, s, http.MethodPatch, "/bookmarks/1", `{"rating": 5}`)
			assert.Equal(t, http.StatusNoContent, rec.Code)

			got, _, err := store.Get(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, 5, *got.Rating)
			assert.Equal(t, "two", got.Title)
		})

		emptyBodies := []string{"", `{}`, `{"dummyField": "blah"}`, `{"title": null}`}
		for _, id := range []string{"1", "12345", "abc"} {
			for _, body := range emptyBodies {
				id, body := id, body
				t.Run("no recognized fields "+id+" "+body, func(t *testing.T) {
					s, store := newServer(t)
					seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com"})

					rec := do(t, s, http.MethodPatch, "/bookmarks/"+id, body)

					assert.Equal(t, http.StatusBadRequest, rec.Code)
					assert.JSONEq(t, `{"error": {"message": "Body must contain title, url, description, or rating"}}`, rec.Body.String())
				})
			}
		}

		invalid := map[string]string{
			"rating out of range": `{"rating": 9}`,
			"empty title":         `{"title": ""}`,
			"empty url":           `{"url": ""}`,
			"rating as string":    `{"rating": "4"}`,
			"fractional rating":   `{"rating": 4.5}`,
		}
		for name, body := range invalid {
			body := body
			t.Run(name, func(t *testing.T) {
				s, store := newServer(t)
				before := seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com", Rating: intPtr(1)})

				rec := do(t, s, http.MethodPatch, "/bookmarks/1", body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)

				got, _, err := store.Get(context.Background(), 1)
				require.NoError(t, err)
				assert.Equal(t, before, got)
			})
		}
	})
}

func TestBookmarkDelete(t *testing.T) {
	eachGateway(t, func(t *testing.T, newServer serverFactory) {
		s, store := newServer(t)
		seed(t, store, models.BookmarkFields{Title: "one", URL: "one.com"})

		rec := do(t, s, http.MethodDelete, "/bookmarks/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		rec = do(t, s, http.MethodDelete, "/bookmarks/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark not found", rec.Body.String())

		rec = do(t, s, http.MethodGet, "/bookmarks/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, s, http.MethodDelete, "/bookmarks/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		for _, id := range outOfRangeIDs {
			rec = do(t, s, http.MethodDelete, "/bookmarks/"+id, "")
			assert.Equal(t, http.StatusNotFound, rec.Code, id)
			assert.Equal(t, "Bookmark not found", rec.Body.String())
		}
	})
}

type failingGateway struct{}

var errStoreDown = &service.PersistenceError{Op: "test", Err: errors.New("connection refused")}

func (failingGateway) List(context.Context) ([]models.Bookmark, error) { return nil, errStoreDown }
func (failingGateway) Get(context.Context, uint64) (models.Bookmark, bool, error) {
	return models.Bookmark{}, false, errStoreDown
}
func (failingGateway) Create(context.Context, models.BookmarkFields) (models.Bookmark, error) {
	return models.Bookmark{}, errStoreDown
}
func (failingGateway) Update(context.Context, uint64, models.BookmarkPatch) (int64, error) {
	return 0, errStoreDown
}
func (failingGateway) Delete(context.Context, uint64) (int64, error) { return 0, errStoreDown }

func TestPersistenceFailure(t *testing.T) {
	s := New(&config.Config{Port: "8000"}, failingGateway{}, zap.NewNop().Sugar())

	requests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/bookmarks", ""},
		{http.MethodPost, "/bookmarks", `{"title": "t", "url": "u"}`},
		{http.MethodGet, "/bookmarks/1", ""},
		{http.MethodPatch, "/bookmarks/1", `{"title": "t"}`},
		{http.MethodDelete, "/bookmarks/1", ""},
	}
	for _, r := range requests {
		rec := do(t, s, r.method, r.path, r.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, r.method+" "+r.path)
		assert.JSONEq(t, `{"error": {"message": "Internal Server Error"}}`, rec.Body.String())
	}

	// validation still short-circuits before the store
	rec := do(t, s, http.MethodPost, "/bookmarks", `{"url": "u"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": {"message": "Not Found"}}`, rec.Body.String())
}
