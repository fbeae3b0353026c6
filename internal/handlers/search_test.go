package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/heimsharon/booksearch/internal/models"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// stubES builds a client whose every request is answered with the canned
// search response body.
func stubES(t *testing.T, body string) *elasticsearch.Client {
	t.Helper()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://stub"},
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header: http.Header{
					"X-Elastic-Product": []string{"Elasticsearch"},
					"Content-Type":      []string{"application/json"},
				},
				Body:    io.NopCloser(strings.NewReader(body)),
				Request: r,
			}, nil
		}),
	})
	require.NoError(t, err)
	return es
}

func TestSearchRequiresQuery(t *testing.T) {
	h := &SearchHandler{ES: nil, Index: "books"}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()

	err := h.Search(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestSearchFlattensVolumes(t *testing.T) {
	const esResponse = `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_source": {
					"id": "vol1",
					"volumeInfo": {
						"title": "The Go Programming Language",
						"authors": ["Alan Donovan", "Brian Kernighan"],
						"description": "The authoritative resource.",
						"imageLinks": {"thumbnail": "http://img/vol1.jpg"},
						"link": "http://catalog/vol1"
					}
				}},
				{"_source": {
					"id": "vol2",
					"volumeInfo": {"title": "Anonymous Pamphlet"}
				}}
			]
		}
	}`

	h := &SearchHandler{ES: stubES(t, esResponse), Index: "books"}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=go", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Search(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int64  `json:"total"`
		Books []Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Books, 2)

	require.Equal(t, "vol1", resp.Books[0].BookID)
	require.Equal(t, "The Go Programming Language", resp.Books[0].Title)
	require.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, resp.Books[0].Authors)
	require.Equal(t, "http://img/vol1.jpg", resp.Books[0].Image)
	require.Equal(t, "http://catalog/vol1", resp.Books[0].Link)

	// a volume without authors still renders a placeholder
	require.Equal(t, []string{"No author to display"}, resp.Books[1].Authors)
}

func TestFlattenVolume(t *testing.T) {
	v := models.Volume{
		ID: "vol1",
		VolumeInfo: models.VolumeInfo{
			Title:       "Some Title",
			Authors:     []string{"A. Author"},
			Description: "desc",
			ImageLinks:  models.ImageLinks{Thumbnail: "http://img/t.jpg"},
			Link:        "http://catalog/vol1",
		},
	}

	got := flattenVolume(v)
	require.Equal(t, Book{
		BookID:      "vol1",
		Title:       "Some Title",
		Authors:     []string{"A. Author"},
		Description: "desc",
		Image:       "http://img/t.jpg",
		Link:        "http://catalog/vol1",
	}, got)

	got = flattenVolume(models.Volume{ID: "vol2"})
	require.Equal(t, []string{"No author to display"}, got.Authors)
}
