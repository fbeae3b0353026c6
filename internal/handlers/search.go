package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/heimsharon/booksearch/internal/models"
	"github.com/heimsharon/booksearch/internal/service/catalog"
	"github.com/heimsharon/booksearch/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

// Book is the flat shape the client consumes, mapped down from the catalog's
// nested volume format.
type Book struct {
	BookID      string   `json:"book_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()

	total, volumes, err := catalog.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	books := make([]Book, len(volumes))
	for i, v := range volumes {
		books[i] = flattenVolume(v)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "books": books})
}

func flattenVolume(v models.Volume) Book {
	authors := v.VolumeInfo.Authors
	if len(authors) == 0 {
		authors = []string{"No author to display"}
	}
	return Book{
		BookID:      v.ID,
		Title:       v.VolumeInfo.Title,
		Authors:     authors,
		Description: v.VolumeInfo.Description,
		Image:       v.VolumeInfo.ImageLinks.Thumbnail,
		Link:        v.VolumeInfo.Link,
	}
}
