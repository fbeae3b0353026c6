package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/heimsharon/booksearch/internal/events"
	"github.com/heimsharon/booksearch/internal/logging"
	"github.com/heimsharon/booksearch/internal/models"
)

type BookHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *BookHandler) ListSaved(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var books []models.SavedBook
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&books).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) SaveBook(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		BookID      string   `json:"book_id"`
		Title       string   `json:"title"`
		Authors     []string `json:"authors"`
		Description string   `json:"description"`
		Image       string   `json:"image"`
		Link        string   `json:"link"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BookID == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id and title are required")
	}

	// saving the same volume twice is a no-op, like a set add
	var existing models.SavedBook
	err = h.DB.Where("user_id = ? AND book_id = ?", userID, req.BookID).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusOK, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	book := models.SavedBook{
		UserID:      userID,
		BookID:      req.BookID,
		Title:       req.Title,
		Authors:     req.Authors,
		Description: req.Description,
		Image:       req.Image,
		Link:        req.Link,
	}
	if err := h.DB.Create(&book).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":    "book_saved",
		"user_id": userID,
		"book_id": book.BookID,
	}, fmt.Sprint(userID))

	return c.JSON(http.StatusOK, book)
}

// GetSaved returns one saved entry by row id. The entry must belong to the
// caller; someone else's row is a 403, not a 404.
func (h *BookHandler) GetSaved(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var book models.SavedBook
	if err := h.DB.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "saved book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if book.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "saved book belongs to another user")
	}

	return c.JSON(http.StatusOK, book)
}

// RemoveBook deletes a saved entry by catalog book id, scoped to the caller.
func (h *BookHandler) RemoveBook(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	bookID := c.Param("id")

	res := h.DB.Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&models.SavedBook{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "saved book not found")
	}

	h.publish(c, map[string]interface{}{
		"type":    "book_removed",
		"user_id": userID,
		"book_id": bookID,
	}, fmt.Sprint(userID))

	var remaining []models.SavedBook
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&remaining).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, remaining)
}

func (h *BookHandler) publish(c echo.Context, event map[string]interface{}, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicBookEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
