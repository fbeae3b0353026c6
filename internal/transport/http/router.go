package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/heimsharon/booksearch/internal/authn"
	"github.com/heimsharon/booksearch/internal/handlers"
	"github.com/heimsharon/booksearch/internal/token"
)

type Deps struct {
	DB            *gorm.DB
	Codec         *token.Codec
	AuthHandler   *handlers.AuthHandler
	BookHandler   *handlers.BookHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	// the authenticator runs on every API route; it only resolves identity,
	// each handler decides whether anonymous access is acceptable
	v1 := e.Group("/api/v1", authn.Middleware(d.Codec))

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.GET("/me", d.AuthHandler.Me)

	v1.GET("/search", d.SearchHandler.Search)

	books := v1.Group("/books")
	books.GET("", d.BookHandler.ListSaved)
	books.POST("", d.BookHandler.SaveBook)
	books.GET("/:id", d.BookHandler.GetSaved)
	books.DELETE("/:id", d.BookHandler.RemoveBook)
}
