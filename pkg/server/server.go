package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/binder"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/ArinaZlatko/nonfiction-server/pkg/chapters"
	"github.com/ArinaZlatko/nonfiction-server/pkg/comments"
	"github.com/ArinaZlatko/nonfiction-server/pkg/config"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/favorites"
	"github.com/ArinaZlatko/nonfiction-server/pkg/genres"
	"github.com/ArinaZlatko/nonfiction-server/pkg/mediastore"
	"github.com/ArinaZlatko/nonfiction-server/pkg/notifications"
	"github.com/ArinaZlatko/nonfiction-server/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, media *mediastore.Store) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	_, authMiddleware := auth.RegisterRoutes(e, db, cfg.JWTSecret)

	users.RegisterRoutes(e, db, authMiddleware)
	genreService := genres.RegisterRoutes(e, db)
	bookService := books.RegisterRoutes(e, db, media, genreService, authMiddleware)
	chapters.RegisterRoutes(e, db, media, bookService, authMiddleware)
	notificationService := notifications.RegisterRoutes(e, db, authMiddleware)
	comments.RegisterRoutes(e, db, bookService, notificationService, authMiddleware)
	favorites.RegisterRoutes(e, db, bookService, authMiddleware)

	// Uploaded covers and chapter images.
	e.Static(mediastore.URLPrefix, media.Root())

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
