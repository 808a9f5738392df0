package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"postapi/auth"
	"postapi/domain"
)

type PostStore interface {
	List(ctx context.Context, page, perPage int) (domain.PostPage, error)
	Create(ctx context.Context, title string) (domain.Post, error)
	Find(ctx context.Context, id int64) (domain.Post, error)
	Update(ctx context.Context, id int64, title string) (domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

type UserStore interface {
	Create(ctx context.Context, username string, passwordHash []byte) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, []byte, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	Posts        PostStore
	Users        UserStore
	DB           Pinger
	JWTSecret    string
	TokenTTL     time.Duration
	EnableSignup bool
	Environment  string
	TrimTitle    bool
	StripHTML    bool
	PerPage      int
}

// Register mounts every route on e. All /api/posts routes sit behind the
// bearer token guard.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.POST("/signup", h.NewUser)
	api.POST("/login", h.Login)

	posts := api.Group("/posts", auth.Guard(h.JWTSecret))
	posts.GET("", h.GetPosts)
	posts.POST("", h.NewPost)
	posts.GET("/:id", h.GetByID)
	posts.PUT("/:id", h.EditPost)
	posts.DELETE("/:id", h.DeletePost)
}
