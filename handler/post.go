package handler

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"postapi/auth"
	"postapi/domain"
)

var sanitizerStrict = bluemonday.StrictPolicy()

// PostRequest is the body accepted by create and update.
type PostRequest struct {
	Title string `json:"title" validate:"required"`
}

type pageEnvelope struct {
	CurrentPage  int           `json:"current_page"`
	Data         []domain.Post `json:"data"`
	FirstPageURL string        `json:"first_page_url"`
	From         *int          `json:"from"`
	LastPage     int           `json:"last_page"`
	LastPageURL  string        `json:"last_page_url"`
	NextPageURL  *string       `json:"next_page_url"`
	Path         string        `json:"path"`
	PerPage      int           `json:"per_page"`
	PrevPageURL  *string       `json:"prev_page_url"`
	To           *int          `json:"to"`
	Total        int           `json:"total"`
}

func (h *Handler) GetPosts(c echo.Context) error {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", h.PerPage)

	result, err := h.Posts.List(c.Request().Context(), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageEnvelope(c, result))
}

func (h *Handler) NewPost(c echo.Context) error {
	title, err := h.bindTitle(c)
	if err != nil {
		return err
	}
	p, err := h.Posts.Create(c.Request().Context(), title)
	if err != nil {
		return err
	}
	c.Logger().Infof("post %d created by %s", p.ID, auth.Subject(c))
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	p, err := h.Posts.Find(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) EditPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	title, err := h.bindTitle(c)
	if err != nil {
		return err
	}
	p, err := h.Posts.Update(c.Request().Context(), id, title)
	if err != nil {
		return err
	}
	c.Logger().Infof("post %d updated by %s", p.ID, auth.Subject(c))
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	if err := h.Posts.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	c.Logger().Infof("post %d deleted by %s", id, auth.Subject(c))
	return c.NoContent(http.StatusNoContent)
}

// bindTitle decodes a PostRequest, normalizes the title according to the
// handler policy and validates it.
func (h *Handler) bindTitle(c echo.Context) (string, error) {
	req := new(PostRequest)
	if err := c.Bind(req); err != nil {
		return "", err
	}
	if h.StripHTML {
		req.Title = html.UnescapeString(sanitizerStrict.Sanitize(req.Title))
	}
	if h.TrimTitle {
		req.Title = strings.TrimSpace(req.Title)
	}
	if err := c.Validate(req); err != nil {
		return "", err
	}
	return req.Title, nil
}

// postID parses the :id path parameter. Anything that cannot name a
// stored post is reported as not found.
func postID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("post id %q: %w", c.Param("id"), domain.ErrNotFound)
	}
	return id, nil
}

func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func newPageEnvelope(c echo.Context, result domain.PostPage) pageEnvelope {
	path := c.Scheme() + "://" + c.Request().Host + c.Request().URL.Path
	pageURL := func(n int) string {
		q := url.Values{}
		q.Set("page", strconv.Itoa(n))
		if c.QueryParam("per_page") != "" {
			q.Set("per_page", strconv.Itoa(result.PerPage))
		}
		return path + "?" + q.Encode()
	}

	last := result.LastPage()
	env := pageEnvelope{
		CurrentPage:  result.Page,
		Data:         result.Posts,
		FirstPageURL: pageURL(1),
		LastPage:     last,
		LastPageURL:  pageURL(last),
		Path:         path,
		PerPage:      result.PerPage,
		Total:        result.Total,
	}
	if len(result.Posts) > 0 {
		from := (result.Page-1)*result.PerPage + 1
		to := from + len(result.Posts) - 1
		env.From, env.To = &from, &to
	}
	if result.Page < last {
		next := pageURL(result.Page + 1)
		env.NextPageURL = &next
	}
	if result.Page > 1 {
		prev := pageURL(result.Page - 1)
		env.PrevPageURL = &prev
	}
	return env
}
