package messages

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"disasterresponse/internal/logger"
	"disasterresponse/pkg/database"
)

type Handler struct {
	Repo *Repo
	Log  logger.Logger
}

func NewHandler(repo *Repo, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/messages", h.list)        // GET /messages
	rg.GET("/messages/:id", h.getByID) // GET /messages/:id
	rg.GET("/categories", h.categories)
	rg.GET("/stats/genres", h.genreStats)
	rg.GET("/stats/categories", h.categoryStats)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:        c.Query("q"),
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
		Limit:    parseInt(c.Query("limit"), DefaultLimit),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	q.Normalize()

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "count failed", err)
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "list failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}
	m, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get failed", err)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) categories(c *gin.Context) {
	cats, err := h.Repo.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "categories failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) genreStats(c *gin.Context) {
	counts, err := h.Repo.GenreCounts(c.Request.Context())
	if err != nil {
		h.fail(c, "genre stats failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": counts})
}

func (h *Handler) categoryStats(c *gin.Context) {
	counts, err := h.Repo.CategoryCounts(c.Request.Context())
	if err != nil {
		h.fail(c, "category stats failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": counts})
}

// fail maps repo errors to a status. Unexpected errors are logged.
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrTableNotFound):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "table not loaded"})
	default:
		h.Log.Error(msg, logger.String("path", c.FullPath()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
