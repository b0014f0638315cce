package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/CompanyNewsHub/internal/config"
	"github.com/LJTian/CompanyNewsHub/internal/processor"
	"github.com/LJTian/CompanyNewsHub/internal/storage"
	"github.com/gin-gonic/gin"
)

// DocumentReader API 只读访问文档
type DocumentReader interface {
	GetDocument(ctx context.Context, collection, docID string) (map[string]any, error)
	ListDocumentIDs(ctx context.Context, collection string, limit int) ([]string, error)
}

type Server struct {
	docs      DocumentReader
	companies []config.Company
	now       func() time.Time
}

func NewServer(docs DocumentReader, companies []config.Company) *Server {
	return &Server{docs: docs, companies: companies, now: config.Now}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/collections", s.listCollections)
		v1.GET("/news/:collection", s.listDates)
		v1.GET("/news/:collection/:date", s.getDocument)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listCollections(c *gin.Context) {
	items := make([]gin.H, 0, len(s.companies))
	for _, co := range s.companies {
		items = append(items, gin.H{
			"company":    co.Name,
			"collection": co.Collection,
			"ticker":     co.Ticker,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

func (s *Server) knownCollection(name string) bool {
	for _, co := range s.companies {
		if co.Collection == name {
			return true
		}
	}
	return false
}

func (s *Server) listDates(c *gin.Context) {
	collection := c.Param("collection")
	if !s.knownCollection(collection) {
		notFound(c, "unknown collection")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "31"))
	if err != nil || limit <= 0 {
		limit = 31
	}

	ids, err := s.docs.ListDocumentIDs(c.Request.Context(), collection, limit)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    ids,
	})
}

func (s *Server) getDocument(c *gin.Context) {
	collection := c.Param("collection")
	if !s.knownCollection(collection) {
		notFound(c, "unknown collection")
		return
	}

	date := c.Param("date")
	if date == "latest" {
		date = processor.DocumentID(s.now())
	}
	if _, err := time.Parse("20060102", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "date must be YYYYMMDD or latest",
		})
		return
	}

	doc, err := s.docs.GetDocument(c.Request.Context(), collection, date)
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, "document not found")
		return
	}
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"collection": collection,
			"date":       date,
			"news":       doc,
		},
	})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{
		"code":    "not_found",
		"message": msg,
	})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
