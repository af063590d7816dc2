package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
	"github.com/shouni/gemini-studio-kit/pkg/store"
)

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// listCreations は新しい順に返します。
func (s *Server) listCreations(c *gin.Context) {
	creations, err := s.deps.Creations.ListCreations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	store.SortNewestFirst(creations)
	if creations == nil {
		creations = []domain.Creation{}
	}
	c.JSON(http.StatusOK, creations)
}

func (s *Server) deleteCreation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.deps.Creations.DeleteCreation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listInspo(c *gin.Context) {
	images, err := s.deps.Inspirations.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if images == nil {
		images = []domain.InspoImage{}
	}
	c.JSON(http.StatusOK, images)
}

// addInspo は multipart の file と category を受け取ります。
func (s *Server) addInspo(c *gin.Context) {
	category, err := domain.ParseInspoCategory(c.PostForm("category"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > maxUploadBytes {
		badRequest(c, "file is too large")
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		respondError(c, err)
		return
	}
	if !imgcodec.IsImage(data) {
		badRequest(c, "uploaded file is not an image")
		return
	}

	img, err := s.deps.Inspirations.Add(c.Request.Context(), data, header.Filename, category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (s *Server) deleteInspo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.deps.Inspirations.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
