package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

func (s *Server) translate(c *gin.Context) {
	var body TranslateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	text, err := s.deps.Prompts.Translate(c.Request.Context(), body.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TranslateResponse{Text: text})
}

func (s *Server) buildPrompt(c *gin.Context) {
	var body BuildPromptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	prompt, err := s.deps.Prompts.BuildPrompt(c.Request.Context(), body.Kind, body.Subject, body.Style, body.Details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PromptResponse{Prompt: prompt})
}

func (s *Server) placementPrompt(c *gin.Context) {
	var body PlacementPromptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.ProductSize != "" && !body.ProductSize.Valid() {
		badRequest(c, "unknown product size: "+string(body.ProductSize))
		return
	}
	products := make([]domain.ImageAsset, len(body.ProductImages))
	for i, p := range body.ProductImages {
		a, err := normalizeAsset("productImages", p.WithoutMask())
		if err != nil {
			respondError(c, err)
			return
		}
		products[i] = a
	}
	scene, err := normalizeAsset("sceneImage", body.SceneImage.WithoutMask())
	if err != nil {
		respondError(c, err)
		return
	}
	prompt, err := s.deps.Prompts.AnalyzeForPlacement(c.Request.Context(), products, scene, body.ProductSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PromptResponse{Prompt: prompt})
}
