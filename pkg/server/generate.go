package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/imgcodec"
	"github.com/shouni/gemini-studio-kit/pkg/imgutil"
	"github.com/shouni/gemini-studio-kit/pkg/orchestrator"
)

// normalizeAsset は画像の表現を揃えます。食い違いは ValidationError になります。
func normalizeAsset(field string, asset domain.ImageAsset) (domain.ImageAsset, error) {
	out, err := imgcodec.Normalize(asset)
	if err != nil {
		return domain.ImageAsset{}, &orchestrator.ValidationError{Message: "invalid " + field + ": " + err.Error()}
	}
	return out, nil
}

// normalizeAssets はリクエスト内のすべての画像を揃えます。
func normalizeAssets(req *domain.GenerationRequest) error {
	for i := range req.ProductImages {
		a, err := normalizeAsset("productImages", req.ProductImages[i])
		if err != nil {
			return err
		}
		req.ProductImages[i] = a
	}
	for i := range req.ContextImages {
		a, err := normalizeAsset("contextImages", req.ContextImages[i])
		if err != nil {
			return err
		}
		req.ContextImages[i] = a
	}
	if req.SceneImage != nil {
		a, err := normalizeAsset("sceneImage", *req.SceneImage)
		if err != nil {
			return err
		}
		req.SceneImage = &a
	}
	return nil
}

// bindRequest は GenerationRequest を読み、列挙値と画像を検証します。
func bindRequest(c *gin.Context) (domain.GenerationRequest, bool) {
	var req domain.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return req, false
	}
	if _, err := domain.ParseMode(string(req.Mode)); err != nil {
		badRequest(c, err.Error())
		return req, false
	}
	if req.AspectRatio != "" && !req.AspectRatio.Valid() {
		badRequest(c, "unknown aspect ratio: "+string(req.AspectRatio))
		return req, false
	}
	if req.ProductSize != "" && !req.ProductSize.Valid() {
		badRequest(c, "unknown product size: "+string(req.ProductSize))
		return req, false
	}
	if err := normalizeAssets(&req); err != nil {
		respondError(c, err)
		return req, false
	}
	return req, true
}

func (s *Server) generate(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	out, err := s.deps.Studio.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) variation(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	out, err := s.deps.Studio.Variation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) cancel(c *gin.Context) {
	c.JSON(http.StatusOK, CancelResponse{Cancelled: s.deps.Studio.Cancel(c.Request.Context())})
}

func (s *Server) clearAll(c *gin.Context) {
	s.deps.Studio.ClearAll(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{InFlight: s.deps.Studio.InFlight()})
}

func (s *Server) videoPrompt(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	prompt, generated, err := s.deps.Studio.AutoVideoPrompt(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, VideoPromptResponse{Prompt: prompt, Generated: generated})
}

func (s *Server) useAsProduct(c *gin.Context) {
	var body UseAsProductRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := normalizeAssets(&body.Request); err != nil {
		respondError(c, err)
		return
	}
	next, err := s.deps.Studio.UseAsProduct(body.Request, body.Output)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next)
}

// applyMask は塗りをシーン画像のネイティブ解像度のマスクに変換して返します。
func (s *Server) applyMask(c *gin.Context) {
	var body MaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.SceneImage.Base64 == "" && body.SceneImage.DataURL == "" {
		badRequest(c, "sceneImage is required")
		return
	}
	sceneImage, err := normalizeAsset("sceneImage", body.SceneImage.WithoutMask())
	if err != nil {
		respondError(c, err)
		return
	}
	scene, err := imgutil.ApplyStrokes(sceneImage, body.DisplayWidth, body.DisplayHeight, body.Strokes)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, scene)
}
