package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-studio-kit/pkg/auth"
)

// login は同意画面へリダイレクトします。JSON を要求された場合は URL を返します。
func (s *Server) login(c *gin.Context) {
	url, err := s.deps.Session.LoginURL()
	if err != nil {
		respondError(c, err)
		return
	}
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, LoginResponse{URL: url})
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (s *Server) callback(c *gin.Context) {
	if msg := c.Query("error"); msg != "" {
		badRequest(c, "authorization denied: "+msg)
		return
	}
	profile, err := s.deps.Session.Complete(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Enabled: true, Profile: profile})
}

// logout は失効の失敗を返しません。ローカルのサインイン状態はその時点で消えています。
func (s *Server) logout(c *gin.Context) {
	_ = s.deps.Session.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// me は認証が無効でもエラーにせず enabled=false を返します。
func (s *Server) me(c *gin.Context) {
	if !s.deps.Session.Enabled() {
		c.JSON(http.StatusOK, SessionResponse{Enabled: false})
		return
	}
	profile, err := s.deps.Session.Profile(c.Request.Context())
	if errors.Is(err, auth.ErrConsentRequired) {
		c.JSON(http.StatusOK, SessionResponse{Enabled: true})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Enabled: true, Profile: profile})
}
