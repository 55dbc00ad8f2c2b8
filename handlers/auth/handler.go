package auth

import (
	"net/http"

	"github.com/cinebuzz/discovery/handlers/common"
	"github.com/cinebuzz/discovery/services/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type SessionData struct {
	Success bool `json:"success"`
	*auth.Session
}

type Handler struct {
	cl *auth.Client
}

func RegisterHandler(r *gin.Engine, cl *auth.Client) {
	h := &Handler{
		cl: cl,
	}
	gr := r.Group("/api/auth")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))
	gr.POST("/signup", h.signup)
	gr.POST("/signin", h.signin)
	gr.GET("/me", auth.HasAuth, h.me)
}

func (s *Handler) signup(c *gin.Context) {
	var in auth.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}
	sess, err := s.cl.Signup(c.Request.Context(), in)
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, SessionData{Success: true, Session: sess})
}

func (s *Handler) signin(c *gin.Context) {
	var in auth.SigninInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{Error: err.Error()})
		return
	}
	sess, err := s.cl.Signin(c.Request.Context(), in)
	if err != nil {
		common.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionData{Success: true, Session: sess})
}

func (s *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.GetUserFromContext(c))
}
