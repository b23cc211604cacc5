package routes

import "github.com/gin-gonic/gin"

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

type V1Deps struct {
	Auth      gin.HandlerFunc
	RateLimit gin.HandlerFunc
	Handlers  []Registrar
}

// RegisterV1 mounts every feature under /api/v1 behind authentication and,
// when configured, rate limiting.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(dep.Auth)
	if dep.RateLimit != nil {
		api.Use(dep.RateLimit)
	}

	for _, h := range dep.Handlers {
		h.Register(api)
	}
}
