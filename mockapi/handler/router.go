package handler

import (
	"github.com/gin-gonic/gin"

	"gradient-sdk/conf"
	"gradient-sdk/mockapi"
	"gradient-sdk/mockapi/server"
	"gradient-sdk/repositories"
)

// APIKeyRequired: reject requests without the configured key; disabled when the key is empty
func APIKeyRequired(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(apiKey) == 0 {
			c.Next()
			return
		}
		if c.GetHeader(repositories.APIKeyHeader) != apiKey {
			server.Failure(c, mockapi.Unauthorized, "missing or invalid %s header", repositories.APIKeyHeader)
			return
		}
		c.Next()
	}
}

// InitRouter: experiments and logs API on one engine
func InitRouter(config conf.MockServerConfig, store mockapi.Interface) *gin.Engine {
	h := NewHandler(store)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ping", h.Ping)

	api := router.Group("", APIKeyRequired(config.APIKey))
	for _, route := range repositories.SubmitRoutes() {
		api.POST(route.Path, h.Submit(route))
	}
	api.GET(repositories.ExperimentsPath, h.List)
	api.GET(repositories.ExperimentsPath+":id/", h.Get)
	api.DELETE(repositories.ExperimentsPath+":id/", h.Delete)
	api.PUT(repositories.ExperimentsPath+":id/start/", h.Start)
	api.PUT(repositories.ExperimentsPath+":id/stop/", h.Stop)
	api.GET(repositories.LogsPath, h.Logs)

	router.NoRoute(func(c *gin.Context) {
		server.Failure(c, mockapi.NotFound, "no route for %s %s", c.Request.Method, c.Request.URL.Path)
	})
	return router
}
