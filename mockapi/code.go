package mockapi

import (
	"github.com/gin-gonic/gin"
	ctrl "sigs.k8s.io/controller-runtime"

	"gradient-sdk/mockapi/server"
)

var ServerLog = ctrl.Log.WithName("mock-server")

var (
	InvalidParam = server.NewBadRequest("230400", "InvalidParam")
	Unauthorized = server.NewUnauthorized("230401", "Unauthorized")
	NotFound     = server.NewNotFound("230404", "NotFound")
	Conflict     = server.NewConflict("230409", "Conflict")
	UnknownError = server.NewInternalError("230500", "UnknownError")
)

func HandleError(c *gin.Context, err error) {
	if serviceError, ok := server.IsServiceError(err); ok {
		ServerLog.Error(err, serviceError.Error())
		server.Failure(c, serviceError.Code, serviceError.Message)
		return
	}
	ServerLog.Error(err, "unexpected error")
	server.Failure(c, UnknownError, err)
}
