package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type HandleResponse struct {
	Handle string `json:"handle"`
}

type DataResponse struct {
	Data interface{} `json:"data"`
}

type ListResponse struct {
	ExperimentList []interface{} `json:"experimentList"`
	Total          int           `json:"total"`
}

func Success(c *gin.Context, obj interface{}) {
	c.JSON(http.StatusOK, obj)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Failure(c *gin.Context, errorCode *ErrorCode, msgAndArgs ...interface{}) {
	c.AbortWithStatusJSON(errorCode.GetHttpCode(),
		ErrorResponse{
			Code:    errorCode.GetCode(),
			Message: errorCode.GetReason(),
			Error:   BuildMessage(msgAndArgs...),
		},
	)
}
