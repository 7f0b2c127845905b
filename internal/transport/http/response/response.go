package response

import "github.com/gin-gonic/gin"

const (
	MsgInvalidPayload  = "Invalid request payload"
	MsgInternalError   = "Internal server error"
	MsgUnauthenticated = "Unauthenticated"
)

type ErrorBody struct {
	Error string `json:"error"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func JSON(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, data)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

// Abort writes the error and stops the remaining handlers in the chain.
func Abort(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Error: message})
}

func Message(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, MessageBody{Message: message})
}
