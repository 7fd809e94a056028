package response

import (
	"github.com/gin-gonic/gin"
)

// MessageBody is the plain error shape used by the auth endpoints and the session guard.
type MessageBody struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// FailureBody is the error shape of the Google sign-in endpoint.
type FailureBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Message aborts the chain with {"message": msg}.
func Message(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, MessageBody{Message: msg})
}

// Invalid aborts the chain with a message plus per-field binding details.
func Invalid(ctx *gin.Context, status int, msg string, details map[string]string) {
	ctx.AbortWithStatusJSON(status, MessageBody{Message: msg, Details: details})
}

// Failure aborts the chain with {"success": false, "message": msg, "error": reason}.
// The error field is omitted when reason is empty.
func Failure(ctx *gin.Context, status int, msg, reason string) {
	ctx.AbortWithStatusJSON(status, FailureBody{Success: false, Message: msg, Error: reason})
}

// RequestID returns the id assigned by the request id middleware.
func RequestID(ctx *gin.Context) string {
	return ctx.GetString("request_id")
}
