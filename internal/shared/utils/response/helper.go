package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes an error envelope carrying err's message
func RespondError(c *gin.Context, code int, message string, err error) {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	RespondJSON(c, "error", code, message, nil, details)
}
