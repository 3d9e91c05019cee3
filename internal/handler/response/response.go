package response

import (
	"credit-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Paged wraps one page of a list.
type Paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(errno.OK.Status, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error answers with the HTTP status and code of err's Errno.
func Error(c *gin.Context, err error) {
	e := errno.Lookup(err)
	c.JSON(e.Status, Response{
		Code:    e.Code,
		Message: e.Message,
		Data:    gin.H{},
	})
}

// BindError answers a failed request binding with the validation details.
func BindError(c *gin.Context, msg string) {
	c.JSON(errno.ErrBind.Status, Response{
		Code:    errno.ErrBind.Code,
		Message: msg,
		Data:    gin.H{},
	})
}
