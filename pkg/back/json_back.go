package back

import (
	"net/http"

	"NotifyLink/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Result 统一返回入口
func Result(c *gin.Context, data interface{}, err error) {
	if err == nil {
		Success(c, data)
		return
	}

	e := xerr.From(err)
	Error(c, e.Code, e.Message)
}

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    xerr.OK,
		Message: "Success",
		Data:    data,
	})
}

// Error 错误返回，HTTP 状态码与错误分类保持一致
func Error(c *gin.Context, code int, message string) {
	c.JSON(xerr.New(code, message).HTTPStatus(), Response{
		Code:    code,
		Message: message,
	})
}
