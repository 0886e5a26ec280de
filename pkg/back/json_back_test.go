package back

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"NotifyLink/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func run(f func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	f(c)
	return w
}

func TestResult(t *testing.T) {
	w := run(func(c *gin.Context) { Result(c, gin.H{"count": 2}, nil) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"message":"Success","data":{"count":2}}`, w.Body.String())

	w = run(func(c *gin.Context) { Result(c, nil, xerr.ErrNotFound) })
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"notification not found"}`, w.Body.String())

	w = run(func(c *gin.Context) { Result(c, nil, errors.New("db down")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal server error"}`, w.Body.String())
}

func TestErrorUnknownCodeMapsTo500(t *testing.T) {
	w := run(func(c *gin.Context) { Error(c, 1001, "custom") })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":1001,"message":"custom"}`, w.Body.String())
}
