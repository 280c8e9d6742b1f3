package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handle gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set("request_id", "req-1")
		handle(c)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func observeGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantLog  string
	}{
		{
			name:     "业务错误",
			err:      apperrors.New(40001, "无可用副本"),
			wantCode: 40001,
			wantMsg:  "无可用副本",
			wantLog:  "请求被拒绝",
		},
		{
			name:     "包装的系统错误",
			err:      apperrors.Wrap(errors.New("connection refused"), "查询图书失败"),
			wantCode: apperrors.ErrCodeInternal,
			wantMsg:  "查询图书失败",
			wantLog:  "请求处理失败",
		},
		{
			name:     "普通error不泄露原因",
			err:      errors.New("dial tcp 10.0.0.1:3306"),
			wantCode: apperrors.ErrCodeInternal,
			wantMsg:  "系统内部错误",
			wantLog:  "请求处理失败",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeGlobal(t)
			w := serve(t, func(c *gin.Context) { Error(c, tt.err) })

			assert.Equal(t, http.StatusOK, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Nil(t, resp.Data)

			entries := logs.FilterMessage(tt.wantLog).All()
			require.Len(t, entries, 1)
			assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
		})
	}
}

func TestSuccessAndFail(t *testing.T) {
	resp := decode(t, serve(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) }))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, map[string]any{"id": float64(1)}, resp.Data)

	resp = decode(t, serve(t, func(c *gin.Context) { Fail(c, apperrors.ErrCodeInvalidParams, "参数错误") }))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	assert.Equal(t, "参数错误", resp.Message)
}

func TestNewPageData(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		pageSize  int
		wantPages int
	}{
		{name: "整除", total: 40, pageSize: 20, wantPages: 2},
		{name: "有余数", total: 41, pageSize: 20, wantPages: 3},
		{name: "空列表", total: 0, pageSize: 20, wantPages: 0},
		{name: "非法页大小", total: 5, pageSize: 0, wantPages: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageData([]int{}, tt.total, 1, tt.pageSize)
			assert.Equal(t, tt.wantPages, p.TotalPages)
		})
	}
}

func TestCSV(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		CSV(c, "loans", func(w io.Writer) error {
			_, err := io.WriteString(w, "a,b\n1,2\n")
			return err
		})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=loans_"))
	assert.Equal(t, "a,b\n1,2\n", w.Body.String())
}

func TestCSV_WriteFailureIsLogged(t *testing.T) {
	logs := observeGlobal(t)
	serve(t, func(c *gin.Context) {
		CSV(c, "holds", func(io.Writer) error { return errors.New("broken pipe") })
	})

	entries := logs.FilterMessage("写出CSV失败").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "holds", entries[0].ContextMap()["report"])
}
