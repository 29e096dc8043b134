package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-agenda/internal/shared/flash"
	"contact-agenda/internal/testutil"
)

func newRouter(kv *testutil.MemoryCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(flash.NewStore(kv, "flashid", time.Minute, false).Middleware())

	r.POST("/save", func(c *gin.Context) {
		flash.Success(c, "Saved.")
		c.Redirect(http.StatusFound, "/show")
	})
	r.GET("/show", func(c *gin.Context) {
		var texts []string
		for _, m := range flash.Pop(c) {
			texts = append(texts, string(m.Level)+":"+m.Text)
		}
		c.JSON(http.StatusOK, texts)
	})
	return r
}

func TestMessageSurvivesOneRedirect(t *testing.T) {
	kv := testutil.NewMemoryCache()
	r := newRouter(kv)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/save", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "flashid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, kv.Len())

	show := func() string {
		req := httptest.NewRequest(http.MethodGet, "/show", nil)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Body.String()
	}

	assert.JSONEq(t, `["success:Saved."]`, show())
	assert.JSONEq(t, `null`, show())
	assert.Equal(t, 0, kv.Len())
}

func TestPopWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	flash.Error(c, "ignored")
	assert.Nil(t, flash.Pop(c))
}
