package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"medkit/internal/pkg/ctxutil"
	"medkit/internal/pkg/jwt"
)

func newAuthTestRouter(jwtUtil *jwt.JWT) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(jwtUtil))
	r.GET("/protected", func(c *gin.Context) {
		userID, ok := ctxutil.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "user id missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	Convey("Auth 中间件保护路由", t, func() {
		jwtUtil := jwt.NewJWT("test-secret", time.Hour)
		router := newAuthTestRouter(jwtUtil)

		Convey("缺少Authorization头返回401", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("非Bearer格式返回401", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Basic abc123")
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("无效Token返回401", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer not-a-token")
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("其他密钥签发的Token返回401", func() {
			other := jwt.NewJWT("another-secret", time.Hour)
			token, err := other.GenerateToken("doctor-1", "zhang", "doctor")
			So(err, ShouldBeNil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("有效Token放行并注入user_id", func() {
			token, err := jwtUtil.GenerateToken("doctor-1", "zhang", "doctor")
			So(err, ShouldBeNil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "doctor-1")
		})
	})
}
