package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shortlink-platform/internal/middleware"
	"shortlink-platform/internal/model"
	"shortlink-platform/internal/service"
	"shortlink-platform/internal/store"
	auth "shortlink-platform/pkg/jwt"
)

// testEnv 集成测试环境：完整路由 + 内存数据库
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	store  *store.GormLinkStore
	tokens *auth.TokenManager
}

// setupTest 为集成测试初始化一个干净的环境。
// 测试不依赖 Redis，服务内的缓存路径自动降级。
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Link{}, &model.User{}))

	linkStore := store.NewGormLinkStore(db)
	linkService := service.NewLinkService(linkStore, nil, service.RealClock{}, zap.NewNop().Sugar(), service.Options{})
	tokens := auth.NewManager("test-secret", "test", 1)

	linkHandler := NewLinkHandler(linkService)
	authHandler := NewAuthHandler(db, nil, tokens)

	authMiddleware := middleware.AuthMiddleware(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	router := gin.New()
	router.GET("/link-not-found", linkHandler.LinkNotFound)
	router.GET("/:code", linkHandler.Redirect)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	api := router.Group("/api")
	{
		api.POST("/links", optionalAuth, linkHandler.CreateLink)
		api.GET("/links", optionalAuth, linkHandler.ListLinks)
		api.GET("/links/:code", linkHandler.InspectLink)
		api.DELETE("/links/:code", authMiddleware, linkHandler.DeleteLink)
		api.POST("/links/claim", authMiddleware, linkHandler.ClaimLinks)
	}

	return &testEnv{router: router, db: db, store: linkStore, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createResponse 创建接口的响应体
type createResponse struct {
	Link     model.Link `json:"link"`
	ShortURL string     `json:"short_url"`
}

func (e *testEnv) createLink(t *testing.T, token, targetURL, code string) createResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/links", token, CreateLinkRequest{TargetURL: targetURL, Code: code})
	require.Equal(t, http.StatusCreated, w.Code, "创建短链接应返回 201: %s", w.Body.String())

	var resp createResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Link.Code)
	return resp
}

func (e *testEnv) newUser(t *testing.T, username string) (model.User, string) {
	t.Helper()
	user := model.User{Username: username, Email: username + "@example.com", IsActive: true}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, e.db.Create(&user).Error)
	token, err := e.tokens.GenerateToken(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

// TestCreateAndRedirect 创建后跳转的完整流程，并验证点击计数
func TestCreateAndRedirect(t *testing.T) {
	env := setupTest(t)

	targetURL := "https://example.com/very/long/path"
	resp := env.createLink(t, "", targetURL, "")

	assert.True(t, resp.Link.IsAnonymous)
	require.NotNil(t, resp.Link.ExpiresAt, "匿名创建应带过期时间")
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *resp.Link.ExpiresAt, time.Minute)

	w := env.do(t, http.MethodGet, "/"+resp.Link.Code, "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, targetURL, w.Header().Get("Location"))

	// 跳转之后点击计数为 1
	w = env.do(t, http.MethodGet, "/api/links/"+resp.Link.Code, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var link model.Link
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	assert.Equal(t, int64(1), link.TotalClicks)
}

func TestCreate_AuthenticatedIsPermanent(t *testing.T) {
	env := setupTest(t)
	user, token := env.newUser(t, "alice")

	resp := env.createLink(t, token, "https://example.com/a", "")
	assert.False(t, resp.Link.IsAnonymous)
	require.NotNil(t, resp.Link.OwnerID)
	assert.Equal(t, user.ID, *resp.Link.OwnerID)
	assert.Nil(t, resp.Link.ExpiresAt)
}

func TestCreate_RejectsBadTargetURL(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/links", "", CreateLinkRequest{TargetURL: "ftp://bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_RejectsBadCodeFormat(t *testing.T) {
	env := setupTest(t)

	for _, code := range []string{"ab", "way-too-long-code", "bad!ch"} {
		w := env.do(t, http.MethodPost, "/api/links", "", CreateLinkRequest{TargetURL: "https://example.com", Code: code})
		assert.Equal(t, http.StatusBadRequest, w.Code, "短码 %q 应被拒绝", code)
	}

	// 校验失败不应留下任何记录
	var count int64
	env.db.Model(&model.Link{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreate_DuplicateCustomCode(t *testing.T) {
	env := setupTest(t)

	env.createLink(t, "", "https://example.com/a", "MyLink01")
	w := env.do(t, http.MethodPost, "/api/links", "", CreateLinkRequest{TargetURL: "https://example.com/b", Code: "MyLink01"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	env.db.Model(&model.Link{}).Where("code = ?", "MyLink01").Count(&count)
	assert.Equal(t, int64(1), count, "冲突之后只应有一条记录")
}

func TestRedirect_NotFound(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodGet, "/nothere", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/link-not-found?code=nothere&reason=not_found", w.Header().Get("Location"))

	// 友好页面带回短码和原因
	w = env.do(t, http.MethodGet, "/link-not-found?code=nothere&reason=not_found", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
	assert.Contains(t, w.Body.String(), "nothere")
}

func TestRedirect_Expired(t *testing.T) {
	env := setupTest(t)

	// 直接塞一条已过期的匿名链接
	expired := model.NewAnonymousLink("gone123", "https://example.com/old", time.Now().Add(-time.Hour))
	require.NoError(t, env.store.InsertIfAbsent(t.Context(), expired))

	w := env.do(t, http.MethodGet, "/gone123", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/link-not-found?code=gone123&reason=expired", w.Header().Get("Location"))

	// 过期解析不计数
	link, err := env.store.GetByCode(t.Context(), "gone123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), link.TotalClicks)
	assert.Nil(t, link.LastClickedAt)

	// 详情接口对过期记录返回 410
	w = env.do(t, http.MethodGet, "/api/links/gone123", "", nil)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestRedirect_DebugMode(t *testing.T) {
	env := setupTest(t)
	resp := env.createLink(t, "", "https://example.com/a", "")

	// debug 模式只返回诊断信息，不跳转也不计数
	w := env.do(t, http.MethodGet, "/"+resp.Link.Code+"?debug=1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com/a")

	link, err := env.store.GetByCode(t.Context(), resp.Link.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(0), link.TotalClicks)
}

// TestClaimFlow 匿名创建 → 登录认领 → 列表可见的完整流程
func TestClaimFlow(t *testing.T) {
	env := setupTest(t)
	user, token := env.newUser(t, "alice")
	_, otherToken := env.newUser(t, "bob")

	anon := env.createLink(t, "", "https://example.com/a", "")
	owned := env.createLink(t, otherToken, "https://example.com/b", "")

	// 未认证不能认领
	w := env.do(t, http.MethodPost, "/api/links/claim", "", ClaimLinksRequest{Codes: []string{anon.Link.Code}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 匿名的转移成功，已有归属的被跳过
	w = env.do(t, http.MethodPost, "/api/links/claim", token, ClaimLinksRequest{Codes: []string{anon.Link.Code, owned.Link.Code}})
	require.Equal(t, http.StatusOK, w.Code)
	var claim struct {
		TransferredCount int64 `json:"transferred_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, int64(1), claim.TransferredCount)

	claimed, err := env.store.GetByCode(t.Context(), anon.Link.Code)
	require.NoError(t, err)
	assert.False(t, claimed.IsAnonymous)
	require.NotNil(t, claimed.OwnerID)
	assert.Equal(t, user.ID, *claimed.OwnerID)
	assert.Nil(t, claimed.ExpiresAt, "认领后过期时间被清除")

	// 幂等：重复认领转移 0 条
	w = env.do(t, http.MethodPost, "/api/links/claim", token, ClaimLinksRequest{Codes: []string{anon.Link.Code, owned.Link.Code}})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, int64(0), claim.TransferredCount)

	// 登录后列表能看到认领的链接
	w = env.do(t, http.MethodGet, "/api/links", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var links []model.Link
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &links))
	require.Len(t, links, 1)
	assert.Equal(t, anon.Link.Code, links[0].Code)

	// 匿名请求永远拿到空列表
	w = env.do(t, http.MethodGet, "/api/links", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestClaim_EmptyCodes(t *testing.T) {
	env := setupTest(t)
	_, token := env.newUser(t, "alice")

	w := env.do(t, http.MethodPost, "/api/links/claim", token, ClaimLinksRequest{Codes: []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteLink_OwnershipEnforced(t *testing.T) {
	env := setupTest(t)
	_, aliceToken := env.newUser(t, "alice")
	_, bobToken := env.newUser(t, "bob")

	resp := env.createLink(t, aliceToken, "https://example.com/a", "")

	// 未认证直接拒绝
	w := env.do(t, http.MethodDelete, "/api/links/"+resp.Link.Code, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 不是持有者不能删
	w = env.do(t, http.MethodDelete, "/api/links/"+resp.Link.Code, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 持有者可以删
	w = env.do(t, http.MethodDelete, "/api/links/"+resp.Link.Code, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/links/"+resp.Link.Code, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: "carol", Email: "carol@example.com", Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reg AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.Token)

	w = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "carol", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "carol", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
