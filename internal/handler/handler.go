package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortlink-platform/internal/middleware"
	"shortlink-platform/internal/service"
	"shortlink-platform/internal/store"
)

// LinkHandler 处理器
type LinkHandler struct {
	links *service.LinkService
}

// NewLinkHandler 创建处理器实例
func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

// HealthCheck ...
func (h *LinkHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// CreateLinkRequest 创建短链接的请求体
type CreateLinkRequest struct {
	TargetURL string `json:"target_url" binding:"required" example:"https://github.com/gin-gonic/gin"`
	Code      string `json:"code" example:"mylink1"`
}

// CreateLink godoc
// @Summary 创建短链接
// @Description 为目标 URL 创建短链接。未登录时创建匿名链接，30 天后过期；登录后创建的链接永久有效。
// @Tags Link
// @Accept  json
// @Produce  json
// @Param   link  body   CreateLinkRequest  true  "目标地址和可选的自定义短码"
// @Success 201 {object} model.Link "创建成功"
// @Failure 400 {object} gin.H "目标地址或短码格式非法"
// @Failure 409 {object} gin.H "短码已被占用"
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	ownerID := middleware.CurrentUserID(c)
	link, err := h.links.Create(c.Request.Context(), req.TargetURL, req.Code, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTargetURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "目标地址必须是 http:// 或 https:// 开头的合法 URL"})
		case errors.Is(err, service.ErrInvalidCodeFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "自定义短码必须是 6-8 位字母或数字"})
		case errors.Is(err, store.ErrCodeExists):
			c.JSON(http.StatusConflict, gin.H{"error": "短码已被占用，请换一个"})
		case errors.Is(err, store.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用，请稍后重试"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "创建短链接失败"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"link":      link,
		"short_url": "http://" + c.Request.Host + "/" + link.Code,
	})
}

// Redirect godoc
// @Summary 短码跳转
// @Description 解析短码并 302 跳转到目标地址，同时记一次点击。带 ?debug=1 时只返回诊断信息，不跳转也不计数。
// @Tags Link
// @Produce  json
// @Param   code  path  string  true  "短码"
// @Success 302 "跳转到目标地址"
// @Failure 400 {object} gin.H "存储的目标地址非法"
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	// `?debug=1` → 返回 JSON 而不是跳转，便于排查
	if c.Query("debug") == "1" {
		link, err := h.links.Inspect(c.Request.Context(), code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "短码不存在", "code": code})
				return
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "已命中跳转处理器", "code": code, "target_url": link.TargetURL})
		return
	}

	target, err := h.links.Resolve(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// 缺失和过期都引导到友好页面，原因放在查询参数里
			c.Redirect(http.StatusFound, "/link-not-found?code="+code+"&reason=not_found")
		case errors.Is(err, service.ErrExpired):
			c.Redirect(http.StatusFound, "/link-not-found?code="+code+"&reason=expired")
		case errors.Is(err, service.ErrInvalidStoredURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "存储的目标地址非法"})
		case errors.Is(err, store.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用，请稍后重试"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "解析短码失败"})
		}
		return
	}

	c.Redirect(http.StatusFound, target)
}

// LinkNotFound 友好的"链接不可用"页面，带上短码和原因，不暴露内部细节
func (h *LinkHandler) LinkNotFound(c *gin.Context) {
	reason := c.Query("reason")
	if reason != "expired" {
		reason = "not_found"
	}
	c.JSON(http.StatusNotFound, gin.H{
		"message": "链接不存在或已过期",
		"code":    c.Query("code"),
		"reason":  reason,
	})
}

// InspectLink godoc
// @Summary 查看短链接详情
// @Description 诊断读取：返回记录但不改点击计数
// @Tags Link
// @Produce  json
// @Param   code  path  string  true  "短码"
// @Success 200 {object} model.Link "链接详情"
// @Failure 404 {object} gin.H "短码不存在"
// @Failure 410 {object} gin.H "链接已过期"
// @Router /api/links/{code} [get]
func (h *LinkHandler) InspectLink(c *gin.Context) {
	code := c.Param("code")
	link, err := h.links.Inspect(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "短码不存在"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用"})
		return
	}

	if link.ExpiredAt(time.Now()) {
		c.JSON(http.StatusGone, gin.H{"error": "链接已过期"})
		return
	}

	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary 删除短链接
// @Description 只有链接的持有者可以删除。匿名链接没有可证明的持有者，不能通过接口删除。
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   code  path  string  true  "短码"
// @Success 200 {object} gin.H "删除成功"
// @Failure 403 {object} gin.H "不是链接持有者"
// @Failure 404 {object} gin.H "短码不存在"
// @Router /api/links/{code} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	code := c.Param("code")
	requester := middleware.CurrentUserID(c)
	if requester == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return
	}

	// 归属校验在调用层完成，存储层只负责删除
	link, err := h.links.Inspect(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "短码不存在"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用"})
		return
	}
	if !link.Owned() || *link.OwnerID != *requester {
		c.JSON(http.StatusForbidden, gin.H{"error": "只有链接持有者可以删除"})
		return
	}

	if err := h.links.Delete(c.Request.Context(), code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "短码不存在"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ClaimLinksRequest 批量认领请求体
type ClaimLinksRequest struct {
	Codes []string `json:"codes" example:"abc123"`
}

// ClaimLinks godoc
// @Summary 认领匿名链接
// @Description 把一批匿名短码转到当前用户名下并清除过期时间。已有归属的短码被跳过，不算错误。
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   codes  body   ClaimLinksRequest  true  "要认领的短码列表"
// @Success 200 {object} gin.H "转移条数"
// @Failure 400 {object} gin.H "短码列表为空"
// @Router /api/links/claim [post]
func (h *LinkHandler) ClaimLinks(c *gin.Context) {
	var req ClaimLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	ownerID := middleware.CurrentUserID(c)
	if ownerID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未认证"})
		return
	}

	count, err := h.links.Claim(c.Request.Context(), req.Codes, *ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "短码列表不能为空"})
		case errors.Is(err, store.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用，请稍后重试"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "认领失败"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transferred_count": count})
}

// ListLinks godoc
// @Summary 链接列表
// @Description 返回当前用户的全部链接，最新创建的在前。未登录的请求拿到空列表。
// @Tags Link
// @Produce  json
// @Success 200 {array} model.Link "链接列表"
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	ownerID := middleware.CurrentUserID(c)
	links, err := h.links.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储暂时不可用"})
		return
	}
	c.JSON(http.StatusOK, links)
}
