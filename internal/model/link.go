package model

import (
	"time"
)

// Link 短链接模型
// 匿名链接没有 OwnerID，带有过期时间；被认领后成为永久链接。
type Link struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Code          string     `gorm:"size:10;uniqueIndex;not null" json:"code"`
	TargetURL     string     `gorm:"type:text;not null" json:"target_url"`
	OwnerID       *uint      `gorm:"index" json:"owner_id,omitempty"`
	IsAnonymous   bool       `gorm:"not null;default:true" json:"is_anonymous"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	TotalClicks   int64      `gorm:"not null;default:0" json:"total_clicks"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// NewAnonymousLink 创建一条匿名链接，过期时间在创建时即确定
func NewAnonymousLink(code, targetURL string, expiresAt time.Time) *Link {
	return &Link{
		Code:        code,
		TargetURL:   targetURL,
		IsAnonymous: true,
		ExpiresAt:   &expiresAt,
	}
}

// NewOwnedLink 创建一条已登录用户持有的链接，永不过期
func NewOwnedLink(code, targetURL string, ownerID uint) *Link {
	return &Link{
		Code:        code,
		TargetURL:   targetURL,
		OwnerID:     &ownerID,
		IsAnonymous: false,
	}
}

// Owned 判断链接是否已有归属
func (l *Link) Owned() bool {
	return l.OwnerID != nil
}

// ExpiredAt 判断链接在给定时刻是否已经过期
func (l *Link) ExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
