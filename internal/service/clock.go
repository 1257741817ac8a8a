package service

import "time"

// Clock 提供当前时间，注入后测试里可以自由拨动时钟
type Clock interface {
	Now() time.Time
}

// RealClock 使用系统时间
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock 可控时钟，仅测试使用
type MockClock struct {
	current time.Time
}

// NewMockClock 创建一个停在给定时刻的时钟
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

func (c *MockClock) Now() time.Time {
	return c.current
}

// Advance 把时钟向前拨动 d
func (c *MockClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
