package service

import "errors"

var (
	// ErrInvalidTargetURL 目标地址不是合法的 http/https 绝对 URL
	ErrInvalidTargetURL = errors.New("invalid target url")

	// ErrInvalidCodeFormat 自定义短码不符合 6-8 位字母数字的格式
	ErrInvalidCodeFormat = errors.New("invalid code format")

	// ErrAllocationExhausted 随机短码重试多次仍然冲突
	ErrAllocationExhausted = errors.New("code allocation exhausted")

	// ErrExpired 链接已过期（记录保留，不计数）
	ErrExpired = errors.New("link expired")

	// ErrInvalidStoredURL 库里存的目标地址非法，属于服务端数据故障而不是客户端错误
	ErrInvalidStoredURL = errors.New("invalid stored url")

	// ErrInvalidRequest 请求参数缺失或非法
	ErrInvalidRequest = errors.New("invalid request")
)
