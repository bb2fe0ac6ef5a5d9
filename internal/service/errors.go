package service

import "errors"

var (
	// ErrAssistantResponding 表示同一对话上一条消息的回复尚未完成。
	ErrAssistantResponding = errors.New("assistant is still responding")
	// ErrEmptyMessage 表示消息内容去除空白后为空。
	ErrEmptyMessage = errors.New("message content is empty")

	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserExists         = errors.New("Email already in use")

	// ErrNoPlan 表示对话过短，尚未形成博客计划。
	ErrNoPlan              = errors.New("no blog plan yet")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrExportNotFound      = errors.New("export not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
