package chat

import (
	"errors"
	"fmt"
)

// 错误分类：所有协作方错误在编排层被转换为以下类型之一，
// 原始错误不越过核心边界。
var (
	// ErrEmptyQuestion 空问题或纯空白问题
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrSessionNotFound 未知会话 ID
	ErrSessionNotFound = errors.New("session not found")
)

// RetrievalError 检索协作方失败
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// NewRetrievalError 包装检索失败
func NewRetrievalError(err error) *RetrievalError {
	return &RetrievalError{Err: err}
}

// GenerationError 生成协作方失败，回合终止且历史不被修改
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError 包装生成失败
func NewGenerationError(err error) *GenerationError {
	return &GenerationError{Err: err}
}

// IsRetrievalError 判断是否为检索失败
func IsRetrievalError(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}

// IsGenerationError 判断是否为生成失败
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
