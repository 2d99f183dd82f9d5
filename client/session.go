package client

import (
	"errors"
	"sync"
)

// State 一次 上传→处理→预览→导出 周期里的会话状态
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// Session 会话状态机，管着 UI 上哪些操作可用
//
//	idle -> uploading -> idle/error        （读文件）
//	idle -> processing -> completed/error  （抠图，processing 前必须 Confirm）
//	completed -> completed                 （换背景色，只走客户端合成）
//	completed/error -> idle                （显式重置）
type Session struct {
	mu        sync.Mutex
	state     State
	hasImage  bool
	confirmed bool
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeginUpload 开始读取用户选中的文件
func (s *Session) BeginUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrInvalidTransition
	}
	s.state = StateUploading
	// 新文件替换旧的，确认状态作废
	s.hasImage = false
	s.confirmed = false
	return nil
}

// FinishUpload 文件读取结束，err 为 nil 回 idle，否则进 error
func (s *Session) FinishUpload(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUploading {
		return ErrInvalidTransition
	}
	if err != nil {
		s.state = StateError
		return nil
	}
	s.state = StateIdle
	s.hasImage = true
	return nil
}

// Confirm 用户确认要发起昂贵的抠图调用
func (s *Session) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || !s.hasImage {
		return ErrInvalidTransition
	}
	s.confirmed = true
	return nil
}

// BeginProcessing 发起抠图，必须先 Confirm，这是唯一的准入闸门
func (s *Session) BeginProcessing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || !s.hasImage || !s.confirmed {
		return ErrInvalidTransition
	}
	s.state = StateProcessing
	s.confirmed = false
	return nil
}

// FinishProcessing 抠图结束，成功进 completed，失败进 error
// 失败时上传的图保留，用户可以直接重试不用重新上传
func (s *Session) FinishProcessing(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing {
		return ErrInvalidTransition
	}
	if err != nil {
		s.state = StateError
		return nil
	}
	s.state = StateCompleted
	return nil
}

// Recolor 换背景色，只允许在 completed 下，并且停在 completed
func (s *Session) Recolor() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted {
		return ErrInvalidTransition
	}
	return nil
}

// Retry 从 error 回 idle，保留已上传的图
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateError {
		return ErrInvalidTransition
	}
	s.state = StateIdle
	return nil
}

// Reset 显式重置，一切归零
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.hasImage = false
	s.confirmed = false
}
