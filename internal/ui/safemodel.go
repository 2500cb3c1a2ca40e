// internal/ui/safemodel.go
package ui

import (
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// SafeModel wraps a tea.Model and recovers panics raised inside Init,
// Update or View. A panic in an update handler would otherwise tear down
// the whole program and leave the terminal in alt-screen mode; recovering
// keeps the session alive and logs the stack so the bug can be fixed.
type SafeModel struct {
	inner  tea.Model
	logger *zap.Logger
}

// NewSafeModel wraps model so panics are logged instead of crashing the UI.
func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeModel{inner: model, logger: logger.Named("ui")}
}

func (s *SafeModel) Init() (cmd tea.Cmd) {
	defer s.recoverPanic("Init", &cmd)
	return s.inner.Init()
}

func (s *SafeModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer s.recoverPanic("Update", &cmd)
	s.inner, cmd = s.inner.Update(msg)
	return s, cmd
}

func (s *SafeModel) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("View panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			view = "⚠ Render error, see log file for the stack. Press ctrl+c to exit."
		}
	}()
	return s.inner.View()
}

func (s *SafeModel) recoverPanic(method string, cmd *tea.Cmd) {
	if r := recover(); r != nil {
		s.logger.Error("UI panic recovered",
			zap.String("method", method),
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())))
		*cmd = nil
	}
}
