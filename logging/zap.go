package logging

import (
	"go.uber.org/zap"

	"github.com/otterhq/intent-sdk-go/client"
)

// zapLogger 用 zap 实现 client.Logger
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New 创建 zap 支撑的日志器（debug 时输出开发格式与 Debug 级别）
func New(debug bool) (client.Logger, error) {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: logger.Sugar()}, nil
}

// NewNop 创建丢弃全部输出的日志器（测试用）
func NewNop() client.Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugw(msg, args...)
}

func (l *zapLogger) Info(msg string, args ...interface{}) {
	l.sugar.Infow(msg, args...)
}

func (l *zapLogger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnw(msg, args...)
}

func (l *zapLogger) Error(msg string, args ...interface{}) {
	l.sugar.Errorw(msg, args...)
}
