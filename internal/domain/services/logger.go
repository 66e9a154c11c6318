package services

import "github.com/fredcamaral/vidwatch/internal/domain/ports"

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}

func orDiscard(l ports.Logger) ports.Logger {
	if l == nil {
		return discardLogger{}
	}
	return l
}
