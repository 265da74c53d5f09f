// Package zap adapts a *zap.Logger to mmn.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/openproduce/mmn"
)

type Logger struct{ L *zap.Logger }

var _ mmn.Logger = Logger{}

func (z Logger) Debug(msg string, f mmn.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f mmn.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f mmn.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f mmn.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f mmn.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
