// Package logrus adapts a *logrus.Entry to mmn.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/openproduce/mmn"
)

type Logger struct{ E *logrus.Entry }

var _ mmn.Logger = Logger{}

func (l Logger) Debug(msg string, f mmn.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f mmn.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f mmn.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f mmn.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
