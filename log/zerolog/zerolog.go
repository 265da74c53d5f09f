// Package zerolog adapts a zerolog.Logger to mmn.Logger.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/openproduce/mmn"
)

type Logger struct{ L zerolog.Logger }

var _ mmn.Logger = Logger{}

func (z Logger) Debug(msg string, f mmn.Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Info(msg string, f mmn.Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Warn(msg string, f mmn.Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Error(msg string, f mmn.Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }
