package channel

import (
	"context"

	"go.uber.org/zap"
)

// Cue is a short fixed audio cue selected by notification kind.
type Cue string

const (
	CueSuccess Cue = "success"
	CueError   Cue = "error"
	CueWarning Cue = "warning"
	CueInfo    Cue = "info"
)

// SoundPlayer starts playback of a cue. Playback failures are expected
// to be swallowed by the caller; a player must never block past the
// start of playback.
type SoundPlayer interface {
	Play(ctx context.Context, cue Cue) error
}

// LogPlayer logs cues instead of playing them (development mode).
type LogPlayer struct {
	logger *zap.Logger
}

func NewLogPlayer(logger *zap.Logger) *LogPlayer {
	return &LogPlayer{logger: logger}
}

func (p *LogPlayer) Play(ctx context.Context, cue Cue) error {
	p.logger.Debug("sound cue", zap.String("cue", string(cue)))
	return nil
}
