package player

import (
	"context"
	"time"
)

// NopSink discards audio. Used when narration is disabled or no player
// binary is available.
type NopSink struct{}

func (NopSink) Start(context.Context, []byte) (time.Duration, error) { return 0, nil }
func (NopSink) Wait(context.Context) error                           { return nil }
func (NopSink) Stop()                                                {}
func (NopSink) Playing() bool                                        { return false }
