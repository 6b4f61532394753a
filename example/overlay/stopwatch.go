package main

import (
	"time"

	"github.com/rs/zerolog"
)

// stopwatch logs the duration of a processing phase at debug level
type stopwatch struct {
	name  string
	start time.Time
	log   zerolog.Logger
}

// startPhase logs the start of a phase and returns its stopwatch
func startPhase(log zerolog.Logger, name string) *stopwatch {

	log.Debug().Str("phase", name).Msg("start")

	return &stopwatch{
		name:  name,
		start: time.Now(),
		log:   log,
	}
}

// Stop logs the time taken since the phase started
func (s *stopwatch) Stop() time.Duration {

	took := time.Since(s.start)
	s.log.Debug().Str("phase", s.name).Dur("took", took).Msg("finished")

	return took
}
