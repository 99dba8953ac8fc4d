package blink

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Tuned detection constants. The threshold and window size come from the
// optometric calibration of the ratio signal, not from derivation.
const (
	// BlinkThreshold is the smoothed ratio below which the eye counts as closed.
	BlinkThreshold = 35
	// RefractoryFrames is how many frames a counted blink suppresses re-detection.
	RefractoryFrames = 10
	// bucketLength is the rolling aggregation window for the persisted rate.
	bucketLength = time.Minute
)

// FrameResult is what one Update call hands back to the caller: display
// values for the dashboard plus an optional record due for persistence.
type FrameResult struct {
	TotalBlinks int
	LiveRate    int
	Status      Status
	Elapsed     time.Duration
	Record      *Record
}

// Session is the per-run blink aggregate. All state lives here for the
// process lifetime; nothing is durable locally. The clock is always
// injected through Update/Finish so the state machine tests without a
// camera or wall-clock dependency.
type Session struct {
	ID        string
	UserName  string
	StartedAt time.Time

	totalBlinks  int
	debounce     int
	minuteBlinks int
	minuteStart  time.Time
}

func NewSession(userName string, now time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		UserName:    userName,
		StartedAt:   now,
		minuteStart: now,
	}
}

// Update advances the state machine by one frame. ok reports whether a
// face was visible; when it is false no threshold evaluation happens,
// but the minute boundary is still checked because it is driven purely
// by elapsed time.
//
// The minute bucket is a rolling 60-second window anchored to its own
// last reset, not to wall-clock minute marks.
func (s *Session) Update(ratio float64, ok bool, now time.Time) FrameResult {
	var rec *Record
	if now.Sub(s.minuteStart) >= bucketLength {
		rec = s.newRecord(KindMinute, s.minuteBlinks, now)
		s.minuteBlinks = 0
		s.minuteStart = now
	}

	if ok {
		if s.debounce == 0 && ratio < BlinkThreshold {
			s.totalBlinks++
			s.minuteBlinks++
			s.debounce = 1
		} else if s.debounce != 0 {
			s.debounce++
			if s.debounce > RefractoryFrames {
				s.debounce = 0
			}
		}
	}

	rate := s.LiveRate(now)
	return FrameResult{
		TotalBlinks: s.totalBlinks,
		LiveRate:    rate,
		Status:      Classify(rate),
		Elapsed:     now.Sub(s.StartedAt),
		Record:      rec,
	}
}

// LiveRate extrapolates a blinks-per-minute estimate for display. Under
// 30 seconds of session time the estimate is half-weighted against a
// floor of half a minute, which keeps a tiny time base from producing
// wild numbers; past 30 seconds it is a plain extrapolation. The two
// branches intentionally disagree at the 30-second mark.
func (s *Session) LiveRate(now time.Time) int {
	seconds := now.Sub(s.StartedAt).Seconds()
	minutes := seconds / 60
	if seconds >= 30 {
		return int(float64(s.totalBlinks) / minutes)
	}
	return int(float64(s.totalBlinks) / math.Max(minutes, 0.5) * 0.5)
}

// TotalBlinks reports the session-wide blink count.
func (s *Session) TotalBlinks() int { return s.totalBlinks }

// Finish closes the session and returns the final record. The duration
// floor of 0.1 minutes keeps an immediate quit from dividing by a
// near-zero time base.
func (s *Session) Finish(now time.Time) *Record {
	minutes := math.Max(now.Sub(s.StartedAt).Minutes(), 0.1)
	rate := int(float64(s.totalBlinks) / minutes)
	return s.newRecord(KindFinal, rate, now)
}
