package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/davzula/blinkwatch/internal/blink"
)

// Recorder fans one BlinkRecord out to whichever stores are configured.
// Persistence is fire-and-forget: a failed write is logged and absorbed,
// never surfaced back into the frame loop. A classification and count
// stay displayable even with no store configured at all.
type Recorder struct {
	cloud   *Cloud
	archive *Archive
	log     zerolog.Logger
}

// NewRecorder accepts nil for either store; a nil store is skipped.
func NewRecorder(cloud *Cloud, archive *Archive, log zerolog.Logger) *Recorder {
	return &Recorder{cloud: cloud, archive: archive, log: log}
}

// Save writes the record everywhere it can.
func (r *Recorder) Save(ctx context.Context, rec *blink.Record) {
	if r.cloud == nil && r.archive == nil {
		r.log.Warn().Str("kind", rec.Kind).Msg("no store configured - record not saved")
		return
	}

	if r.cloud != nil {
		docID, err := r.cloud.Save(ctx, rec)
		if err != nil {
			r.log.Warn().Err(err).Str("kind", rec.Kind).Msg("cloud save failed")
		} else {
			r.log.Info().
				Str("docId", docID).
				Str("user", rec.UserName).
				Int("blinksPerMinute", rec.BlinksPerMinute).
				Str("status", rec.HealthStatus).
				Msg("record saved to cloud")
		}
	}

	if r.archive != nil {
		if err := r.archive.InsertRecord(ctx, rec); err != nil {
			r.log.Warn().Err(err).Str("kind", rec.Kind).Msg("archive save failed")
		}
	}
}
