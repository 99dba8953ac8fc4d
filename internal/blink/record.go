package blink

import (
	"math"
	"time"
)

// RecordType tags every persisted document so the shared collection can
// be filtered by monitoring type.
const RecordType = "blink_monitoring"

// Record kinds: minute-boundary snapshots versus the end-of-session summary.
const (
	KindMinute = "minute"
	KindFinal  = "final"
)

// Record is the outbound, write-only summary handed to the persistence
// layer. The field set mirrors the blink_monitoring document schema.
type Record struct {
	SessionID              string  `firestore:"sessionId" json:"sessionId"`
	UserName               string  `firestore:"userName" json:"userName"`
	BlinksPerMinute        int     `firestore:"blinksPerMinute" json:"blinksPerMinute"`
	HealthStatus           string  `firestore:"healthStatus" json:"healthStatus"`
	TotalBlinks            int     `firestore:"totalBlinks" json:"totalBlinks"`
	SessionDurationMinutes float64 `firestore:"sessionDurationMinutes" json:"sessionDurationMinutes"`
	OptimalRate            int     `firestore:"optimalRate" json:"optimalRate"`
	Type                   string  `firestore:"type" json:"type"`
	Kind                   string  `firestore:"recordKind" json:"recordKind"`
	CreatedAt              string  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt              string  `firestore:"updatedAt" json:"updatedAt"`
	Timestamp              string  `firestore:"timestamp" json:"timestamp"`
}

func (s *Session) newRecord(kind string, rate int, now time.Time) *Record {
	ts := now.Format(time.RFC3339)
	minutes := now.Sub(s.StartedAt).Minutes()
	return &Record{
		SessionID:              s.ID,
		UserName:               s.UserName,
		BlinksPerMinute:        rate,
		HealthStatus:           Classify(rate).Label(),
		TotalBlinks:            s.totalBlinks,
		SessionDurationMinutes: math.Round(minutes*100) / 100,
		OptimalRate:            OptimalRate,
		Type:                   RecordType,
		Kind:                   kind,
		CreatedAt:              ts,
		UpdatedAt:              ts,
		Timestamp:              ts,
	}
}
