package assessment

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the state of one assessment: selected body regions, the
// conversation transcript, and the final diagnosis. It lives in memory for
// the duration of one client session; nothing is persisted.
//
// The store is single-writer by design (one UI context drives it), but the
// mutex keeps concurrent Go consumers safe.
type Session struct {
	mu sync.Mutex

	regions    []RegionRef
	transcript []Message
	diagnosis  *Diagnosis

	assessmentID string
	startedAt    time.Time
}

// NewSession creates an empty session with no active assessment.
func NewSession() *Session {
	return &Session{}
}

// StartAssessment assigns a fresh assessment ID and start time and clears the
// transcript and diagnosis.
//
// Region selection is deliberately NOT cleared: a user re-running an
// assessment keeps the body parts they already picked. Do not "fix" this.
func (s *Session) StartAssessment() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assessmentID = uuid.NewString()
	s.startedAt = time.Now().UTC()
	s.transcript = nil
	s.diagnosis = nil
	return s.assessmentID
}

// ResetAll clears everything: regions, transcript, diagnosis, and assessment
// metadata.
func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regions = nil
	s.transcript = nil
	s.diagnosis = nil
	s.assessmentID = ""
	s.startedAt = time.Time{}
}

// AddRegion selects a catalog region. Duplicate ids are ignored; selection
// order is preserved.
func (s *Session) AddRegion(r RegionRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, have := range s.regions {
		if have.ID == r.ID {
			return
		}
	}
	s.regions = append(s.regions, r)
}

// RemoveRegion drops a region from the selection by id.
func (s *Session) RemoveRegion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.regions[:0]
	for _, r := range s.regions {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.regions = kept
}

// ClearRegions empties the region selection.
func (s *Session) ClearRegions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = nil
}

// Regions returns a copy of the current selection in selection order.
func (s *Session) Regions() []RegionRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RegionRef, len(s.regions))
	copy(out, s.regions)
	return out
}

// RegionNames returns the display names of the selected regions.
func (s *Session) RegionNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.regions))
	for _, r := range s.regions {
		names = append(names, r.Name)
	}
	return names
}

// AppendMessage appends a turn to the transcript with a locally generated
// timestamp. No dedup and no size cap; transport validation owns the cap.
func (s *Session) AppendMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, NewMessage(role, content))
}

// SeedTranscript replaces the transcript wholesale, filling in any missing
// timestamps. Used once at the first bot turn so the opening user question
// and assistant answer land atomically rather than one at a time.
func (s *Session) SeedTranscript(messages []Message) {
	now := time.Now().UTC().Format(time.RFC3339)
	normalized := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Timestamp == "" {
			m.Timestamp = now
		}
		normalized = append(normalized, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = normalized
}

// ClearTranscript drops all turns but leaves the assessment running.
func (s *Session) ClearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// Transcript returns a copy of the full transcript in order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// FormattedForTransport projects the transcript into {role, content} pairs
// for the upstream call. Timestamps never cross the wire.
func (s *Session) FormattedForTransport() []TransportMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TransportMessage, 0, len(s.transcript))
	for _, m := range s.transcript {
		out = append(out, TransportMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// SetDiagnosis records the diagnosis produced at the end of the assessment.
func (s *Session) SetDiagnosis(d *Diagnosis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnosis = d
}

// Diagnosis returns the recorded diagnosis, or nil if none was produced yet.
func (s *Session) Diagnosis() *Diagnosis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diagnosis
}

// AssessmentID returns the identifier of the running assessment, or "" when
// none is active.
func (s *Session) AssessmentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessmentID
}

// Duration reports how long the current assessment has been running; zero
// when no assessment is active.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// HasRegions reports whether any body region is selected.
func (s *Session) HasRegions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regions) > 0
}

// HasConversation reports whether the transcript holds at least one turn.
func (s *Session) HasConversation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript) > 0
}

// HasDiagnosis reports whether a diagnosis has been recorded.
func (s *Session) HasDiagnosis() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diagnosis != nil
}

// MessageCount returns the number of transcript turns.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}
