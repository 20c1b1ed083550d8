package progress

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/calebdunn/studypath-backend/internal/types"
)

// Entry marks one roadmap item as completed. A key is present in a Store only
// if the item has been completed; toggling an item off deletes its key rather
// than storing completed=false. Persisted stores round-trip on that rule.
type Entry struct {
	Completed        bool       `json:"completed"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	TimeSpentMinutes int        `json:"timeSpent,omitempty"`
}

// Store maps node keys to completion entries. The zero value (nil map) is a
// valid, empty store.
type Store map[string]Entry

func (s Store) Completed(key string) bool {
	e, ok := s[key]
	return ok && e.Completed
}

// Toggle returns a new store with the entry for key flipped: present-and-
// completed becomes absent, anything else becomes completed at now. The
// receiver is never mutated.
func Toggle(s Store, key string, now time.Time) Store {
	out := make(Store, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	if e, ok := out[key]; ok && e.Completed {
		delete(out, key)
		return out
	}
	ts := now
	out[key] = Entry{Completed: true, Timestamp: &ts}
	return out
}

// TrackableKeys enumerates every key the completion rate counts, in document
// order: prereq-{i}, topic-{i}, then step-{i}-topic-{j} and
// step-{i}-milestone-{j} for each week.
func TrackableKeys(doc types.PlanDocument) []string {
	keys := make([]string, 0, len(doc.Prerequisites)+len(doc.CoreTopics))
	for i := range doc.Prerequisites {
		keys = append(keys, PrereqKey(i))
	}
	for i := range doc.CoreTopics {
		keys = append(keys, TopicKey(i))
	}
	for i, step := range doc.ProgressSteps {
		for j := range step.Topics {
			keys = append(keys, StepTopicKey(i, j))
		}
		for j := range step.Milestones {
			keys = append(keys, StepMilestoneKey(i, j))
		}
	}
	return keys
}

// CompletionRate reports completed trackable items as a rounded percentage.
// An empty plan yields 0.
func CompletionRate(doc types.PlanDocument, s Store) int {
	keys := TrackableKeys(doc)
	if len(keys) == 0 {
		return 0
	}
	completed := 0
	for _, k := range keys {
		if s.Completed(k) {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(keys))))
}

// envelope is the persisted shape. Version was added when this store moved
// server-side; version 0 payloads are the bare entry map.
type envelope struct {
	Version int   `json:"version"`
	Entries Store `json:"entries"`
}

const storeVersion = 1

func Encode(s Store) ([]byte, error) {
	if s == nil {
		s = Store{}
	}
	return json.Marshal(envelope{Version: storeVersion, Entries: s})
}

// Decode parses a persisted store. Empty input is an empty store. A bare map
// without the version envelope is accepted for pre-versioning payloads; an
// enveloped payload with any other version is an error.
func Decode(raw []byte) (Store, error) {
	if len(raw) == 0 {
		return Store{}, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Entries != nil {
		if env.Version != storeVersion {
			return nil, fmt.Errorf("unknown progress store version %d", env.Version)
		}
		return env.Entries, nil
	}
	var bare Store
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, err
	}
	if bare == nil {
		bare = Store{}
	}
	return bare, nil
}
