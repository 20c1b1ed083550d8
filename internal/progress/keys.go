package progress

import "fmt"

// Node keys are derived purely from an item's position in the plan document,
// so they stay stable across rebuilds of the same document. Reordering the
// document invalidates prior progress; callers accept that.

const (
	StartKey  = "start"
	FinishKey = "finish"
)

func PrereqKey(i int) string { return fmt.Sprintf("prereq-%d", i) }

func TopicKey(i int) string { return fmt.Sprintf("topic-%d", i) }

func StepKey(i int) string { return fmt.Sprintf("step-%d", i) }

func StepTopicKey(i, j int) string { return fmt.Sprintf("step-%d-topic-%d", i, j) }

func StepMilestoneKey(i, j int) string { return fmt.Sprintf("step-%d-milestone-%d", i, j) }

// Synthetic reports whether key names one of the two synthetic chain
// endpoints, which are never toggleable.
func Synthetic(key string) bool {
	return key == StartKey || key == FinishKey
}
