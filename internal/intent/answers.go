package intent

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed answers.yaml
var answersYAML []byte

type answerBucket struct {
	Key      string   `yaml:"key"`
	Patterns []string `yaml:"patterns"`
	Answer   string   `yaml:"answer"`
}

type answerBank struct {
	Answers []answerBucket `yaml:"answers"`
}

var (
	bankOnce sync.Once
	bank     answerBank
)

func loadBank() answerBank {
	bankOnce.Do(func() {
		// The bank ships inside the binary; a parse failure is a build
		// defect, not a runtime condition.
		if err := yaml.Unmarshal(answersYAML, &bank); err != nil {
			bank = answerBank{}
		}
	})
	return bank
}

// lookupAnswer scans the canned-answer buckets in order and returns the first
// whose patterns match the lowercased input.
func lookupAnswer(lower string) (key, answer string, ok bool) {
	for _, b := range loadBank().Answers {
		for _, p := range b.Patterns {
			if p != "" && strings.Contains(lower, p) {
				return b.Key, b.Answer, true
			}
		}
	}
	return "", "", false
}

// Buckets exposes the bucket keys, in match order. Used by the help command.
func Buckets() []string {
	bank := loadBank()
	keys := make([]string, 0, len(bank.Answers))
	for _, b := range bank.Answers {
		keys = append(keys, b.Key)
	}
	return keys
}
