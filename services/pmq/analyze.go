package pmq

import (
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// speaker names at or above this JaroWinkler similarity are flagged as
// likely variants of the same person
const aliasThreshold = 0.93

// SpeakerAlias is a pair of distinct speaker names in a section that
// look like the same person. Advisory only, the counts in a report
// always treat them as distinct.
type SpeakerAlias struct {
	A          string
	B          string
	Similarity float64
}

// Report describes the structure of one located session.
type Report struct {
	TotalRows int
	// rows carrying an oral question number
	NumQuestions int
	// distinct named speakers, rows without one are excluded
	NumSpeakers int
	// frequency of each speech type tag, untyped rows excluded
	SpeechTypes map[string]int
	// distinct canonical question tokens, ordered by integer suffix
	// with malformed tokens at the end
	QuestionNumbers []string
	// the numbers 1..max are all present
	QuestionSequenceComplete bool
	// the gaps, when the sequence is incomplete
	MissingQuestionNumbers []int
	HasStartMarker         bool
	HasEngagementQuestion  bool
	SpeakerAliases         []SpeakerAlias
}

// Analyze computes descriptive statistics over a located section. It
// is pure, absent fields are excluded from counts rather than failing,
// and running it twice on the same section gives the same report.
func Analyze(section Section) Report {
	report := Report{
		TotalRows:                len(section.Rows),
		SpeechTypes:              map[string]int{},
		QuestionSequenceComplete: true,
	}

	speakers := map[string]bool{}
	tokens := map[string]bool{}
	for _, row := range section.Rows {
		if row.HasOralQnum {
			report.NumQuestions++
		}
		if row.SpeakerName != nil {
			speakers[*row.SpeakerName] = true
		}
		if row.Type != nil {
			report.SpeechTypes[*row.Type]++
		}
		if tok := QuestionToken(row.Contribution); tok != "" {
			tokens[tok] = true
		}
		if row.StartsSession {
			report.HasStartMarker = true
		}
		if row.IsEngagementQuestion {
			report.HasEngagementQuestion = true
		}
	}
	report.NumSpeakers = len(speakers)
	report.QuestionNumbers = sortQuestionTokens(tokens)

	report.MissingQuestionNumbers = missingOrdinals(report.QuestionNumbers)
	report.QuestionSequenceComplete = len(report.MissingQuestionNumbers) == 0
	report.SpeakerAliases = findAliases(speakers)

	return report
}

func sortQuestionTokens(tokens map[string]bool) []string {
	out := make([]string, 0, len(tokens))
	for tok := range tokens {
		out = append(out, tok)
	}
	slices.SortFunc(out, func(a, b string) int {
		an, aok := QuestionOrdinal(a)
		bn, bok := QuestionOrdinal(b)
		if aok && bok {
			return an - bn
		}
		if aok {
			return -1
		}
		if bok {
			return 1
		}
		return strings.Compare(a, b)
	})
	return out
}

func missingOrdinals(tokens []string) []int {
	max := 0
	present := map[int]bool{}
	for _, tok := range tokens {
		n, ok := QuestionOrdinal(tok)
		if !ok {
			continue
		}
		present[n] = true
		if n > max {
			max = n
		}
	}

	var missing []int
	for n := 1; n <= max; n++ {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// findAliases flags near-identical speaker name pairs. Editions are
// inconsistent about honorifics and spacing, so the same member can
// show up under two spellings and inflate the speaker count.
func findAliases(speakers map[string]bool) []SpeakerAlias {
	names := make([]string, 0, len(speakers))
	for name := range speakers {
		names = append(names, name)
	}
	slices.Sort(names)

	var aliases []SpeakerAlias
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			sim := matchr.JaroWinkler(names[i], names[j], false)
			if sim >= aliasThreshold {
				aliases = append(aliases, SpeakerAlias{
					A:          names[i],
					B:          names[j],
					Similarity: sim,
				})
			}
		}
	}
	return aliases
}
