// Package classifier maps free-text learning queries to coarse topic tags
// using ordered keyword substring matching.
package classifier

import (
	"strings"

	"github.com/iconidentify/learnvid/internal/domain"
)

// Classifier maps free text to a topic tag. It holds only immutable tables
// and is safe for concurrent use.
type Classifier struct {
	sets    []TopicTagSet
	bySubj  map[string]int
	aliases map[string]string
}

// New creates a classifier over the given tag sets. Sets are copied and
// keywords lower-cased so later mutation of the input has no effect.
func New(sets []TopicTagSet) *Classifier {
	c := &Classifier{
		sets:    make([]TopicTagSet, 0, len(sets)),
		bySubj:  make(map[string]int, len(sets)),
		aliases: make(map[string]string, len(subjectAliases)),
	}
	for _, set := range sets {
		cp := TopicTagSet{Subject: domain.NormalizeTag(set.Subject)}
		for _, entry := range set.Topics {
			kws := make([]string, 0, len(entry.Keywords))
			for _, kw := range entry.Keywords {
				if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
					kws = append(kws, kw)
				}
			}
			cp.Topics = append(cp.Topics, TopicEntry{Topic: entry.Topic, Keywords: kws})
		}
		c.bySubj[cp.Subject] = len(c.sets)
		c.sets = append(c.sets, cp)
	}
	for k, v := range subjectAliases {
		c.aliases[k] = v
	}
	return c
}

// NewDefault creates a classifier over DefaultTagSets.
func NewDefault() *Classifier {
	return New(DefaultTagSets)
}

// Classify returns the topic for text within the hinted subject.
// Topics are tried in declaration order and the first keyword hit wins;
// there is no relevance scoring. An unknown or empty hint scans every
// subject in declaration order. No match yields DefaultTopic.
func (c *Classifier) Classify(text, subjectHint string) string {
	topic, _ := c.ClassifyWithSubject(text, subjectHint)
	return topic
}

// ClassifyWithSubject is Classify that also reports which subject the topic
// came from. The subject is the normalized hint when no topic matched.
func (c *Classifier) ClassifyWithSubject(text, subjectHint string) (topic, subject string) {
	folded := strings.ToLower(text)
	subject = c.NormalizeSubject(subjectHint)

	if idx, ok := c.bySubj[subject]; ok {
		if t, hit := matchSet(c.sets[idx], folded); hit {
			return t, subject
		}
		return DefaultTopic, subject
	}

	for _, set := range c.sets {
		if t, hit := matchSet(set, folded); hit {
			return t, set.Subject
		}
	}
	return DefaultTopic, subject
}

// NormalizeSubject maps aliases ("maths", "evs", "sst") to canonical subjects.
// Unknown subjects are returned normalized but otherwise unchanged.
func (c *Classifier) NormalizeSubject(subject string) string {
	s := domain.NormalizeTag(subject)
	if canonical, ok := c.aliases[s]; ok {
		return canonical
	}
	return s
}

// Subjects returns the configured subjects in declaration order.
func (c *Classifier) Subjects() []string {
	out := make([]string, 0, len(c.sets))
	for _, s := range c.sets {
		out = append(out, s.Subject)
	}
	return out
}

// Topics returns the topics of a subject in declaration order.
func (c *Classifier) Topics(subject string) []string {
	idx, ok := c.bySubj[c.NormalizeSubject(subject)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.sets[idx].Topics))
	for _, t := range c.sets[idx].Topics {
		out = append(out, t.Topic)
	}
	return out
}

func matchSet(set TopicTagSet, folded string) (string, bool) {
	for _, entry := range set.Topics {
		for _, kw := range entry.Keywords {
			if strings.Contains(folded, kw) {
				return entry.Topic, true
			}
		}
	}
	return "", false
}
