// Package matcher answers "does this utterance belong to category C".
//
// The analyses only see the Matcher interface. Static regex sets answer
// directly; remote classifiers return errors and are adapted with Failsafe
// or Strict, optionally wrapped in Memoize for per-call determinism.
package matcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type Category int

const (
	Profanity Category = iota
	Verification
	SensitiveInfo
)

var categoryNames = map[Category]string{
	Profanity:     "profanity",
	Verification:  "verification",
	SensitiveInfo: "sensitive_info",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Matcher must answer deterministically within one analysis call.
type Matcher interface {
	Matches(ctx context.Context, text string, c Category) bool
}

// Func adapts a plain function to Matcher.
type Func func(ctx context.Context, text string, c Category) bool

func (f Func) Matches(ctx context.Context, text string, c Category) bool { return f(ctx, text, c) }

// Classifier is a fallible backend, typically a network call.
type Classifier interface {
	Classify(ctx context.Context, text string, c Category) (bool, error)
}

// Failsafe degrades every classifier error to "no match" after logging it.
func Failsafe(c Classifier, log logrus.FieldLogger) Matcher {
	return &failsafe{c: c, log: log.WithField("component", "matcher")}
}

type failsafe struct {
	c   Classifier
	log logrus.FieldLogger
}

func (f *failsafe) Matches(ctx context.Context, text string, c Category) bool {
	ok, err := f.c.Classify(ctx, text, c)
	if err != nil {
		f.log.WithError(err).WithField("category", c).Warn("classifier failed, treating as no match")
		return false
	}
	return ok
}

// Strict records the first classifier error. Once an error is recorded every
// later call answers false without reaching the classifier; callers check
// Err after the scan and discard the result if it is set.
type Strict struct {
	c Classifier

	mu  sync.Mutex
	err error
}

func NewStrict(c Classifier) *Strict { return &Strict{c: c} }

func (s *Strict) Matches(ctx context.Context, text string, c Category) bool {
	if s.Err() != nil {
		return false
	}
	ok, err := s.c.Classify(ctx, text, c)
	if err != nil {
		s.mu.Lock()
		if s.err == nil {
			s.err = fmt.Errorf("classify %s: %w", c, err)
		}
		s.mu.Unlock()
		return false
	}
	return ok
}

func (s *Strict) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

type memoKey struct {
	text string
	c    Category
}

// Memoize answers each (text, category) pair once. Use a fresh memo per
// analysis call; it is safe for concurrent use.
func Memoize(m Matcher) Matcher {
	return &memo{m: m, seen: map[memoKey]bool{}}
}

type memo struct {
	m Matcher

	mu   sync.Mutex
	seen map[memoKey]bool
}

func (m *memo) Matches(ctx context.Context, text string, c Category) bool {
	k := memoKey{text, c}
	m.mu.Lock()
	v, ok := m.seen[k]
	m.mu.Unlock()
	if ok {
		return v
	}
	v = m.m.Matches(ctx, text, c)
	m.mu.Lock()
	if prev, ok := m.seen[k]; ok {
		v = prev
	} else {
		m.seen[k] = v
	}
	m.mu.Unlock()
	return v
}
