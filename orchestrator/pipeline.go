package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/callscope/clients"
	"github.com/maastricht-university/callscope/compliance"
	cfg "github.com/maastricht-university/callscope/config"
	"github.com/maastricht-university/callscope/matcher"
	"github.com/maastricht-university/callscope/metrics"
	"github.com/maastricht-university/callscope/profanity"
	"github.com/maastricht-university/callscope/transcript"
)

type Pipeline struct {
	cfg *cfg.Root
	log logrus.FieldLogger

	// exactly one of patterns and classifier is set
	patterns   matcher.Matcher
	classifier matcher.Classifier
}

func NewPipeline(c *cfg.Root, log logrus.FieldLogger) (*Pipeline, error) {
	p := &Pipeline{cfg: c, log: log.WithField("component", "pipeline")}

	switch c.Analysis.Matcher {
	case cfg.MatcherLLM:
		llm := c.Services.LLM
		client, err := clients.NewLLM(clients.NewHTTP(llm.TimeoutDuration()), clients.LLMConfig{
			URL:        llm.URL,
			Model:      llm.Model,
			APIKey:     llm.APIKey,
			RateLimit:  llm.RateLimit,
			Burst:      llm.Burst,
			MaxRetries: llm.MaxRetries,
		}, log)
		if err != nil {
			return nil, err
		}
		p.classifier = matcher.NewLLMClassifier(client)
	default:
		if c.Analysis.PatternsFile != "" {
			pats, err := matcher.LoadPatterns(c.Analysis.PatternsFile)
			if err != nil {
				return nil, fmt.Errorf("patterns %s: %w", filepath.Base(c.Analysis.PatternsFile), err)
			}
			p.patterns = pats
		} else {
			p.patterns = matcher.Default()
		}
	}
	return p, nil
}

// Run loads a transcript file and analyzes it.
func (p *Pipeline) Run(ctx context.Context, path string) (*Report, error) {
	recs, err := transcript.Load(path)
	if err != nil {
		return nil, err
	}
	segs, err := transcript.Normalize(recs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p.Analyze(ctx, path, segs)
}

// Analyze runs the duration, compliance and profanity analyses concurrently
// over segs. segs is only read.
func (p *Pipeline) Analyze(ctx context.Context, source string, segs []transcript.Segment) (*Report, error) {
	r := &Report{
		ID:          uuid.NewString(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Segments:    len(segs),
		Tolerance:   p.cfg.Analysis.Tolerance,
		Matcher:     p.cfg.Analysis.Matcher,
	}
	log := p.log.WithField("report_id", r.ID)

	m, strict := p.matcherForRun()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Durations = metrics.Classify(segs, r.Tolerance)
		r.Summary = metrics.Summarize(r.Durations)
		r.TalkTime = metrics.SpeakerTalkTime(segs)
		return nil
	})
	g.Go(func() error {
		r.Compliance = compliance.Check(gctx, segs, m)
		return gctx.Err()
	})
	g.Go(func() error {
		r.Profanity = profanity.Detect(gctx, segs, m)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := p.runErr(ctx, strict); err != nil {
		return nil, err
	}

	r.SelfOverlaps = transcript.SelfOverlaps(segs)
	for _, o := range r.SelfOverlaps {
		log.WithFields(logrus.Fields{
			"speaker": o.Speaker.String(),
			"first":   o.First,
			"second":  o.Second,
		}).Warn("same-speaker segments overlap")
	}
	if r.Durations.OvertalkCapped {
		log.Warn("pairwise overtalk exceeded speaking time and was capped")
	}

	log.WithFields(logrus.Fields{
		"segments":  r.Segments,
		"total":     r.Durations.Total,
		"violation": r.Compliance.Violation,
	}).Info("analysis complete")
	return r, nil
}

// matcherForRun returns a fresh memoized matcher so answers are stable
// within one run and never shared across runs.
func (p *Pipeline) matcherForRun() (matcher.Matcher, *matcher.Strict) {
	if p.classifier == nil {
		return p.patterns, nil
	}
	if p.cfg.Analysis.Strict {
		s := matcher.NewStrict(p.classifier)
		return matcher.Memoize(s), s
	}
	return matcher.Memoize(matcher.Failsafe(p.classifier, p.log)), nil
}

// CheckCompliance runs only the disclosure ordering check.
func (p *Pipeline) CheckCompliance(ctx context.Context, segs []transcript.Segment) (compliance.Verdict, error) {
	if p.classifier != nil && p.cfg.Analysis.Strict {
		// a single pass asks each segment at most once per category
		v, err := compliance.CheckStrict(ctx, segs, matcher.NewStrict(p.classifier))
		if err != nil {
			return compliance.Verdict{}, fmt.Errorf("matcher: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return compliance.Verdict{}, err
		}
		return v, nil
	}
	m, strict := p.matcherForRun()
	v := compliance.Check(ctx, segs, m)
	if err := p.runErr(ctx, strict); err != nil {
		return compliance.Verdict{}, err
	}
	return v, nil
}

// DetectProfanity runs only the per-speaker profanity scan.
func (p *Pipeline) DetectProfanity(ctx context.Context, segs []transcript.Segment) (profanity.Flags, error) {
	m, strict := p.matcherForRun()
	f := profanity.Detect(ctx, segs, m)
	if err := p.runErr(ctx, strict); err != nil {
		return profanity.Flags{}, err
	}
	return f, nil
}

func (p *Pipeline) runErr(ctx context.Context, strict *matcher.Strict) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strict != nil {
		if err := strict.Err(); err != nil {
			return fmt.Errorf("matcher: %w", err)
		}
	}
	return nil
}
