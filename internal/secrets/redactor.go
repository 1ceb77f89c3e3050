package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
	"go.uber.org/zap"
)

// Finding describes one redacted value. The value itself is never kept.
type Finding struct {
	RuleID      string
	Description string
	Line        int

	secret string
}

// Result is redacted text plus what was removed from it.
type Result struct {
	Text     string
	Findings []Finding
}

// RuleCounts returns the number of findings per rule.
func (r Result) RuleCounts() map[string]int {
	counts := make(map[string]int, len(r.Findings))
	for _, f := range r.Findings {
		counts[f.RuleID]++
	}
	return counts
}

// Redactor detects and masks secrets. It is safe for concurrent use.
type Redactor struct {
	mu       sync.Mutex
	detector *detect.Detector
	logger   *zap.Logger
}

// NewRedactor builds a Redactor over the default Gitleaks rules. A nil
// allowlist exempts nothing.
func NewRedactor(allowlist *Allowlist, logger *zap.Logger) (*Redactor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading gitleaks rules: %w", err)
	}

	if allowlist != nil && len(allowlist.Regexes) > 0 {
		extra := &gitleaksConfig.Allowlist{Description: "strategist allowlist"}
		for _, pattern := range allowlist.Regexes {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRegex, pattern, err)
			}
			extra.Regexes = append(extra.Regexes, (*gitleaksRegexp.Regexp)(re))
		}
		detector.Config.Allowlists = append(detector.Config.Allowlists, extra)
	}

	return &Redactor{detector: detector, logger: logger}, nil
}

// Redact returns text with every detected secret replaced by a marker.
func (r *Redactor) Redact(text string) Result {
	r.mu.Lock()
	detected := r.detector.DetectString(text)
	r.mu.Unlock()

	findings := make([]Finding, 0, len(detected))
	for _, f := range detected {
		findings = append(findings, Finding{
			RuleID:      f.RuleID,
			Description: f.Description,
			Line:        f.StartLine,
			secret:      f.Secret,
		})
	}

	return Result{Text: mask(text, findings), Findings: findings}
}

// Scrub is Redact reduced to the masked text and the number of findings.
func (r *Redactor) Scrub(text string) (string, int) {
	res := r.Redact(text)
	if len(res.Findings) > 0 {
		r.logger.Warn("redacted secrets from document",
			zap.Int("findings", len(res.Findings)),
			zap.Any("rules", res.RuleCounts()))
	}
	return res.Text, len(res.Findings)
}

// mask replaces every occurrence of each finding's value. Longer values go
// first so a secret containing another is masked whole.
func mask(text string, findings []Finding) string {
	if len(findings) == 0 {
		return text
	}

	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].secret) > len(sorted[j].secret)
	})

	for _, f := range sorted {
		if f.secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, f.secret, "[REDACTED:"+f.RuleID+"]")
	}
	return text
}
