package core

import (
	"log"
	"regexp"
	"strings"

	"github.com/phonescout/phonescout/internal/metrics"
)

var promptInjectionPatterns = compilePatterns([]string{
	`ignore\s+(previous|all|your)\s+(instructions?|rules?|prompts?)`,
	`reveal\s+(your|the)\s+(system\s+)?(prompt|instructions?|rules?)`,
	`what\s+(is|are)\s+your\s+(system\s+)?(prompt|instructions?|rules?)`,
	`show\s+(me\s+)?(your|the)\s+(system\s+)?(prompt|instructions?)`,
	`forget\s+(everything|all|previous)`,
	`new\s+instructions?:`,
	`system\s+message:`,
	`<\s*system\s*>`,
	`act\s+as\s+if`,
	`pretend\s+(you|to)\s+(are|be)`,
})

var keyExtractionPatterns = compilePatterns([]string{
	`api\s+key`,
	`secret\s+key`,
	`access\s+token`,
	`credentials?`,
	`password`,
	`auth`,
})

var jailbreakPatterns = compilePatterns([]string{
	`jailbreak`,
	`bypass`,
	`hack`,
	`exploit`,
	`vulnerability`,
	`override`,
	`sudo`,
	`admin\s+mode`,
	`developer\s+mode`,
	`debug\s+mode`,
})

var toxicPatterns = compilePatterns([]string{
	`trash\s+brand`,
	`worst\s+phone`,
	`garbage`,
	`scam`,
	`fraud`,
})

var (
	// Long alphanumeric runs look like leaked keys.
	apiKeyLeakPattern = regexp.MustCompile(`[A-Za-z0-9]{32,}`)
	// Anything shaped like an embedded system prompt is stripped outright.
	systemSpanPattern = regexp.MustCompile(`(?is)<\s*system\s*>.*?<\s*/\s*system\s*>`)
)

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile("(?i)" + p)
	}
	return compiled
}

// SafetyService is the stateless pre-filter run before any paid API call.
type SafetyService struct {
	maxQueryLength  int
	blockedKeywords []string
}

func NewSafetyService(maxQueryLength int, blockedKeywords []string) *SafetyService {
	lowered := make([]string, len(blockedKeywords))
	for i, kw := range blockedKeywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &SafetyService{maxQueryLength: maxQueryLength, blockedKeywords: lowered}
}

// CheckQuery reports whether the query is safe to process. The first failing
// check wins; reason is empty for safe queries.
func (s *SafetyService) CheckQuery(query string) (bool, string) {
	queryLower := strings.ToLower(query)

	if len(query) > s.maxQueryLength {
		log.Printf("SAFETY | result=blocked | reason=query_too_long | length=%d", len(query))
		metrics.SafetyBlocks.WithLabelValues("query_too_long").Inc()
		return false, "Query too long"
	}

	for _, keyword := range s.blockedKeywords {
		if strings.Contains(queryLower, keyword) {
			log.Printf("SAFETY | result=blocked | type=blocked_keyword | keyword=%s", keyword)
			metrics.SafetyBlocks.WithLabelValues("blocked_keyword").Inc()
			return false, "Query contains blocked content"
		}
	}

	if matchesAny(queryLower, promptInjectionPatterns) {
		log.Println("SAFETY | result=blocked | type=prompt_injection")
		metrics.SafetyBlocks.WithLabelValues("prompt_injection").Inc()
		return false, "Adversarial query detected"
	}

	if matchesAny(queryLower, keyExtractionPatterns) {
		log.Println("SAFETY | result=blocked | type=key_extraction")
		metrics.SafetyBlocks.WithLabelValues("key_extraction").Inc()
		return false, "Adversarial query detected"
	}

	if matchesAny(queryLower, jailbreakPatterns) {
		log.Println("SAFETY | result=blocked | type=jailbreak")
		metrics.SafetyBlocks.WithLabelValues("jailbreak").Inc()
		return false, "Adversarial query detected"
	}

	if matchesAny(queryLower, toxicPatterns) {
		log.Println("SAFETY | result=blocked | type=toxic_content")
		metrics.SafetyBlocks.WithLabelValues("toxic_content").Inc()
		return false, "Inappropriate content detected"
	}

	return true, ""
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// SanitizeOutput redacts potential key leakage and strips system-prompt
// shaped spans before text reaches the caller.
func (s *SafetyService) SanitizeOutput(text string) string {
	text = apiKeyLeakPattern.ReplaceAllString(text, "[REDACTED]")
	text = systemSpanPattern.ReplaceAllString(text, "")
	return text
}

// SafeMessage returns the fixed user-facing deflection text for a rejection
// kind, falling back to the generic system-error message.
func (s *SafetyService) SafeMessage(kind string) string {
	if msg, ok := safetyMessages[kind]; ok {
		return msg
	}
	return safetyMessages["system_error"]
}
