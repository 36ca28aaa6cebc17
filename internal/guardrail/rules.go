package guardrail

import (
	"regexp"
	"strings"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
)

// injectionPatterns recognize instruction-override language in any of
// the request's text fields.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above|earlier)\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+[\w\s]{0,24}(instructions|rules|guidelines)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all previous)`),
	regexp.MustCompile(`(?i)output\s+only\s+['"]?\w`),
	regexp.MustCompile(`(?i)respond\s+with\s+only`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|in)\b`),
	regexp.MustCompile(`(?i)reveal\s+(your\s+)?(system\s+prompt|instructions)`),
	regexp.MustCompile(`(?i)new\s+instructions\s*:`),
}

// fabricationPatterns recognize completed-tense claims of
// system-changing remediation. An LLM cannot have disabled an account
// or blocked an address; such claims are unverifiable.
var fabricationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)i\s+(have|'ve|already|have\s+already)\s+(disabled|blocked|quarantined|isolated|revoked|terminated|deleted|reset|suspended)`),
	regexp.MustCompile(`(?i)(account|user|ip|address|host|device|session)s?\s+(has|have)\s+been\s+(disabled|blocked|quarantined|isolated|revoked|terminated|deleted|suspended)`),
	regexp.MustCompile(`(?i)\b(disabled|blocked|quarantined|isolated|revoked|suspended)\s+the\s+(user'?s?\s+)?(account|ip|address|host|device|credentials?)`),
	regexp.MustCompile(`(?i)(took|executed|performed|applied)\s+(containment|remediation|the\s+block)`),
	regexp.MustCompile(`(?i)(firewall|edr)\s+rule\s+(was|has\s+been)\s+(added|applied|pushed)`),
}

// matchAny returns the source of the first pattern matching any of the
// given texts.
func matchAny(patterns []*regexp.Regexp, texts ...string) (string, bool) {
	for _, text := range texts {
		for _, p := range patterns {
			if p.MatchString(text) {
				return p.String(), true
			}
		}
	}
	return "", false
}

// intentRule maps recommendation language onto a member of the action
// set. Rules are checked in order and the first hit wins.
type intentRule struct {
	act  action.Action
	cues []string
}

var intentRules = []intentRule{
	{action.Escalate, []string{
		"escalat", "tier 2", "tier two", "tier-2", "incident response",
		"page ", "urgent", "immediately", "contain",
	}},
	{action.Close, []string{
		"close", "benign", "false positive", "resolve", "no action needed",
		"nothing to do",
	}},
	{action.NeedsMoreInfo, []string{
		"more info", "missing", "insufficient", "cannot decide",
		"ambiguous", "unclear", "need more", "not enough data",
	}},
	{action.Monitor, []string{
		"monitor", "watch", "observe", "keep an eye", "suspicious",
		"not confirmed", "unconfirmed", "low confidence",
	}},
}

// classifyIntent maps a free-text proposed action to the closest
// member of the action set. Exact members pass through; language with
// no recognizable intent falls back to NeedsMoreInfo.
func classifyIntent(proposed string) action.Action {
	if a := action.Action(proposed); a.Valid() {
		return a
	}
	lower := strings.ToLower(proposed)
	for _, rule := range intentRules {
		for _, cue := range rule.cues {
			if strings.Contains(lower, cue) {
				return rule.act
			}
		}
	}
	return action.NeedsMoreInfo
}
