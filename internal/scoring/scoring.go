package scoring

import (
	"strings"

	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/models"
)

// Scorer assigns a 0-100 score and a tier to a lead based on weighted
// keyword rules and profile completeness bonuses.
type Scorer struct {
	cfg appconfig.ScoringConfig
}

func NewScorer(cfg appconfig.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the lead's score and matched rule tags. The score is
// clamped to the 0-100 range.
func (s *Scorer) Score(lead *models.Lead) (int, []string) {
	score := 0
	var tags []string

	haystack := strings.ToLower(lead.CompanyName + " " + lead.CompanyWebsite)

	for _, rule := range s.cfg.CompanyRules {
		if matchAny(haystack, rule.Any) {
			score += rule.Weight
			if rule.Tag != "" {
				tags = append(tags, rule.Tag)
			}
		}
	}
	for _, rule := range s.cfg.Penalties {
		if matchAny(haystack, rule.Any) {
			score -= rule.Weight
			if rule.Tag != "" {
				tags = append(tags, rule.Tag)
			}
		}
	}

	if lead.EmailVerified {
		score += s.cfg.VerifiedEmail
	}
	if lead.PhoneNumber != "" {
		score += s.cfg.HasPhone
	}
	if lead.LinkedinURL != "" {
		score += s.cfg.HasLinkedin
	}
	if lead.CompanyWebsite != "" {
		score += s.cfg.HasWebsite
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, tags
}

// Tier maps a score onto the hot/warm/cold bands.
func (s *Scorer) Tier(score int) models.LeadTier {
	switch {
	case score >= s.cfg.HotThreshold:
		return models.TierHot
	case score >= s.cfg.WarmThreshold:
		return models.TierWarm
	default:
		return models.TierCold
	}
}

// Apply scores the lead in place.
func (s *Scorer) Apply(lead *models.Lead) {
	score, _ := s.Score(lead)
	lead.Score = score
	lead.Tier = s.Tier(score)
}

func matchAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
