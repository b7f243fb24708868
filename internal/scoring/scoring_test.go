package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/lead-services/internal/appconfig"
	"github.com/leadflowhq/lead-services/models"
)

func testConfig() appconfig.ScoringConfig {
	return appconfig.ScoringConfig{
		CompanyRules: []appconfig.Rule{
			{Tag: "saas", Any: []string{"software", "saas", "cloud"}, Weight: 30},
			{Tag: "agency", Any: []string{"agency", "consulting"}, Weight: 20},
		},
		Penalties: []appconfig.Rule{
			{Tag: "nonprofit", Any: []string{"charity", "nonprofit"}, Weight: 25},
		},
		VerifiedEmail: 20,
		HasPhone:      15,
		HasLinkedin:   10,
		HasWebsite:    5,
		HotThreshold:  70,
		WarmThreshold: 40,
	}
}

func TestScoreMatchesCompanyRules(t *testing.T) {
	scorer := NewScorer(testConfig())

	lead := &models.Lead{CompanyName: "Acme Cloud Software"}
	score, tags := scorer.Score(lead)

	assert.Equal(t, 30, score, "expected a single saas rule hit")
	assert.Equal(t, []string{"saas"}, tags)
}

func TestScoreAppliesPenaltiesAndBonuses(t *testing.T) {
	scorer := NewScorer(testConfig())

	lead := &models.Lead{
		CompanyName:   "Helping Hands Charity",
		EmailVerified: true,
		PhoneNumber:   "+15550001111",
	}
	score, tags := scorer.Score(lead)

	// -25 penalty +20 verified +15 phone
	assert.Equal(t, 10, score)
	assert.Contains(t, tags, "nonprofit")
}

func TestScoreClampsToRange(t *testing.T) {
	scorer := NewScorer(testConfig())

	lead := &models.Lead{CompanyName: "Nonprofit Charity"}
	score, _ := scorer.Score(lead)
	assert.Equal(t, 0, score, "score should never go negative")

	lead = &models.Lead{
		CompanyName:    "SaaS Consulting Agency Software Cloud",
		CompanyWebsite: "https://example.com",
		EmailVerified:  true,
		PhoneNumber:    "+15550001111",
		LinkedinURL:    "https://linkedin.com/in/someone",
	}
	score, _ = scorer.Score(lead)
	assert.Equal(t, 100, score, "score should cap at 100")
}

func TestTierBands(t *testing.T) {
	scorer := NewScorer(testConfig())

	assert.Equal(t, models.TierHot, scorer.Tier(70))
	assert.Equal(t, models.TierWarm, scorer.Tier(40))
	assert.Equal(t, models.TierWarm, scorer.Tier(69))
	assert.Equal(t, models.TierCold, scorer.Tier(39))
}

func TestApplySetsScoreAndTier(t *testing.T) {
	scorer := NewScorer(testConfig())

	lead := &models.Lead{
		CompanyName:   "Acme Software",
		EmailVerified: true,
		PhoneNumber:   "+15550001111",
	}
	scorer.Apply(lead)

	assert.Equal(t, 65, lead.Score)
	assert.Equal(t, models.TierWarm, lead.Tier)
}
