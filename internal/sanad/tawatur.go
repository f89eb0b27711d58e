package sanad

import (
	"sort"

	domainsanad "github.com/albarami/idis/internal/domain/sanad"
	"github.com/shopspring/decimal"
)

// Result is the outcome of Tawatur corroboration assessment.
type Result struct {
	Status              domainsanad.CorroborationLevel
	IndependentCount    int
	CollusionRisk       decimal.Decimal
	IndependentClusters []string
}

// AssessTawatur implements spec.md §4.2 step 3: count chains whose roots
// fall in distinct independence clusters, and classify the corroboration
// status from that count. Sources without a declared cluster are each
// treated as their own singleton cluster (fail-closed: unknown independence
// is never assumed to corroborate another source).
func AssessTawatur(sources []SourceProfile) Result {
	clusters := map[string]bool{}
	var anonymousSingleton int
	for _, s := range sources {
		if s.IndependenceClusterID == "" {
			anonymousSingleton++
			continue
		}
		clusters[s.IndependenceClusterID] = true
	}

	ids := make([]string, 0, len(clusters))
	for id := range clusters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	count := len(ids) + anonymousSingleton

	var status domainsanad.CorroborationLevel
	switch {
	case count == 0:
		status = domainsanad.CorroborationNone
	case count == 1:
		status = domainsanad.CorroborationAhad1
	case count == 2:
		status = domainsanad.CorroborationAhad2
	default:
		status = domainsanad.CorroborationMutawatir
	}

	// Collusion risk falls as independent corroboration grows: with no
	// chain the risk is 1, and each independent cluster halves it, so a
	// single chain scores 0.5.
	risk := decimal.RequireFromString("1")
	half := decimal.RequireFromString("0.5")
	for i := 0; i < count; i++ {
		risk = risk.Mul(half)
	}

	return Result{
		Status:              status,
		IndependentCount:    count,
		CollusionRisk:       risk,
		IndependentClusters: ids,
	}
}
