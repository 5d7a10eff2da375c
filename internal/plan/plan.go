// Package plan defines subscription tiers and the capability checks gated on them.
package plan

// Plan is a user's subscription tier.
type Plan string

const (
	Free       Plan = "FREE"
	Pro        Plan = "PRO"
	Enterprise Plan = "ENTERPRISE"
)

// Normalize maps an unknown or empty tier string to a valid Plan.
func Normalize(s string) Plan {
	switch Plan(s) {
	case Pro:
		return Pro
	case Enterprise:
		return Enterprise
	default:
		return Free
	}
}

// IsPremium is the single entitlement predicate used by every gated feature:
// analytics access, query-param merging, and premium URL options.
// PRO and ENTERPRISE are equivalent for all of them.
func IsPremium(p Plan) bool {
	return p == Pro || p == Enterprise
}

// UsesCredits reports whether generating a link consumes a credit on this plan.
// ENTERPRISE has unlimited generation.
func UsesCredits(p Plan) bool {
	return p != Enterprise
}
