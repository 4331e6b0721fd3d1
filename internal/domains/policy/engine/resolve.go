package engine

import "fmt"

// InactiveMode decides what an assigned but deactivated policy means for its travelers.
type InactiveMode string

const (
	// InactiveUnrestricted treats the traveler as having no policy at all.
	InactiveUnrestricted InactiveMode = "unrestricted"
	// InactiveOrgDefault falls back to the organization default, suspending bookings when
	// there is no active default either.
	InactiveOrgDefault InactiveMode = "org_default"
	// InactiveBlock suspends bookings until the traveler gets an active policy.
	InactiveBlock InactiveMode = "block"
)

func ParseInactiveMode(value string) (InactiveMode, error) {
	switch mode := InactiveMode(value); mode {
	case InactiveUnrestricted, InactiveOrgDefault, InactiveBlock:
		return mode, nil
	case "":
		return InactiveUnrestricted, nil
	default:
		return "", fmt.Errorf("unknown inactive policy mode %q", value)
	}
}

// Candidate is a stored policy together with its active flag.
type Candidate struct {
	Policy Policy
	Active bool
}

// Resolve picks the policy a traveler books under. assigned and orgDefault may be nil.
//
//	assigned active            -> assigned
//	assigned inactive          -> per mode
//	none assigned, default ok  -> organization default
//	otherwise                  -> Unrestricted
func Resolve(assigned, orgDefault *Candidate, mode InactiveMode) Policy {
	if assigned == nil {
		if orgDefault != nil && orgDefault.Active {
			return orgDefault.Policy
		}

		return Unrestricted()
	}

	if assigned.Active {
		return assigned.Policy
	}

	switch mode {
	case InactiveBlock:
		return suspended(assigned.Policy)
	case InactiveOrgDefault:
		if orgDefault != nil && orgDefault.Active {
			return orgDefault.Policy
		}

		return suspended(assigned.Policy)
	default:
		return Unrestricted()
	}
}

func suspended(policy Policy) Policy {
	return Policy{ID: policy.ID, Name: policy.Name, Suspended: true}
}
