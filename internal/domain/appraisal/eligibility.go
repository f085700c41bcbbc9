package appraisal

import (
	"fmt"
	"time"
)

// EmployeeProfile carries the directory fields the eligibility rules read.
type EmployeeProfile struct {
	EmployeeID     string
	UserID         string
	Department     string
	EmploymentType string
	OnProbation    bool
	StartDate      time.Time
	ManagerID      string
}

const (
	EligibilityEligible          = "eligible"
	EligibilityDeferred          = "deferred"
	EligibilityPendingHRReview   = "pending_hr_review"
	EligibilityBelowMinService   = "not_eligible_min_service"
	EligibilityProbationExcluded = "not_eligible_probation"
	EligibilityProrataDisabled   = "not_eligible_prorata_disabled"
)

type EligibilityDecision struct {
	Eligible bool
	Status   string
	Reason   string
	Prorated bool
}

// CheckEligibility decides whether one employee gets an appraisal when a
// cycle activates. Service length is measured against the cycle end date.
// The new-joiner policy applies only to employees who joined after the
// cycle started.
func CheckEligibility(emp EmployeeProfile, cycle Cycle) EligibilityDecision {
	if emp.StartDate.IsZero() {
		return EligibilityDecision{Status: EligibilityDeferred, Reason: "missing start date"}
	}

	if cycle.EligibilityCutoffDate != nil && emp.StartDate.After(*cycle.EligibilityCutoffDate) {
		return EligibilityDecision{
			Status: EligibilityDeferred,
			Reason: fmt.Sprintf("joined after cutoff date (%s)", cycle.EligibilityCutoffDate.Format("2006-01-02")),
		}
	}

	serviceMonths := monthsBetween(emp.StartDate, cycle.EndDate)
	if serviceMonths < cycle.MinimumServiceMonths {
		return EligibilityDecision{
			Status: EligibilityBelowMinService,
			Reason: fmt.Sprintf("service %dm < minimum %dm", serviceMonths, cycle.MinimumServiceMonths),
		}
	}

	if emp.OnProbation && !cycle.IncludeProbation {
		return EligibilityDecision{Status: EligibilityProbationExcluded, Reason: "probation employees excluded"}
	}

	if emp.StartDate.After(cycle.StartDate) {
		switch cycle.NewJoinerPolicy {
		case NewJoinerAlwaysDefer:
			return EligibilityDecision{Status: EligibilityDeferred, Reason: "policy: always defer new joiners"}
		case NewJoinerManualHR:
			return EligibilityDecision{Status: EligibilityPendingHRReview, Reason: "policy: manual HR review required"}
		}
		if !cycle.ProratedAllowed {
			return EligibilityDecision{Status: EligibilityProrataDisabled, Reason: "joined after start date and proration disabled"}
		}
		return EligibilityDecision{Eligible: true, Status: EligibilityEligible, Reason: "criteria met", Prorated: true}
	}

	return EligibilityDecision{Eligible: true, Status: EligibilityEligible, Reason: "criteria met"}
}

// MatchesCriteria applies the activation filters; empty or "all" matches.
func MatchesCriteria(emp EmployeeProfile, criteria ActivationCriteria) bool {
	if criteria.Department != "" && criteria.Department != "all" && criteria.Department != emp.Department {
		return false
	}
	if criteria.EmploymentType != "" && criteria.EmploymentType != "all" && criteria.EmploymentType != emp.EmploymentType {
		return false
	}
	return true
}

func monthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
