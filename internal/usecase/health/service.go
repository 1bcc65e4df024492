package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are configured.
	Healthy Status = "ok"
	// Degraded indicates at least one component lacks configuration.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Component names reported by Check.
const (
	ComponentKnowledge = "knowledge"
	ComponentSignature = "signature"
)

// Report aggregates check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service checks configuration readiness. It never calls the vendors.
type Service struct {
	knowledge ConfigChecker
	signature ConfigChecker
}

// New creates a Service. Either checker can be nil.
func New(knowledge, signature ConfigChecker) *Service {
	return &Service{knowledge: knowledge, signature: signature}
}

// Check reports readiness of every configured component.
func (s *Service) Check(_ context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.knowledge != nil {
		checks[ComponentKnowledge] = result(s.knowledge)
	}
	if s.signature != nil {
		checks[ComponentSignature] = result(s.signature)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(c ConfigChecker) CheckResult {
	if c.Configured() {
		return CheckOK
	}
	return CheckError
}
