package tuning

// Report counts what a climb did. Every step evaluates its children and then
// either accepts its best child or rejects it.
type Report struct {
	StepsPlanned         int `json:"steps_planned"`
	StepsExecuted        int `json:"steps_executed"`
	CandidateEvaluations int `json:"candidate_evaluations"`
	AcceptedCandidates   int `json:"accepted_candidates"`
	RejectedCandidates   int `json:"rejected_candidates"`
}
