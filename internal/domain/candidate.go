package domain

// DefaultCandidateLimit caps the number of ranked candidates produced per run
const DefaultCandidateLimit = 50

// Candidate is a vocabulary term observed in the corpus with its run-local count
type Candidate struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Names returns the candidate names in order, without counts
func Names(candidates []Candidate) []string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	return names
}
