package execution

// Scheduler distributes case indexes across sessions. Every shard keeps
// corpus order.
type Scheduler interface {
	Schedule(caseCount, sessionCount int) [][]int
}

// RoundRobinScheduler distributes cases evenly across sessions
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes cases evenly across sessions using round-robin
func (s *RoundRobinScheduler) Schedule(caseCount, sessionCount int) [][]int {
	if sessionCount <= 0 {
		sessionCount = 1
	}
	if sessionCount > caseCount && caseCount > 0 {
		sessionCount = caseCount
	}

	distribution := make([][]int, sessionCount)
	for i := range distribution {
		distribution[i] = make([]int, 0)
	}

	for i := 0; i < caseCount; i++ {
		sessionIndex := i % sessionCount
		distribution[sessionIndex] = append(distribution[sessionIndex], i)
	}

	return distribution
}
