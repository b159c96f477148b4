package execution

import (
	"reflect"
	"testing"
)

func TestRoundRobinScheduler_Schedule(t *testing.T) {
	scheduler := NewRoundRobinScheduler()

	tests := []struct {
		name         string
		caseCount    int
		sessionCount int
		expected     [][]int
	}{
		{
			name:         "single session keeps corpus order",
			caseCount:    3,
			sessionCount: 1,
			expected:     [][]int{{0, 1, 2}},
		},
		{
			name:         "even distribution",
			caseCount:    4,
			sessionCount: 2,
			expected:     [][]int{{0, 2}, {1, 3}},
		},
		{
			name:         "uneven distribution",
			caseCount:    5,
			sessionCount: 3,
			expected:     [][]int{{0, 3}, {1, 4}, {2}},
		},
		{
			name:         "more sessions than cases",
			caseCount:    2,
			sessionCount: 4,
			expected:     [][]int{{0}, {1}},
		},
		{
			name:         "non-positive session count",
			caseCount:    2,
			sessionCount: 0,
			expected:     [][]int{{0, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scheduler.Schedule(tt.caseCount, tt.sessionCount)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
