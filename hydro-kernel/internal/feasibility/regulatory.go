package feasibility

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDependency = errors.New("unknown regulatory dependency")
	ErrDependencyCycle   = errors.New("regulatory dependency cycle")
	ErrDuplicateStep     = errors.New("duplicate regulatory step")
)

// RegulatoryStep 审批步骤
type RegulatoryStep struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	DurationMonths int      `json:"duration_months"`
	DependsOn      []string `json:"depends_on"`
}

// ScheduledStep 排程后的步骤（月份从 0 开始）
type ScheduledStep struct {
	RegulatoryStep
	StartMonth int `json:"start_month"`
	EndMonth   int `json:"end_month"`
}

// Timeline 审批工期
type Timeline struct {
	Steps        []ScheduledStep `json:"steps"`
	TotalMonths  int             `json:"total_months"`
	CriticalPath []string        `json:"critical_path"`
}

// DefaultRegulatorySteps 小水电典型审批链
func DefaultRegulatorySteps() []RegulatoryStep {
	return []RegulatoryStep{
		{ID: "1", Name: "Energy permit", DurationMonths: 6},
		{ID: "2", Name: "Location conditions", DurationMonths: 3, DependsOn: []string{"1"}},
		{ID: "3", Name: "Environmental impact study", DurationMonths: 12, DependsOn: []string{"2"}},
		{ID: "4", Name: "Building permit", DurationMonths: 4, DependsOn: []string{"3"}},
		{ID: "5", Name: "Water consent", DurationMonths: 3, DependsOn: []string{"3"}},
	}
}

// RegulatoryTimeline 最早开工排程与关键路径
func RegulatoryTimeline(steps []RegulatoryStep) (*Timeline, error) {
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, s.ID)
		}
		index[s.ID] = i
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if _, ok := index[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, s.ID, dep)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(steps))
	end := make([]int, len(steps))
	prev := make([]int, len(steps))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w at %s", ErrDependencyCycle, steps[i].ID)
		}
		state[i] = visiting
		start := 0
		prev[i] = -1
		for _, dep := range steps[i].DependsOn {
			j := index[dep]
			if err := visit(j); err != nil {
				return err
			}
			if end[j] > start {
				start = end[j]
				prev[i] = j
			}
		}
		end[i] = start + steps[i].DurationMonths
		state[i] = done
		return nil
	}

	timeline := &Timeline{Steps: make([]ScheduledStep, 0, len(steps))}
	last := -1
	for i := range steps {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	for i, s := range steps {
		timeline.Steps = append(timeline.Steps, ScheduledStep{
			RegulatoryStep: s,
			StartMonth:     end[i] - s.DurationMonths,
			EndMonth:       end[i],
		})
		if last < 0 || end[i] > end[last] {
			last = i
		}
	}
	if last < 0 {
		return timeline, nil
	}

	timeline.TotalMonths = end[last]
	for i := last; i >= 0; i = prev[i] {
		timeline.CriticalPath = append([]string{steps[i].ID}, timeline.CriticalPath...)
	}
	return timeline, nil
}
