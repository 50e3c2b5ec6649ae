package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/ainews-backend/internal/domain/jobs"
	"github.com/yungbote/ainews-backend/internal/platform/apperr"
)

const (
	DefaultWeeklySpec = "0 9 * * 1"
	DefaultDailySpec  = "0 10 * * *"
)

// schedule tracks the next fire time of one cadence. cron is used for
// expression parsing only; firing is driven by the poll loop.
type schedule struct {
	trigger jobs.Trigger
	spec    string
	expr    cron.Schedule
	next    time.Time
}

func parseSchedule(trigger jobs.Trigger, spec string) (*schedule, error) {
	spec = strings.TrimSpace(spec)
	expr, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, apperr.WithHint(apperr.KindConfigInvalid,
			"use a five-field cron expression such as \"0 9 * * 1\"",
			fmt.Errorf("%s schedule %q: %w", trigger, spec, err))
	}
	return &schedule{trigger: trigger, spec: spec, expr: expr}, nil
}

func (s *schedule) arm(now time.Time, loc *time.Location) {
	s.next = s.expr.Next(now.In(loc))
}

func (s *schedule) due(now time.Time) bool {
	return !s.next.IsZero() && !now.Before(s.next)
}

// nextDue returns the earliest due schedule, or nil.
func nextDue(scheds []*schedule, now time.Time) *schedule {
	var pick *schedule
	for _, s := range scheds {
		if !s.due(now) {
			continue
		}
		if pick == nil || s.next.Before(pick.next) {
			pick = s
		}
	}
	return pick
}
