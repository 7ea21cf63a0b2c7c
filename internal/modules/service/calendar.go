package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/modules/model"
	"github.com/custodian-app/upkeep/internal/modules/repo"
	"github.com/custodian-app/upkeep/internal/pkg/ics"
	"github.com/custodian-app/upkeep/internal/pkg/schedule"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event start anchors at 08:00 wall clock in the caller's zone.
const anchorHour = 8

// ICSFile is a rendered calendar ready for download.
type ICSFile struct {
	Filename string
	Body     string
}

type CalendarService interface {
	BuildTaskICS(ctx context.Context, userID, assetID, taskID uuid.UUID, zone string) (*ICSFile, error)
}

type calendarService struct {
	tasks repo.TaskRepo
	cfg   *config.Config
	now   func() time.Time
}

func NewCalendarService(tasks repo.TaskRepo, cfg *config.Config) CalendarService {
	return &calendarService{tasks: tasks, cfg: cfg, now: time.Now}
}

// BuildTaskICS renders one task as a recurring Saturday event. The next
// occurrence is the Saturday on or before now-plus-one-interval in the
// caller's zone, starting 08:00 local and lasting the task's parsed duration.
func (s *calendarService) BuildTaskICS(ctx context.Context, userID, assetID, taskID uuid.UUID, zone string) (*ICSFile, error) {
	if zone == "" {
		zone = s.cfg.Calendar.DefaultTimezone
	}
	if strings.TrimSpace(zone) == "" {
		return nil, ErrMissingTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}

	t, err := s.tasks.GetOwned(ctx, userID, assetID, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	freq := schedule.ParseFrequency(t.Frequency)
	minutes := schedule.ParseDurationMinutes(t.Duration)

	next := schedule.AddStep(s.now().In(loc), freq.Step)
	sat := schedule.SaturdayOnOrBefore(next)
	start := time.Date(sat.Year(), sat.Month(), sat.Day(), anchorHour, 0, 0, 0, loc)
	end := start.Add(time.Duration(minutes) * time.Minute)

	body, err := ics.Build(ics.Event{
		Title:        t.Name,
		Description:  eventDescription(t),
		CalendarName: s.cfg.Calendar.Name,
		Start:        start.UTC(),
		End:          end.UTC(),
		RRule:        ics.SaturdayRule(freq, sat),
		Priority:     t.Priority,
	})
	if err != nil {
		return nil, err
	}
	return &ICSFile{
		Filename: fmt.Sprintf("task-%s.ics", t.ID),
		Body:     body,
	}, nil
}

// eventDescription assembles the event body from the task: free-text
// description, numbered steps, bulleted tools, then frequency and duration,
// with blank lines between blocks.
func eventDescription(t *model.Task) string {
	blocks := make([]string, 0, 4)
	if d := strings.TrimSpace(t.Description); d != "" {
		blocks = append(blocks, d)
	}
	if len(t.Steps) > 0 {
		lines := make([]string, 0, len(t.Steps)+1)
		lines = append(lines, "Steps:")
		for i, step := range t.Steps {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	if len(t.Tools) > 0 {
		lines := make([]string, 0, len(t.Tools)+1)
		lines = append(lines, "Tools:")
		for _, tool := range t.Tools {
			lines = append(lines, "- "+tool)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	if f := strings.TrimSpace(t.Frequency); f != "" {
		blocks = append(blocks, "Frequency: "+f)
	}
	if d := strings.TrimSpace(t.Duration); d != "" {
		blocks = append(blocks, "Duration: "+d)
	}
	return strings.Join(blocks, "\n\n")
}
