package app

import (
	"time"

	"liftlog/internal/domain"
)

// CalendarCell is one square of the month grid. Blank cells pad the first
// week so that it starts on Monday.
type CalendarCell struct {
	Blank       bool           `json:"blank"`
	Date        string         `json:"date,omitempty"`
	Day         int            `json:"day,omitempty"`
	DayType     domain.DayType `json:"dayType,omitempty"`
	ProgramName string         `json:"programName,omitempty"`
	HasWorkout  bool           `json:"hasWorkout"`
	IsToday     bool           `json:"isToday"`
}

// CalendarView is the visible month, one row per week.
type CalendarView struct {
	Year  int              `json:"year"`
	Month time.Month       `json:"month"`
	Today string           `json:"today"`
	Weeks [][]CalendarCell `json:"weeks"`
}

// Calendar renders the visible month from the local cache and program.
func (t *Tracker) Calendar() CalendarView {
	t.mu.Lock()
	defer t.mu.Unlock()

	year, month := t.view.Year(), t.view.Month()
	today := domain.DateKey(t.now().In(t.loc))

	var cells []CalendarCell
	for _, d := range domain.MonthData(year, month, t.loc) {
		if d.IsZero() {
			cells = append(cells, CalendarCell{Blank: true})
			continue
		}
		key := domain.DateKey(d)
		c := CalendarCell{
			Date:    key,
			Day:     d.Day(),
			DayType: domain.DayOfWeek(d),
			IsToday: key == today,
		}
		_, c.HasWorkout = t.cache[key]
		if pd, ok := t.program.Day(c.DayType); ok {
			c.ProgramName = pd.Name
		}
		cells = append(cells, c)
	}

	return CalendarView{Year: year, Month: month, Today: today, Weeks: domain.Weeks(cells)}
}

// ShowMonth makes the given month visible.
func (t *Tracker) ShowMonth(year int, month time.Month) CalendarView {
	t.mu.Lock()
	t.view = time.Date(year, month, 1, 0, 0, 0, 0, t.loc)
	t.mu.Unlock()
	return t.Calendar()
}

// ShiftMonth moves the visible month by delta months.
func (t *Tracker) ShiftMonth(delta int) CalendarView {
	t.mu.Lock()
	t.view = t.view.AddDate(0, delta, 0)
	t.mu.Unlock()
	return t.Calendar()
}
