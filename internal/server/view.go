package server

import (
	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/stats"
)

type dayView struct {
	Day   int    `json:"day"`
	Phase string `json:"phase"`
	Date  string `json:"date"`
	Total int    `json:"total"`
	Done  int    `json:"done"`
}

type cycleView struct {
	ID           string    `json:"id"`
	ProgramKey   string    `json:"program_key"`
	ProgramLabel string    `json:"program_label"`
	StartISO     string    `json:"start_iso"`
	Today        int       `json:"today"`
	Phase        string    `json:"phase"`
	Status       string    `json:"status"`
	Total        int       `json:"total"`
	Done         int       `json:"done"`
	Percent      int       `json:"percent"`
	CanFinish    bool      `json:"can_finish"`
	Checks       []string  `json:"checks"`
	Days         []dayView `json:"days"`
}

type sessionView struct {
	UserID          string     `json:"user_id,omitempty"`
	Source          string     `json:"source"`
	CompletedCycles int        `json:"completed_cycles"`
	Medals          string     `json:"medals"`
	Quote           string     `json:"quote"`
	Token           string     `json:"s,omitempty"`
	Cycle           *cycleView `json:"cycle"`
	Warnings        []string   `json:"warnings,omitempty"`
}

func (s *Server) render(e *entry, err error) sessionView {
	now := s.now()
	v := sessionView{
		UserID:          e.sess.UserID,
		Source:          e.sess.Source.String(),
		CompletedCycles: e.sess.CompletedCycles,
		Medals:          stats.Medals(e.sess.CompletedCycles),
		Quote:           stats.QuoteOfDay(now),
		Warnings:        warnings(err),
	}
	if !e.sess.Authenticated() {
		v.Token = e.slot.Token()
	}
	st := e.sess.Active
	if st == nil {
		return v
	}
	p, _ := st.Program()
	total, done := cycle.CountTasks(st)
	canFinish, _ := cycle.CanFinish(st, false)
	cv := &cycleView{
		ID:           st.ID,
		ProgramKey:   st.ProgramKey,
		ProgramLabel: p.Label,
		StartISO:     st.StartISO(),
		Total:        total,
		Done:         done,
		Percent:      cycle.Percent(cycle.CompletionRatio(st)),
		CanFinish:    canFinish,
		Checks:       st.Checks(),
	}
	if day, ph, err := st.Today(now); err == nil {
		cv.Today = day
		cv.Phase = ph.Key
	}
	if line, err := stats.StatusLine(st, now); err == nil {
		cv.Status = line
	}
	for _, t := range cycle.DayTallies(st) {
		cv.Days = append(cv.Days, dayView{
			Day:   t.Day,
			Phase: t.Phase,
			Date:  cycle.FormatDate(st.DateForDay(t.Day)),
			Total: t.Total,
			Done:  t.Done,
		})
	}
	v.Cycle = cv
	return v
}

type sectionView struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

type phaseView struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Days     []int         `json:"days"`
	Sections []sectionView `json:"sections"`
}

type programView struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Tasks  int         `json:"tasks"`
	Phases []phaseView `json:"phases"`
}

func programViews() []programView {
	var out []programView
	for _, p := range catalog.All() {
		pv := programView{Key: p.Key, Label: p.Label}
		for _, ph := range p.Phases {
			days := ph.Days()
			pv.Tasks += ph.ItemCount() * len(days)
			phv := phaseView{Key: ph.Key, Label: ph.TabLabel(), Days: days}
			for _, sec := range ph.Sections {
				phv.Sections = append(phv.Sections, sectionView{Name: sec.Name, Items: sec.Items})
			}
			pv.Phases = append(pv.Phases, phv)
		}
		out = append(out, pv)
	}
	return out
}
