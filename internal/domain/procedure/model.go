package procedure

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tavi/tavi/internal/domain/patient"
)

// ValveType is the implanted valve family.
type ValveType string

const (
	BalloonExpandable ValveType = "Balloon Expandable"
	SelfExpandable    ValveType = "Self Expandable"
)

// Procedure is one performed TAVI, with the patient data copied at the time
// of the intervention.
type Procedure struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	FirstName string   `db:"nome" json:"nome" validate:"required"`
	LastName  string   `db:"cognome" json:"cognome" validate:"required"`
	BirthDate string   `db:"data_nascita" json:"data_nascita" validate:"required,isodate"`
	Height    *float64 `db:"altezza" json:"altezza,omitempty" validate:"omitempty,gt=0"`
	Weight    *float64 `db:"peso" json:"peso,omitempty" validate:"omitempty,gt=0"`

	// echocardiographic work-up
	EF      *float64 `db:"fe" json:"fe,omitempty" validate:"omitempty,gte=0,lte=100"`
	Vmax    *float64 `db:"vmax" json:"vmax,omitempty" validate:"omitempty,gte=0"`
	Gmax    *float64 `db:"gmax" json:"gmax,omitempty" validate:"omitempty,gte=0"`
	Gmed    *float64 `db:"gmed" json:"gmed,omitempty" validate:"omitempty,gte=0"`
	AVA     *float64 `db:"ava" json:"ava,omitempty" validate:"omitempty,gte=0"`
	Annulus *float64 `db:"anulus_aortico" json:"anulus_aortico,omitempty" validate:"omitempty,gte=0"`

	PriorValve      bool   `db:"valvola_protesica" json:"valvola_protesica"`
	PriorValveModel string `db:"protesica_modello" json:"protesica_modello,omitempty"`
	PriorValveSize  string `db:"protesica_dimensione" json:"protesica_dimensione,omitempty"`

	Date           string    `db:"data_procedura" json:"data_procedura" validate:"required,isodate"`
	StartTime      string    `db:"ora_inizio" json:"ora_inizio" validate:"required,hhmm"`
	EndTime        string    `db:"ora_fine" json:"ora_fine" validate:"required,hhmm"`
	ValveType      ValveType `db:"tipo_valvola" json:"tipo_valvola" validate:"required,oneof='Balloon Expandable' 'Self Expandable'"`
	ValveModel     string    `db:"modello_valvola" json:"modello_valvola" validate:"required"`
	ValveSize      *float64  `db:"dimensione_valvola" json:"dimensione_valvola,omitempty" validate:"omitempty,gt=0"`
	PreDilatation  bool      `db:"pre_dilatazione" json:"pre_dilatazione"`
	PostDilatation bool      `db:"post_dilatazione" json:"post_dilatazione"`
}

func (p *Procedure) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age is the patient's age in completed years at now.
func (p *Procedure) Age(now time.Time) (int, bool) {
	return patient.AgeAt(p.BirthDate, now)
}

// BMI is weight over height squared, rounded to one decimal. It needs both
// measures and a positive height.
func (p *Procedure) BMI() (float64, bool) {
	if p.Weight == nil || p.Height == nil || *p.Height <= 0 {
		return 0, false
	}
	m := *p.Height / 100
	return math.Round(*p.Weight/(m*m)*10) / 10, true
}

// DurationMinutes is the time from start to end on the same day. A
// procedure recorded as ending before it started yields a negative value.
func (p *Procedure) DurationMinutes() (int, bool) {
	start, err := time.Parse(timeLayout, p.StartTime)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(timeLayout, p.EndTime)
	if err != nil {
		return 0, false
	}
	return int(end.Sub(start) / time.Minute), true
}

const timeLayout = "15:04"

// View is a procedure with its derived values, as returned by the API.
type View struct {
	*Procedure
	Age      *int     `json:"eta,omitempty"`
	BMI      *float64 `json:"bmi,omitempty"`
	Duration *int     `json:"durata_minuti,omitempty"`
}

func NewView(p *Procedure, now time.Time) *View {
	v := &View{Procedure: p}
	if age, ok := p.Age(now); ok {
		v.Age = &age
	}
	if bmi, ok := p.BMI(); ok {
		v.BMI = &bmi
	}
	if d, ok := p.DurationMinutes(); ok {
		v.Duration = &d
	}
	return v
}

// Filters narrows a procedure listing. Empty and "all" values do not
// filter.
type Filters struct {
	Search    string
	ValveType string
	Period    string
}

var periodDays = map[string]int{
	"1m": 30,
	"3m": 90,
	"6m": 180,
	"1y": 365,
}

// PeriodDays returns how many days back the period reaches, or 0 for no
// limit.
func (f Filters) PeriodDays() int {
	return periodDays[f.Period]
}

// TopModel is a valve model and the number of implants.
type TopModel struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// Statistics summarizes a set of procedures.
type Statistics struct {
	Total                  int        `json:"total_procedures"`
	AverageDuration        float64    `json:"average_duration_minutes"`
	PreDilatationPercent   float64    `json:"pre_dilatazione_percentage"`
	PostDilatationPercent  float64    `json:"post_dilatazione_percentage"`
	AverageEF              *float64   `json:"average_fe"`
	AverageVmax            *float64   `json:"average_vmax"`
	AverageGmax            *float64   `json:"average_gmax"`
	AverageGmed            *float64   `json:"average_gmed"`
	AverageAVA             *float64   `json:"average_ava"`
	BalloonExpandableCount int        `json:"balloon_expandable_count"`
	SelfExpandableCount    int        `json:"self_expandable_count"`
	TopValveModels         []TopModel `json:"top_valve_models"`
}
