package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Optional free-text fields are stored as
// empty strings; the JSON names follow the column names used by the clinic's
// front end.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	FirstName     string   `db:"nome" json:"nome" validate:"required"`
	LastName      string   `db:"cognome" json:"cognome" validate:"required"`
	BirthDate     string   `db:"data_nascita" json:"data_nascita" validate:"required,isodate"`
	BirthPlace    string   `db:"luogo_nascita" json:"luogo_nascita,omitempty"`
	TaxCode       string   `db:"codice_fiscale" json:"codice_fiscale,omitempty" validate:"omitempty,alphanum"`
	Phone         string   `db:"telefono" json:"telefono,omitempty"`
	Email         string   `db:"email" json:"email,omitempty" validate:"omitempty,email"`
	Referral      string   `db:"provenienza" json:"provenienza,omitempty"`
	Sex           string   `db:"sesso" json:"sesso,omitempty" validate:"omitempty,oneof=M F m f"`
	Priority      string   `db:"priority" json:"priority,omitempty"`
	Height        *float64 `db:"altezza" json:"altezza,omitempty" validate:"omitempty,gt=0"`
	Weight        *float64 `db:"peso" json:"peso,omitempty" validate:"omitempty,gt=0"`
	Note          string   `db:"note" json:"note,omitempty"`
	RiskFactors   []string `db:"ambulatorio_fattori" json:"ambulatorio_fattori,omitempty"`
	CardioHistory string   `db:"anamnesi_cardiologica" json:"anamnesi_cardiologica,omitempty"`
	HomeTherapy   string   `db:"apr" json:"apr,omitempty"`
	TodayVisit    string   `db:"visita_odierna" json:"visita_odierna,omitempty"`
	Conclusions   string   `db:"conclusioni" json:"conclusioni,omitempty"`

	PhysicianTitle string `db:"medico_titolo" json:"medico_titolo,omitempty"`
	PhysicianName  string `db:"medico_nome" json:"medico_nome,omitempty"`
	ResidentTitle  string `db:"medico_specializzando_titolo" json:"medico_specializzando_titolo,omitempty"`
	ResidentName   string `db:"medico_specializzando_nome" json:"medico_specializzando_nome,omitempty"`

	Procedural
}

// Procedural holds the pre-procedural checklist filled in before a TAVI.
type Procedural struct {
	ContrastAllergy     YesNo  `db:"procedurale_allergia_mdc" json:"procedurale_allergia_mdc,omitempty"`
	ContrastPreparation string `db:"procedurale_preparazione_mdc" json:"procedurale_preparazione_mdc,omitempty"`
	Creatinine          string `db:"procedurale_creatinina" json:"procedurale_creatinina,omitempty"`
	EGFR                string `db:"procedurale_egfr" json:"procedurale_egfr,omitempty"`
	Hb                  string `db:"procedurale_hb" json:"procedurale_hb,omitempty"`
	Other               string `db:"procedurale_altro" json:"procedurale_altro,omitempty"`
	TAVIDate            string `db:"data_tavi" json:"data_tavi,omitempty" validate:"omitempty,isodate"`

	ECGSinusRhythm bool `db:"procedurale_ecg_ritmo_sinusale" json:"procedurale_ecg_ritmo_sinusale"`
	ECGAtrialFib   bool `db:"procedurale_ecg_fa" json:"procedurale_ecg_fa"`
	ECGLBBB        bool `db:"procedurale_ecg_bbs" json:"procedurale_ecg_bbs"`
	ECGRBBB        bool `db:"procedurale_ecg_bbd" json:"procedurale_ecg_bbd"`
	ECGLAFB        bool `db:"procedurale_ecg_eas" json:"procedurale_ecg_eas"`
	ECGFirstAVB    bool `db:"procedurale_ecg_bav_primo" json:"procedurale_ecg_bav_primo"`
	ECGPaced       bool `db:"procedurale_ecg_ritmo_stimolato" json:"procedurale_ecg_ritmo_stimolato"`

	Anesthesia         Anesthesia     `db:"procedurale_anestesia" json:"procedurale_anestesia,omitempty"`
	Coronarography     Coronarography `db:"procedurale_coronarografia" json:"procedurale_coronarografia,omitempty"`
	CoronarographyNote string         `db:"procedurale_coronarografia_note" json:"procedurale_coronarografia_note,omitempty"`
	Pacemaker          YesNo          `db:"procedurale_pacemaker" json:"procedurale_pacemaker,omitempty"`
	PacemakerNote      string         `db:"procedurale_pacemaker_note" json:"procedurale_pacemaker_note,omitempty"`
	MainAccess         AccessSite     `db:"procedurale_accesso_principale_fem" json:"procedurale_accesso_principale_fem,omitempty"`
	MainAccessOther    string         `db:"procedurale_accesso_principale_altro" json:"procedurale_accesso_principale_altro,omitempty"`
	ProtectionAccess   YesNo          `db:"procedurale_accesso_protezione" json:"procedurale_accesso_protezione,omitempty"`
	ProtectionNote     string         `db:"procedurale_accesso_protezione_note" json:"procedurale_accesso_protezione_note,omitempty"`
	OtherAccesses      string         `db:"procedurale_altri_accessi" json:"procedurale_altri_accessi,omitempty"`
	FemoralBalloon     string         `db:"procedurale_diametro_pallone_femorale" json:"procedurale_diametro_pallone_femorale,omitempty"`
	SafariGuide        string         `db:"procedurale_guida_safari" json:"procedurale_guida_safari,omitempty"`
	OstiaProtection    YesNo          `db:"procedurale_protezione_osti" json:"procedurale_protezione_osti,omitempty"`
	Valvuloplasty      YesNo          `db:"procedurale_valvuloplastica" json:"procedurale_valvuloplastica,omitempty"`
	ValvuloplastyNote  string         `db:"procedurale_valvuloplastica_note" json:"procedurale_valvuloplastica_note,omitempty"`
	BioprosthesisModel string         `db:"procedurale_bioprotesi_modello" json:"procedurale_bioprotesi_modello,omitempty"`
	BioprosthesisSize  string         `db:"procedurale_bioprotesi_dimensione" json:"procedurale_bioprotesi_dimensione,omitempty"`
}

// FullName returns "nome cognome".
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// IsFemale reports whether the sex code is F, in either case.
func (p *Patient) IsFemale() bool {
	return strings.EqualFold(p.Sex, "F")
}

// Age returns the completed years at now, or false when the birth date is
// not an ISO date.
func (p *Patient) Age(now time.Time) (int, bool) {
	return AgeAt(p.BirthDate, now)
}

// AgeAt computes completed years between an ISO birth date and now.
func AgeAt(birthDate string, now time.Time) (int, bool) {
	birth, err := time.Parse(DateLayout, birthDate)
	if err != nil {
		return 0, false
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// WithStatus is a patient together with its current workflow status.
type WithStatus struct {
	Patient         *Patient  `json:"patient"`
	Status          string    `json:"status"`
	StatusCreatedAt time.Time `json:"status_created_at"`
}

// Filters narrows a patient listing. Status is a display label.
type Filters struct {
	Search string
	Status string
}

// StatusCount is the number of patients in one workflow status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
