package documents

import (
	"strings"

	"github.com/tavi/tavi/internal/domain/patient"
)

// CheckboxField is one native checkbox of the procedural template.
type CheckboxField struct {
	Label   string
	Checked func(p *patient.Patient) bool
}

// ProceduralCheckboxes lists the checkboxes of template_scheda_procedurale.docx
// in document order. The order must change together with the template.
var ProceduralCheckboxes = []CheckboxField{
	{"allergia mdc: sì", func(p *patient.Patient) bool { return p.ContrastAllergy.IsYes() }},
	{"allergia mdc: no", func(p *patient.Patient) bool { return p.ContrastAllergy.IsNo() }},
	{"ecg: ritmo sinusale", func(p *patient.Patient) bool { return p.ECGSinusRhythm }},
	{"ecg: fibrillazione atriale", func(p *patient.Patient) bool { return p.ECGAtrialFib }},
	{"ecg: blocco di branca sinistra", func(p *patient.Patient) bool { return p.ECGLBBB }},
	{"ecg: blocco di branca destra", func(p *patient.Patient) bool { return p.ECGRBBB }},
	{"ecg: emiblocco anteriore sinistro", func(p *patient.Patient) bool { return p.ECGLAFB }},
	{"ecg: bav I grado", func(p *patient.Patient) bool { return p.ECGFirstAVB }},
	{"ecg: ritmo stimolato", func(p *patient.Patient) bool { return p.ECGPaced }},
	{"anestesia: locale", anesthesia(patient.AnesthesiaLocal)},
	{"anestesia: sedazione", anesthesia(patient.AnesthesiaSedation)},
	{"anestesia: generale", anesthesia(patient.AnesthesiaGeneral)},
	{"coronarografia: in ricovero", coronarography(patient.CoronarographyDuringStay)},
	{"coronarografia: già eseguita", coronarography(patient.CoronarographyAlreadyDone)},
	{"pacemaker definitivo: sì", func(p *patient.Patient) bool { return p.Pacemaker.IsYes() }},
	{"pacemaker definitivo: no", func(p *patient.Patient) bool { return p.Pacemaker.IsNo() }},
	{"accesso principale: percutaneo dx", access(patient.AccessPercutaneousRight)},
	{"accesso principale: percutaneo sn", access(patient.AccessPercutaneousLeft)},
	{"accesso principale: chirurgico dx", access(patient.AccessSurgicalRight)},
	{"accesso principale: chirurgico sn", access(patient.AccessSurgicalLeft)},
	{"accesso principale: altro", access(patient.AccessOther)},
	{"accesso protezione: sì", func(p *patient.Patient) bool { return p.ProtectionAccess.IsYes() }},
	{"accesso protezione: no", func(p *patient.Patient) bool { return p.ProtectionAccess.IsNo() }},
	{"protezione osti: sì", func(p *patient.Patient) bool { return p.OstiaProtection.IsYes() }},
	{"protezione osti: no", func(p *patient.Patient) bool { return p.OstiaProtection.IsNo() }},
	{"valvuloplastica: sì", func(p *patient.Patient) bool { return p.Valvuloplasty.IsYes() }},
	{"valvuloplastica: no", func(p *patient.Patient) bool { return p.Valvuloplasty.IsNo() }},
}

func anesthesia(a patient.Anesthesia) func(*patient.Patient) bool {
	return func(p *patient.Patient) bool { return p.Anesthesia.Normalize() == a }
}

func coronarography(c patient.Coronarography) func(*patient.Patient) bool {
	return func(p *patient.Patient) bool { return p.Coronarography.Normalize() == c }
}

func access(a patient.AccessSite) func(*patient.Patient) bool {
	return func(p *patient.Patient) bool { return p.MainAccess.Normalize() == a }
}

// ProceduralFlags evaluates ProceduralCheckboxes for p.
func ProceduralFlags(p *patient.Patient) []bool {
	flags := make([]bool, len(ProceduralCheckboxes))
	for i, cb := range ProceduralCheckboxes {
		flags[i] = cb.Checked(p)
	}
	return flags
}

// ProceduralValues maps a patient onto the placeholders of the procedural
// form.
func ProceduralValues(p *patient.Patient) map[string]string {
	v := map[string]string{
		"nome":                      p.FirstName,
		"cognome":                   p.LastName,
		"dn":                        italianDate(p.BirthDate),
		"peso":                      decimal(p.Weight),
		"altezza":                   decimal(p.Height),
		"creatinina":                p.Creatinine,
		"egfr":                      p.EGFR,
		"hb":                        p.Hb,
		"altro":                     p.Other,
		"modello_valvola":           titleCase(strings.ReplaceAll(p.BioprosthesisModel, "_", " ")),
		"dimensione_valvola":        "",
		"diametro_pallone_femorale": p.FemoralBalloon,
		"guida_safari":              p.SafariGuide,
		"note_valvuloplastica":      p.ValvuloplastyNote,
		"altri_accessi":             p.OtherAccesses,
		"altro_accesso_arterioso":   "",
		"note_accesso_protezione":   p.ProtectionNote,
		"note_protezione":           ostiaNote(p.OstiaProtection),
		"note_pm_definitivo":        p.PacemakerNote,
		"note_cvg":                  p.CoronarographyNote,
	}
	if size := strings.TrimSpace(p.BioprosthesisSize); size != "" {
		v["dimensione_valvola"] = size + " mm"
	}
	if p.MainAccess.Normalize() == patient.AccessOther {
		v["altro_accesso_arterioso"] = p.MainAccessOther
	}
	return v
}

func ostiaNote(v patient.YesNo) string {
	switch v.Normalize() {
	case patient.Yes:
		return "Sì"
	case patient.No:
		return "No"
	default:
		return string(v)
	}
}
