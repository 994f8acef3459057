package documents

import (
	"strings"
	"time"

	"github.com/tavi/tavi/internal/domain/patient"
)

const residentLabel = "Il Medico in formazione specialistica,"

// AmbulatoryValues maps a patient onto the placeholders of the outpatient
// visit report. Section headers are blank when their section is.
func AmbulatoryValues(p *patient.Patient, now time.Time) map[string]string {
	salutation := "Sig."
	if p.IsFemale() {
		salutation = "Sig.ra"
	}

	factors := strings.Join(p.RiskFactors, ", ")
	visit := strings.TrimSpace(strings.ReplaceAll(p.TodayVisit, "-", ""))
	conclusions := strings.TrimSpace(strings.ReplaceAll(p.Conclusions, "-", ""))

	v := map[string]string{
		"data_visita":                  now.Format(displayDate),
		"sig_sigra":                    salutation,
		"nome":                         p.FirstName,
		"cognome":                      p.LastName,
		"dn":                           italianDate(p.BirthDate),
		"cf":                           p.TaxCode,
		"h_fdrcv":                      ifSet(factors, "Fattori di rischio CV"),
		"fdrcv":                        capitalizeFirst(factors),
		"h_anamnesi_patologica_remota": ifSet(p.CardioHistory, "Anamnesi Patologica Remota"),
		"anamnesi_patologica_remota":   p.CardioHistory,
		"h_terapia_domiciliare":        ifSet(p.HomeTherapy, "Terapia domiciliare"),
		"terapia_domiciliare":          p.HomeTherapy,
		"h_visita_odierna":             ifSet(visit, "Valutazione Odierna"),
		"visita_odierna":               visit,
		"h_conclusioni":                ifSet(conclusions, "Conclusioni"),
		"conclusioni":                  conclusions,
		"drdrssa":                      doctorTitle(p.PhysicianTitle),
		"cardiologo":                   p.PhysicianName,
		"specializzando":               "",
		"drdrssasp":                    "",
		"nome_specializzando":          "",
	}
	if strings.TrimSpace(p.ResidentName) != "" {
		v["specializzando"] = residentLabel
		v["drdrssasp"] = doctorTitle(p.ResidentTitle)
		v["nome_specializzando"] = p.ResidentName
	}
	return v
}

// doctorTitle abbreviates a free-text title, using the feminine form when
// the title contains "ssa".
func doctorTitle(title string) string {
	if strings.Contains(strings.ToLower(title), "ssa") {
		return "Dott.ssa"
	}
	return "Dott."
}
