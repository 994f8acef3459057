package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavi/tavi/internal/domain/patient"
)

func TestAmbulatoryValues(t *testing.T) {
	p := &patient.Patient{
		FirstName:      "Maria",
		LastName:       "Rossi",
		Sex:            "f",
		BirthDate:      "1950-03-02",
		TaxCode:        "RSSMRA50C42H501X",
		RiskFactors:    []string{"ipertensione", "diabete"},
		CardioHistory:  "Pregresso IMA\n2015",
		TodayVisit:     "- dispnea NYHA III -",
		Conclusions:    "-",
		PhysicianTitle: "Dott.ssa",
		PhysicianName:  "Bianchi",
		ResidentTitle:  "dott",
		ResidentName:   "Verdi",
	}

	v := AmbulatoryValues(p, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "05/01/2024", v["data_visita"])
	assert.Equal(t, "Sig.ra", v["sig_sigra"])
	assert.Equal(t, "02/03/1950", v["dn"])
	assert.Equal(t, "RSSMRA50C42H501X", v["cf"])
	assert.Equal(t, "Fattori di rischio CV", v["h_fdrcv"])
	assert.Equal(t, "Ipertensione, diabete", v["fdrcv"])
	assert.Equal(t, "Anamnesi Patologica Remota", v["h_anamnesi_patologica_remota"])
	assert.Equal(t, "Pregresso IMA\n2015", v["anamnesi_patologica_remota"])
	assert.Equal(t, "", v["h_terapia_domiciliare"])
	assert.Equal(t, "Valutazione Odierna", v["h_visita_odierna"])
	assert.Equal(t, "dispnea NYHA III", v["visita_odierna"])
	assert.Equal(t, "", v["h_conclusioni"])
	assert.Equal(t, "", v["conclusioni"])
	assert.Equal(t, "Dott.ssa", v["drdrssa"])
	assert.Equal(t, "Bianchi", v["cardiologo"])
	assert.Equal(t, residentLabel, v["specializzando"])
	assert.Equal(t, "Dott.", v["drdrssasp"])
	assert.Equal(t, "Verdi", v["nome_specializzando"])
}

func TestAmbulatoryValues_NoResidentNoFactors(t *testing.T) {
	p := &patient.Patient{FirstName: "Luigi", LastName: "Neri", Sex: "M", BirthDate: "1941-07-20",
		ResidentTitle: "Dott.ssa", ResidentName: "   "}

	v := AmbulatoryValues(p, time.Now())

	assert.Equal(t, "Sig.", v["sig_sigra"])
	assert.Equal(t, "Dott.", v["drdrssa"])
	assert.Equal(t, "", v["h_fdrcv"])
	assert.Equal(t, "", v["fdrcv"])
	assert.Equal(t, "", v["specializzando"])
	assert.Equal(t, "", v["drdrssasp"])
	assert.Equal(t, "", v["nome_specializzando"])
}

func TestProceduralValues(t *testing.T) {
	p := &patient.Patient{
		FirstName: "Giuseppe",
		LastName:  "Verdi",
		BirthDate: "1938-10-10",
		Height:    ptr(172),
		Weight:    ptr(80.5),
	}
	p.Creatinine = "1.2"
	p.BioprosthesisModel = "EVOLUT_fx"
	p.BioprosthesisSize = "29"
	p.MainAccess = "Altro"
	p.MainAccessOther = "succlavia sinistra"
	p.OstiaProtection = "SI"
	p.CoronarographyNote = "IVA critica"

	v := ProceduralValues(p)

	assert.Equal(t, "10/10/1938", v["dn"])
	assert.Equal(t, "172", v["altezza"])
	assert.Equal(t, "80.5", v["peso"])
	assert.Equal(t, "1.2", v["creatinina"])
	assert.Equal(t, "Evolut Fx", v["modello_valvola"])
	assert.Equal(t, "29 mm", v["dimensione_valvola"])
	assert.Equal(t, "succlavia sinistra", v["altro_accesso_arterioso"])
	assert.Equal(t, "Sì", v["note_protezione"])
	assert.Equal(t, "IVA critica", v["note_cvg"])
}

func TestProceduralValues_Blanks(t *testing.T) {
	p := &patient.Patient{FirstName: "A", LastName: "B", BirthDate: "x"}
	p.MainAccess = patient.AccessPercutaneousRight
	p.MainAccessOther = "ignored"
	p.OstiaProtection = "da valutare"

	v := ProceduralValues(p)

	assert.Equal(t, "x", v["dn"])
	assert.Equal(t, "", v["peso"])
	assert.Equal(t, "", v["dimensione_valvola"])
	assert.Equal(t, "", v["altro_accesso_arterioso"])
	assert.Equal(t, "da valutare", v["note_protezione"])

	p.OstiaProtection = ""
	assert.Equal(t, "", ProceduralValues(p)["note_protezione"])
	p.OstiaProtection = "no"
	assert.Equal(t, "No", ProceduralValues(p)["note_protezione"])
}

func TestProceduralCheckboxes_Layout(t *testing.T) {
	require.Len(t, ProceduralCheckboxes, 27)

	labels := make([]string, len(ProceduralCheckboxes))
	for i, cb := range ProceduralCheckboxes {
		labels[i] = cb.Label
	}
	assert.Equal(t, "allergia mdc: sì", labels[0])
	assert.Equal(t, "ecg: ritmo sinusale", labels[2])
	assert.Equal(t, "anestesia: locale", labels[9])
	assert.Equal(t, "coronarografia: in ricovero", labels[12])
	assert.Equal(t, "pacemaker definitivo: sì", labels[14])
	assert.Equal(t, "accesso principale: percutaneo dx", labels[16])
	assert.Equal(t, "accesso protezione: sì", labels[21])
	assert.Equal(t, "protezione osti: sì", labels[23])
	assert.Equal(t, "valvuloplastica: no", labels[26])
}

func TestProceduralFlags(t *testing.T) {
	p := &patient.Patient{}
	p.ContrastAllergy = "si"
	p.ECGAtrialFib = true
	p.ECGPaced = true
	p.Anesthesia = "generale"
	p.Coronarography = patient.CoronarographyAlreadyDone
	p.Pacemaker = "no"
	p.MainAccess = patient.AccessSurgicalLeft
	p.ProtectionAccess = "Si"
	p.OstiaProtection = "NO"
	p.Valvuloplasty = "forse"

	got := ProceduralFlags(p)

	want := make([]bool, 27)
	for _, i := range []int{0, 3, 8, 11, 13, 15, 19, 21, 24} {
		want[i] = true
	}
	assert.Equal(t, want, got)
}

func TestProceduralFlags_EmptyPatient(t *testing.T) {
	for i, f := range ProceduralFlags(&patient.Patient{}) {
		assert.False(t, f, "checkbox %d (%s)", i, ProceduralCheckboxes[i].Label)
	}
}
