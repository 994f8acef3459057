package patient

import "strings"

// The checklist choices below are stored exactly as entered. Normalize maps
// the stored text onto the closed set of values, returning the type's
// Unknown value for anything unrecognised and "" for a blank field.

// YesNo is a sì/no answer.
type YesNo string

const (
	Yes          YesNo = "si"
	No           YesNo = "no"
	YesNoUnknown YesNo = "unknown"
)

func (v YesNo) Normalize() YesNo {
	switch s := strings.TrimSpace(string(v)); {
	case s == "":
		return ""
	case strings.EqualFold(s, "si"), strings.EqualFold(s, "sì"):
		return Yes
	case strings.EqualFold(s, "no"):
		return No
	default:
		return YesNoUnknown
	}
}

func (v YesNo) IsYes() bool { return v.Normalize() == Yes }
func (v YesNo) IsNo() bool  { return v.Normalize() == No }

// Anesthesia is the planned anaesthesia regime.
type Anesthesia string

const (
	AnesthesiaLocal    Anesthesia = "Locale"
	AnesthesiaSedation Anesthesia = "Sedazione"
	AnesthesiaGeneral  Anesthesia = "Generale"
	AnesthesiaUnknown  Anesthesia = "unknown"
)

func (a Anesthesia) Normalize() Anesthesia {
	return normalize(a, AnesthesiaUnknown, AnesthesiaLocal, AnesthesiaSedation, AnesthesiaGeneral)
}

// Coronarography records when the coronary angiography is done.
type Coronarography string

const (
	CoronarographyDuringStay  Coronarography = "ricovero"
	CoronarographyAlreadyDone Coronarography = "gia_eseguita"
	CoronarographyUnknown     Coronarography = "unknown"
)

func (c Coronarography) Normalize() Coronarography {
	return normalize(c, CoronarographyUnknown, CoronarographyDuringStay, CoronarographyAlreadyDone)
}

// AccessSite is the main arterial access for valve delivery.
type AccessSite string

const (
	AccessPercutaneousRight AccessSite = "percutaneo_dx"
	AccessPercutaneousLeft  AccessSite = "percutaneo_sn"
	AccessSurgicalRight     AccessSite = "chirurgico_dx"
	AccessSurgicalLeft      AccessSite = "chirurgico_sn"
	AccessOther             AccessSite = "altro"
	AccessUnknown           AccessSite = "unknown"
)

func (a AccessSite) Normalize() AccessSite {
	return normalize(a, AccessUnknown,
		AccessPercutaneousRight, AccessPercutaneousLeft,
		AccessSurgicalRight, AccessSurgicalLeft, AccessOther)
}

func normalize[T ~string](v, unknown T, known ...T) T {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return ""
	}
	for _, k := range known {
		if strings.EqualFold(s, string(k)) {
			return k
		}
	}
	return unknown
}
