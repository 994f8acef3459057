package patient

import "fmt"

// Status is the position of a patient in the TAVI work-up.
type Status string

const (
	StatusToEvaluate    Status = "da_valutare"
	StatusAwaitingTests Status = "in_attesa_esami"
	StatusAwaitingTAVI  Status = "in_attesa_intervento"
	StatusNotCandidate  Status = "non_candidabile"
	StatusCompleted     Status = "completato"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusToEvaluate,
	StatusAwaitingTests,
	StatusAwaitingTAVI,
	StatusNotCandidate,
	StatusCompleted,
}

var statusLabels = map[Status]string{
	StatusToEvaluate:    "Da valutare",
	StatusAwaitingTests: "In corso di accertamenti",
	StatusAwaitingTAVI:  "In attesa di TAVI",
	StatusNotCandidate:  "Non candidabile a TAVI",
	StatusCompleted:     "TAVI eseguita",
}

// Label returns the text shown to clinicians.
func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus accepts either a status code or its display label.
func ParseStatus(v string) (Status, error) {
	if s := Status(v); s.Valid() {
		return s, nil
	}
	for s, label := range statusLabels {
		if label == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
}
