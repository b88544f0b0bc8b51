package ticket

// какое поле отчёта заполняет переход в данный статус
type ReportField int

const (
	ReportNone ReportField = iota
	ReportSpares
	ReportFinal
)

var transitions = map[Status]map[Status]bool{
	StatusOpen: {
		StatusPendingSpares: true,
		StatusCompleted:     true,
	},
	// ожидание запчастей может повторяться
	StatusPendingSpares: {
		StatusPendingSpares: true,
		StatusCompleted:     true,
	},
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransition(next Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	return allowed[next]
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Report возвращает поле, которое заполняется при переходе в статус s.
func (s Status) Report() ReportField {
	switch s {
	case StatusPendingSpares:
		return ReportSpares
	case StatusCompleted:
		return ReportFinal
	default:
		return ReportNone
	}
}

// AcceptsReport - отчёт можно приложить только на этих стадиях
func (s Status) AcceptsReport() bool {
	return s.Report() != ReportNone
}
