package models

// PageOutcome различает «данные есть», «каталог закончился» и «запрос не удался».
type PageOutcome int

const (
	OutcomeItems PageOutcome = iota
	OutcomeEmpty
	OutcomeTransportError
)

func (o PageOutcome) String() string {
	switch o {
	case OutcomeItems:
		return "items"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransportError:
		return "transport_error"
	}
	return "unknown"
}

type PageResult struct {
	Items   []RawProduct
	Next    PageCursor
	Outcome PageOutcome
	Err     error
}
