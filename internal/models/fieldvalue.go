package models

// FieldValue значение поля проекта. Реализации закрыты внутри пакета:
// TextValue, DateValue, OptionValue, IterationValue.
type FieldValue interface {
	Kind() FieldKind
	String() string
	fieldValue()
}

// TextValue значение текстового поля
type TextValue struct {
	Text string
}

// DateValue значение поля даты в формате YYYY-MM-DD
type DateValue struct {
	Date string
}

// OptionValue выбранный вариант single_select поля
type OptionValue struct {
	OptionID string
	Name     string
}

// IterationValue выбранная итерация
type IterationValue struct {
	IterationID string
	Title       string
}

func (TextValue) Kind() FieldKind      { return FieldText }
func (DateValue) Kind() FieldKind      { return FieldDate }
func (OptionValue) Kind() FieldKind    { return FieldSingleSelect }
func (IterationValue) Kind() FieldKind { return FieldIteration }

func (v TextValue) String() string      { return v.Text }
func (v DateValue) String() string      { return v.Date }
func (v OptionValue) String() string    { return v.Name }
func (v IterationValue) String() string { return v.Title }

func (TextValue) fieldValue()      {}
func (DateValue) fieldValue()      {}
func (OptionValue) fieldValue()    {}
func (IterationValue) fieldValue() {}

// emptySentinels строки, которые сервис и пользователи используют вместо пустого значения
var emptySentinels = map[string]struct{}{
	"no status": {},
	"none":      {},
	"-":         {},
	"未設定":       {},
}

// IsBlank сообщает, является ли строка пустой или одним из маркеров пустоты
func IsBlank(s string) bool {
	n := NormalizeName(s)
	if n == "" {
		return true
	}
	_, ok := emptySentinels[n]
	return ok
}

// IsEmpty сообщает, считается ли значение поля незаполненным
func IsEmpty(v FieldValue) bool {
	switch val := v.(type) {
	case nil:
		return true
	case TextValue:
		return IsBlank(val.Text)
	case DateValue:
		return IsBlank(val.Date)
	case OptionValue:
		if val.Name != "" {
			return IsBlank(val.Name)
		}
		return val.OptionID == ""
	case IterationValue:
		if val.Title != "" {
			return IsBlank(val.Title)
		}
		return val.IterationID == ""
	default:
		return true
	}
}

// Display возвращает строку для отчета или "-" для пустого значения
func Display(v FieldValue) string {
	if IsEmpty(v) || v.String() == "" {
		return "-"
	}
	return v.String()
}
