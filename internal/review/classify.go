package review

// FallbackGroup группа для логинов, отсутствующих в таблице
const FallbackGroup = "other"

// GroupEntry соответствие логина группе
type GroupEntry struct {
	Login string
	Group string
}

// GroupTable неизменяемая таблица login -> группа.
// Порядок групп совпадает с порядком их первого появления в конфигурации.
type GroupTable struct {
	groups map[string]string
	order  []string
}

// NewGroupTable строит таблицу; при повторе логина побеждает первая запись
func NewGroupTable(entries []GroupEntry) GroupTable {
	t := GroupTable{groups: make(map[string]string, len(entries))}
	seenGroup := make(map[string]bool)
	for _, e := range entries {
		if e.Login == "" || e.Group == "" {
			continue
		}
		if _, exists := t.groups[e.Login]; exists {
			continue
		}
		t.groups[e.Login] = e.Group
		if !seenGroup[e.Group] {
			seenGroup[e.Group] = true
			t.order = append(t.order, e.Group)
		}
	}
	return t
}

// Len возвращает количество логинов в таблице
func (t GroupTable) Len() int {
	return len(t.groups)
}

// GroupOf возвращает группу логина или FallbackGroup
func (t GroupTable) GroupOf(login string) string {
	if g, ok := t.groups[login]; ok {
		return g
	}
	return FallbackGroup
}

// Partition раскладывает состояния ревьюеров по группам, сохраняя исходный порядок внутри группы
func (t GroupTable) Partition(reviewers []ReviewerState) map[string][]ReviewerState {
	out := make(map[string][]ReviewerState)
	for _, r := range reviewers {
		g := t.GroupOf(r.Login)
		out[g] = append(out[g], r)
	}
	return out
}

// Columns возвращает группы, которые реально встретились среди ревьюеров:
// сначала сконфигурированные в порядке конфигурации, затем FallbackGroup.
func (t GroupTable) Columns(logins []string) []string {
	present := make(map[string]bool)
	for _, login := range logins {
		present[t.GroupOf(login)] = true
	}

	columns := make([]string, 0, len(present))
	for _, g := range t.order {
		if g == FallbackGroup {
			continue
		}
		if present[g] {
			columns = append(columns, g)
		}
	}
	if present[FallbackGroup] {
		columns = append(columns, FallbackGroup)
	}
	return columns
}
