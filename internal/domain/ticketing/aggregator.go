package ticketing

// Progress is the derived completion state of a header's lines
type Progress struct {
	AllLinesReserved   bool        `json:"all_lines_reserved"`
	AllLinesEmitted    bool        `json:"all_lines_emitted"`
	RemainingToReserve int         `json:"remaining_to_reserve"`
	RemainingToEmit    int         `json:"remaining_to_emit"`
	Groups             []LineGroup `json:"groups"`
}

// LineGroup is a display grouping of lines sharing flight, class and passenger type
type LineGroup struct {
	Key     GroupKey     `json:"key"`
	LineIDs []string     `json:"line_ids"`
	Status  []LineStatus `json:"statuses"`
}

// AllLinesReserved reports whether every line is FAIT, MODIFIER or ANNULER.
// An empty set is never reserved.
func AllLinesReserved(lines []*TicketLine) bool {
	if len(lines) == 0 {
		return false
	}
	return RemainingToReserve(lines) == 0
}

// AllLinesEmitted reports whether every line is CLOTURER.
// An empty set is never emitted.
func AllLinesEmitted(lines []*TicketLine) bool {
	if len(lines) == 0 {
		return false
	}
	return RemainingToEmit(lines) == 0
}

// RemainingToReserve counts lines that do not yet satisfy AllLinesReserved
func RemainingToReserve(lines []*TicketLine) int {
	n := 0
	for _, l := range lines {
		if !l.Status.CountsAsReserved() {
			n++
		}
	}
	return n
}

// RemainingToEmit counts lines that do not yet satisfy AllLinesEmitted
func RemainingToEmit(lines []*TicketLine) int {
	n := 0
	for _, l := range lines {
		if l.Status != LineStatusEmitted {
			n++
		}
	}
	return n
}

// GroupLines groups lines by flight number, itinerary, class and passenger
// type, keeping first-seen order. Grouping never affects transitions.
func GroupLines(lines []*TicketLine) []LineGroup {
	index := make(map[GroupKey]int)
	groups := make([]LineGroup, 0)
	for _, l := range lines {
		key := l.Flight.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LineGroup{Key: key})
		}
		groups[i].LineIDs = append(groups[i].LineIDs, l.ID.String())
		groups[i].Status = append(groups[i].Status, l.Status)
	}
	return groups
}

// ComputeProgress derives every predicate from the given snapshot
func ComputeProgress(lines []*TicketLine) Progress {
	return Progress{
		AllLinesReserved:   AllLinesReserved(lines),
		AllLinesEmitted:    AllLinesEmitted(lines),
		RemainingToReserve: RemainingToReserve(lines),
		RemainingToEmit:    RemainingToEmit(lines),
		Groups:             GroupLines(lines),
	}
}
