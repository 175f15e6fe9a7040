package core

// Summary holds the four dashboard card values.
type Summary struct {
	Total     int
	Active    int
	Recovered int
	Deaths    int
}

// Summarize counts rows by exact status match in a single pass.
func Summarize(t *Table) Summary {
	var s Summary
	t.Each(func(r Record) {
		s.Total++
		switch r.Status {
		case Hospitalized:
			s.Active++
		case Recovered:
			s.Recovered++
		case Deceased:
			s.Deaths++
		}
	})
	return s
}
