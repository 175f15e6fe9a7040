package core

import "sort"

// ChartTitle is the title of the per-region bar chart.
const ChartTitle = "State Total Count"

// RegionCount is one bar of the chart.
type RegionCount struct {
	Region string
	Count  int
}

// Aggregate groups the rows selected by f by detected_state and counts
// them. Results are ordered by descending count, ties by ascending region.
// An empty subset yields an empty, non-nil slice.
func Aggregate(t *Table, f Filter) []RegionCount {
	counts := make(map[string]int)
	t.Each(func(r Record) {
		if f.Match(r) {
			counts[r.State]++
		}
	})

	out := make([]RegionCount, 0, len(counts))
	for region, n := range counts {
		out = append(out, RegionCount{Region: region, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// AggregateStatus parses raw as a Filter before aggregating.
func AggregateStatus(t *Table, raw string) ([]RegionCount, error) {
	f, err := ParseFilter(raw)
	if err != nil {
		return nil, err
	}
	return Aggregate(t, f), nil
}

// Chart is a render-ready aggregation.
type Chart struct {
	Title  string
	Filter Filter
	Bars   []RegionCount
	Max    int
	Rows   int
}

// NewChart wraps bars with the chart title and scaling values.
func NewChart(f Filter, bars []RegionCount) Chart {
	c := Chart{Title: ChartTitle, Filter: f, Bars: bars}
	for _, b := range bars {
		c.Rows += b.Count
		if b.Count > c.Max {
			c.Max = b.Count
		}
	}
	return c
}

// Labels returns the region labels in bar order.
func (c Chart) Labels() []string {
	out := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Region
	}
	return out
}

// Counts returns the counts in bar order.
func (c Chart) Counts() []int {
	out := make([]int, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Count
	}
	return out
}
