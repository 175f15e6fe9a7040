package http

import "covidboard/internal/core"

type cardView struct {
	Label string
	Value int
	Class string
}

type barView struct {
	Region string
	Count  int
	Width  int
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type chartView struct {
	Title  string
	Filter string
	Rows   int
	Bars   []barView
}

type pageView struct {
	Heading string
	Cards   []cardView
	Options []optionView
	Chart   chartView
}

func newChartView(c core.Chart) chartView {
	v := chartView{
		Title:  c.Title,
		Filter: string(c.Filter),
		Rows:   c.Rows,
		Bars:   make([]barView, 0, len(c.Bars)),
	}
	for _, b := range c.Bars {
		v.Bars = append(v.Bars, barView{Region: b.Region, Count: b.Count, Width: barWidth(b.Count, c.Max)})
	}
	return v
}

func newPageView(sum core.Summary, c core.Chart) pageView {
	v := pageView{
		Heading: "Corona Virus Pandemic",
		Cards: []cardView{
			{Label: "Total Cases", Value: sum.Total, Class: "card--total"},
			{Label: "Active Cases", Value: sum.Active, Class: "card--active"},
			{Label: "Recovered", Value: sum.Recovered, Class: "card--recovered"},
			{Label: "Deaths", Value: sum.Deaths, Class: "card--deaths"},
		},
		Chart: newChartView(c),
	}
	for _, f := range core.Filters() {
		v.Options = append(v.Options, optionView{Value: string(f), Label: f.Label(), Selected: f == c.Filter})
	}
	return v
}
