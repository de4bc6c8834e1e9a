package models

// ChartSeries represents series metadata for a chart.
type ChartSeries struct {
	// Name is the series display name.
	Name string `json:"name"`
	// NameRange is the range reference for the series name.
	NameRange string `json:"name_range,omitempty"`
	// XRange is the range reference for X axis values.
	XRange string `json:"x_range,omitempty"`
	// YRange is the range reference for Y axis values.
	YRange string `json:"y_range,omitempty"`
}

// Chart represents chart metadata referenced from a drawing.
type Chart struct {
	// Name is the graphic frame name.
	Name string `json:"name"`
	// Part is the chart part name.
	Part string `json:"part"`
	// ChartType is the chart type (e.g., Column, Line).
	ChartType string `json:"chart_type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// YAxisTitle is the Y-axis title.
	YAxisTitle string `json:"y_axis_title,omitempty"`
	// YAxisRange is the Y-axis range [min, max] when available.
	YAxisRange []float64 `json:"y_axis_range,omitempty"`
	// Series is the list of series included in the chart.
	Series []ChartSeries `json:"series"`
	// Anchor is the cell anchor of the graphic frame.
	Anchor Anchor `json:"anchor"`
}
