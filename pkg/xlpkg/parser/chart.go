package parser

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

// ParseChart parses the metadata of a chart part: type, titles, axis range
// and series references.
func ParseChart(part string, data []byte) (*models.Chart, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	chart := &models.Chart{Part: part}
	for {
		token, err := r.top()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "chart" {
			if err := r.parseChartElement(chart); err != nil {
				return nil, err
			}
		}
	}
	if chart.ChartType == "" {
		chart.ChartType = "unknown"
	}
	return chart, nil
}

// parseChartElement parses c:chart element.
func (r *reader) parseChartElement(chart *models.Chart) error {
	return r.children("chart", func(se xml.StartElement, _ int64) error {
		var err error
		switch se.Name.Local {
		case "title":
			chart.Title, err = r.parseChartTitle()
		case "plotArea":
			err = r.parsePlotArea(chart)
		default:
			err = r.skip(se.Name.Local)
		}
		return err
	})
}

// parseChartTitle parses chart title element.
func (r *reader) parseChartTitle() (string, error) {
	var title string
	depth := 1
	for depth > 0 {
		token, err := r.next("title")
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "t" {
				txt, err := r.text("t")
				if err != nil {
					return "", err
				}
				title += txt
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(title), nil
}

// parsePlotArea parses plot area element.
func (r *reader) parsePlotArea(chart *models.Chart) error {
	return r.children("plotArea", func(se xml.StartElement, _ int64) error {
		if ct, ok := ChartTypeMap[se.Name.Local]; ok {
			if chart.ChartType == "" {
				chart.ChartType = ct
			}
			series, err := r.parseChartSeries(se.Name.Local)
			if err != nil {
				return err
			}
			chart.Series = append(chart.Series, series...)
			return nil
		}
		if se.Name.Local == "valAx" {
			title, axisRange, err := r.parseValueAxis()
			if err != nil {
				return err
			}
			if chart.YAxisTitle == "" {
				chart.YAxisTitle, chart.YAxisRange = title, axisRange
			}
			return nil
		}
		return r.skip(se.Name.Local)
	})
}

// parseChartSeries parses series elements within a chart type.
func (r *reader) parseChartSeries(tag string) ([]models.ChartSeries, error) {
	var series []models.ChartSeries
	err := r.children(tag, func(se xml.StartElement, _ int64) error {
		if se.Name.Local != "ser" {
			return r.skip(se.Name.Local)
		}
		s, err := r.parseSingleSeries()
		if err != nil {
			return err
		}
		series = append(series, s)
		return nil
	})
	return series, err
}

// parseSingleSeries parses a single series element.
func (r *reader) parseSingleSeries() (models.ChartSeries, error) {
	var s models.ChartSeries
	err := r.children("ser", func(se xml.StartElement, _ int64) error {
		var err error
		switch se.Name.Local {
		case "tx":
			s.Name, s.NameRange, err = r.parseSeriesName()
		case "cat", "xVal":
			s.XRange, err = r.parseSeriesRange(se.Name.Local)
		case "val", "yVal":
			s.YRange, err = r.parseSeriesRange(se.Name.Local)
		default:
			err = r.skip(se.Name.Local)
		}
		return err
	})
	return s, err
}

// parseSeriesName parses series name from tx element.
func (r *reader) parseSeriesName() (name, nameRange string, err error) {
	depth := 1
	for depth > 0 {
		token, err := r.next("tx")
		if err != nil {
			return "", "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "f":
				txt, err := r.text("f")
				if err != nil {
					return "", "", err
				}
				nameRange = strings.TrimSpace(txt)
				depth--
			case "v":
				txt, err := r.text("v")
				if err != nil {
					return "", "", err
				}
				name = strings.TrimSpace(txt)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return name, nameRange, nil
}

// parseSeriesRange parses the range formula of a cat or val element.
func (r *reader) parseSeriesRange(tag string) (string, error) {
	var ref string
	depth := 1
	for depth > 0 {
		token, err := r.next(tag)
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "f" {
				txt, err := r.text("f")
				if err != nil {
					return "", err
				}
				if ref == "" {
					ref = strings.TrimSpace(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return ref, nil
}

// parseValueAxis parses value axis element.
func (r *reader) parseValueAxis() (title string, axisRange []float64, err error) {
	err = r.children("valAx", func(se xml.StartElement, _ int64) error {
		var err error
		switch se.Name.Local {
		case "title":
			title, err = r.parseChartTitle()
		case "scaling":
			axisRange, err = r.parseAxisScaling()
		default:
			err = r.skip(se.Name.Local)
		}
		return err
	})
	return title, axisRange, err
}

// parseAxisScaling parses axis scaling element.
func (r *reader) parseAxisScaling() ([]float64, error) {
	var lo, hi *float64
	err := r.children("scaling", func(se xml.StartElement, _ int64) error {
		v, ok := attr(se, "val")
		if f, err := strconv.ParseFloat(v, 64); ok && err == nil {
			switch se.Name.Local {
			case "min":
				lo = &f
			case "max":
				hi = &f
			}
		}
		return r.skip(se.Name.Local)
	})
	if err != nil {
		return nil, err
	}
	if lo != nil && hi != nil {
		return []float64{*lo, *hi}, nil
	}
	return nil, nil
}
