package parser

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// PresetGeomMap maps OOXML preset geometry names to human-readable type labels.
var PresetGeomMap = map[string]string{
	"flowChartProcess":           "AutoShape-FlowchartProcess",
	"flowChartDecision":          "AutoShape-FlowchartDecision",
	"flowChartTerminator":        "AutoShape-FlowchartTerminator",
	"flowChartData":              "AutoShape-FlowchartData",
	"flowChartDocument":          "AutoShape-FlowchartDocument",
	"flowChartMultidocument":     "AutoShape-FlowchartMultidocument",
	"flowChartPredefinedProcess": "AutoShape-FlowchartPredefinedProcess",
	"flowChartInternalStorage":   "AutoShape-FlowchartInternalStorage",
	"flowChartPreparation":       "AutoShape-FlowchartPreparation",
	"flowChartManualInput":       "AutoShape-FlowchartManualInput",
	"flowChartManualOperation":   "AutoShape-FlowchartManualOperation",
	"flowChartConnector":         "AutoShape-FlowchartConnector",
	"flowChartOffpageConnector":  "AutoShape-FlowchartOffpageConnector",
	"rect":                       "AutoShape-Rectangle",
	"roundRect":                  "AutoShape-RoundedRectangle",
	"ellipse":                    "AutoShape-Oval",
	"diamond":                    "AutoShape-Diamond",
	"triangle":                   "AutoShape-IsoscelesTriangle",
	"rightArrow":                 "AutoShape-RightArrow",
	"leftArrow":                  "AutoShape-LeftArrow",
	"straightConnector1":         "Line",
	"bentConnector2":             "AutoShape-Connector",
	"bentConnector3":             "AutoShape-Connector",
	"bentConnector4":             "AutoShape-Connector",
	"bentConnector5":             "AutoShape-Connector",
	"curvedConnector2":           "AutoShape-Connector",
	"curvedConnector3":           "AutoShape-Connector",
	"curvedConnector4":           "AutoShape-Connector",
	"curvedConnector5":           "AutoShape-Connector",
	"line":                       "Line",
	"textBox":                    "TextBox",
}

// ArrowHeadMap maps OOXML arrow head types to style numbers.
var ArrowHeadMap = map[string]int{
	"none":     1,
	"triangle": 2,
	"stealth":  3,
	"diamond":  4,
	"oval":     5,
	"arrow":    2,
}

// shapeParseResult holds intermediate parsing results.
type shapeParseResult struct {
	shape       models.Shape
	excelID     string
	isConnector bool
	startCxnID  string
	endCxnID    string
}

// chartRef is a graphic frame pointing at a chart part.
type chartRef struct {
	relID  string
	name   string
	anchor models.Anchor
}

// drawingParser walks one drawing part.
type drawingParser struct {
	*reader
	results []shapeParseResult
	charts  []chartRef
}

// ParseDrawing parses a drawing part. Charts referenced by graphic frames are
// resolved through rels and read from parts; a chart whose part is absent is
// skipped.
func ParseDrawing(part string, data []byte, rels *opc.Relationships, parts map[string][]byte) (*models.Drawing, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	p := &drawingParser{reader: r}
	root, err := r.root()
	if err != nil {
		return nil, err
	}
	err = r.children(root.Name.Local, func(se xml.StartElement, _ int64) error {
		switch se.Name.Local {
		case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor":
			return p.parseAnchor(se)
		}
		return r.skip(se.Name.Local)
	})
	if err != nil {
		return nil, err
	}

	assignShapeIDs(p.results)
	d := &models.Drawing{Part: part}
	for _, pr := range p.results {
		d.Shapes = append(d.Shapes, pr.shape)
	}
	for _, ref := range p.charts {
		rel, ok := rels.Get(ref.relID)
		if !ok || rel.Type != opc.RelTypeChart {
			continue
		}
		chartPart := rels.TargetPath(rel)
		chartData, ok := parts[chartPart]
		if !ok {
			continue
		}
		chart, err := ParseChart(chartPart, chartData)
		if err != nil {
			return nil, err
		}
		chart.Name = ref.name
		chart.Anchor = ref.anchor
		d.Charts = append(d.Charts, *chart)
	}
	return d, nil
}

// parseAnchor parses an anchor element and its child shapes.
func (p *drawingParser) parseAnchor(start xml.StartElement) error {
	anchor := models.Anchor{Kind: start.Name.Local}
	tag := start.Name.Local
	return p.children(tag, func(se xml.StartElement, _ int64) error {
		switch se.Name.Local {
		case "from", "to":
			pt, err := p.parseAnchorPoint(se.Name.Local)
			if err != nil {
				return err
			}
			if se.Name.Local == "from" {
				anchor.From = &pt
			} else {
				anchor.To = &pt
			}
			return nil
		case "sp":
			return p.addShape(se, anchor, false)
		case "cxnSp":
			return p.addShape(se, anchor, true)
		case "pic":
			return p.addShape(se, anchor, false)
		case "grpSp":
			return p.parseGroupShape(se, anchor)
		case "graphicFrame":
			return p.parseGraphicFrame(anchor)
		}
		return p.skip(se.Name.Local)
	})
}

func (p *drawingParser) parseAnchorPoint(tag string) (models.AnchorPoint, error) {
	var pt models.AnchorPoint
	err := p.children(tag, func(se xml.StartElement, _ int64) error {
		txt, err := p.text(se.Name.Local)
		if err != nil {
			return err
		}
		n, _ := strconv.Atoi(strings.TrimSpace(txt))
		switch se.Name.Local {
		case "col":
			pt.Col = n
		case "colOff":
			pt.ColOff = n
		case "row":
			pt.Row = n
		case "rowOff":
			pt.RowOff = n
		}
		return nil
	})
	return pt, err
}

func (p *drawingParser) addShape(se xml.StartElement, anchor models.Anchor, isCxnSp bool) error {
	pr, err := p.parseShapeElement(se, isCxnSp)
	if err != nil {
		return err
	}
	pr.shape.Anchor = anchor
	p.results = append(p.results, pr)
	return nil
}

// parseShapeElement parses a single shape element.
func (p *drawingParser) parseShapeElement(start xml.StartElement, isCxnSp bool) (shapeParseResult, error) {
	var text string
	var left, top, width, height int
	var excelID, shapeName string
	var prst, imageRel string
	var rotation *float64
	var beginArrowStyle, endArrowStyle *int
	var startCxnID, endCxnID string
	tag := start.Name.Local

	depth := 1
	for depth > 0 {
		token, err := p.next(tag)
		if err != nil {
			return shapeParseResult{}, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "cNvPr":
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "id":
						excelID = attr.Value
					case "name":
						shapeName = attr.Value
					}
				}
			case "xfrm":
				l, tp, w, h, rot, err := p.parseXfrm(t)
				if err != nil {
					return shapeParseResult{}, err
				}
				left, top, width, height = l, tp, w, h
				rotation = rot
				depth--
			case "prstGeom":
				prst, _ = attr(t, "prst")
			case "blip":
				imageRel, _ = attr(t, "embed")
			case "t":
				txt, err := p.text("t")
				if err != nil {
					return shapeParseResult{}, err
				}
				text += txt
				depth--
			case "ln":
				begin, end, err := p.parseLineArrows()
				if err != nil {
					return shapeParseResult{}, err
				}
				beginArrowStyle, endArrowStyle = begin, end
				depth--
			case "cNvCxnSpPr":
				s, e, err := p.parseConnectorEndpoints()
				if err != nil {
					return shapeParseResult{}, err
				}
				startCxnID, endCxnID = s, e
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	text = strings.TrimSpace(text)

	// Determine type label
	typeLabel := "Unknown"
	switch {
	case tag == "pic":
		typeLabel = "Picture"
	case prst != "":
		if label, ok := PresetGeomMap[prst]; ok {
			typeLabel = label
		} else {
			typeLabel = "AutoShape-" + prst
		}
	case shapeName != "":
		typeLabel = shapeName
	}

	isConnector := isCxnSp || isConnectorShape(prst, typeLabel)

	shape := models.Shape{
		Name:       shapeName,
		Text:       text,
		L:          left,
		T:          top,
		W:          width,
		H:          height,
		Type:       typeLabel,
		Rotation:   rotation,
		Connector:  isConnector,
		ImageRelID: imageRel,
	}
	if isConnector {
		shape.Direction = computeDirection(width, height)
		shape.BeginArrowStyle = beginArrowStyle
		shape.EndArrowStyle = endArrowStyle
	}

	return shapeParseResult{
		shape:       shape,
		excelID:     excelID,
		isConnector: isConnector,
		startCxnID:  startCxnID,
		endCxnID:    endCxnID,
	}, nil
}

// parseGroupShape parses a group shape element recursively.
func (p *drawingParser) parseGroupShape(start xml.StartElement, anchor models.Anchor) error {
	return p.children(start.Name.Local, func(se xml.StartElement, _ int64) error {
		switch se.Name.Local {
		case "sp", "pic":
			return p.addShape(se, anchor, false)
		case "cxnSp":
			return p.addShape(se, anchor, true)
		case "grpSp":
			return p.parseGroupShape(se, anchor)
		case "graphicFrame":
			return p.parseGraphicFrame(anchor)
		}
		return p.skip(se.Name.Local)
	})
}

// parseGraphicFrame records a chart frame.
func (p *drawingParser) parseGraphicFrame(anchor models.Anchor) error {
	ref := chartRef{anchor: anchor}
	depth := 1
	for depth > 0 {
		token, err := p.next("graphicFrame")
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "cNvPr":
				ref.name, _ = attr(t, "name")
			case "chart":
				ref.relID, _ = attr(t, "id")
			}
		case xml.EndElement:
			depth--
		}
	}
	if ref.relID != "" {
		p.charts = append(p.charts, ref)
	}
	return nil
}

// parseXfrm parses xfrm element for position and size.
func (p *drawingParser) parseXfrm(start xml.StartElement) (left, top, width, height int, rotation *float64, err error) {
	if v, ok := attr(start, "rot"); ok {
		if rotEmu, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			rotDeg := float64(rotEmu) / 60000.0
			if math.Abs(rotDeg) >= 1e-6 {
				rotation = &rotDeg
			}
		}
	}

	emu := func(se xml.StartElement, name string) int {
		v, _ := attr(se, name)
		n, _ := strconv.ParseInt(v, 10, 64)
		return EMUToPixels(n)
	}
	err = p.children(start.Name.Local, func(se xml.StartElement, _ int64) error {
		switch se.Name.Local {
		case "off":
			left, top = emu(se, "x"), emu(se, "y")
		case "ext":
			width, height = emu(se, "cx"), emu(se, "cy")
		}
		return p.skip(se.Name.Local)
	})
	return
}

// parseLineArrows parses line element for arrow styles.
func (p *drawingParser) parseLineArrows() (beginStyle, endStyle *int, err error) {
	depth := 1
	for depth > 0 {
		token, err := p.next("ln")
		if err != nil {
			return nil, nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			kind, _ := attr(t, "type")
			style, ok := ArrowHeadMap[kind]
			if !ok {
				continue
			}
			switch t.Name.Local {
			case "headEnd":
				beginStyle = &style
			case "tailEnd":
				endStyle = &style
			}
		case xml.EndElement:
			depth--
		}
	}
	return beginStyle, endStyle, nil
}

// parseConnectorEndpoints parses connector endpoint IDs.
func (p *drawingParser) parseConnectorEndpoints() (startID, endID string, err error) {
	depth := 1
	for depth > 0 {
		token, err := p.next("cNvCxnSpPr")
		if err != nil {
			return "", "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "stCxn":
				startID, _ = attr(t, "id")
			case "endCxn":
				endID, _ = attr(t, "id")
			}
		case xml.EndElement:
			depth--
		}
	}
	return startID, endID, nil
}

// computeDirection computes compass direction from connector dimensions.
func computeDirection(width, height int) string {
	if width == 0 && height == 0 {
		return ""
	}

	angle := math.Atan2(float64(-height), float64(width)) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}

	switch {
	case angle >= 337.5 || angle < 22.5:
		return "E"
	case angle >= 22.5 && angle < 67.5:
		return "NE"
	case angle >= 67.5 && angle < 112.5:
		return "N"
	case angle >= 112.5 && angle < 157.5:
		return "NW"
	case angle >= 157.5 && angle < 202.5:
		return "W"
	case angle >= 202.5 && angle < 247.5:
		return "SW"
	case angle >= 247.5 && angle < 292.5:
		return "S"
	default:
		return "SE"
	}
}

// isConnectorShape checks if a shape is a connector or line.
func isConnectorShape(prst, typeLabel string) bool {
	lower := strings.ToLower(prst)
	for _, kw := range []string{"connector", "line"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return strings.Contains(typeLabel, "Line") || strings.Contains(typeLabel, "Connector")
}

// assignShapeIDs assigns sequential IDs to shapes and resolves connector endpoints.
func assignShapeIDs(results []shapeParseResult) {
	excelIDToNodeID := make(map[string]int)
	nodeIndex := 0

	for i := range results {
		if !results[i].isConnector && results[i].excelID != "" {
			nodeIndex++
			id := nodeIndex
			results[i].shape.ID = &id
			excelIDToNodeID[results[i].excelID] = nodeIndex
		}
	}

	for i := range results {
		if !results[i].isConnector {
			continue
		}
		if nodeID, ok := excelIDToNodeID[results[i].startCxnID]; ok {
			results[i].shape.BeginID = &nodeID
		}
		if nodeID, ok := excelIDToNodeID[results[i].endCxnID]; ok {
			results[i].shape.EndID = &nodeID
		}
	}
}
