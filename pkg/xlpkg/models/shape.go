package models

// AnchorPoint is a cell-grid position of a drawing object. Col and Row are
// 0-based as stored in the drawing part; offsets are in EMU.
type AnchorPoint struct {
	Col    int `json:"col"`
	ColOff int `json:"col_off"`
	Row    int `json:"row"`
	RowOff int `json:"row_off"`
}

// Anchor places a drawing object on the sheet.
type Anchor struct {
	// Kind is the anchor element: twoCellAnchor, oneCellAnchor or absoluteAnchor.
	Kind string       `json:"kind"`
	From *AnchorPoint `json:"from,omitempty"`
	To   *AnchorPoint `json:"to,omitempty"`
}

// Shape represents shape metadata including position, size, text, and styling.
type Shape struct {
	// ID is the sequential shape id within the sheet (if applicable).
	ID *int `json:"id,omitempty"`
	// Name is the non-visual name of the shape.
	Name string `json:"name,omitempty"`
	// Text is the visible text content of the shape.
	Text string `json:"text"`
	// Anchor is the cell anchor of the enclosing drawing object.
	Anchor Anchor `json:"anchor"`
	// L is the left offset in pixels.
	L int `json:"l"`
	// T is the top offset in pixels.
	T int `json:"t"`
	// W is the shape width in pixels.
	W int `json:"w"`
	// H is the shape height in pixels.
	H int `json:"h"`
	// Type is the preset geometry label.
	Type string `json:"type,omitempty"`
	// Rotation is the rotation angle in degrees.
	Rotation *float64 `json:"rotation,omitempty"`
	// Connector is set for connector shapes.
	Connector bool `json:"connector,omitempty"`
	// BeginArrowStyle is the arrow style enum for the start of a connector.
	BeginArrowStyle *int `json:"begin_arrow_style,omitempty"`
	// EndArrowStyle is the arrow style enum for the end of a connector.
	EndArrowStyle *int `json:"end_arrow_style,omitempty"`
	// Direction is the connector heading (N, NE, E, SE, S, SW, W, NW).
	Direction string `json:"direction,omitempty"`
	// BeginID is the shape id at the start of a connector.
	BeginID *int `json:"begin_id,omitempty"`
	// EndID is the shape id at the end of a connector.
	EndID *int `json:"end_id,omitempty"`
	// ImageRelID is the relationship id of a picture's embedded image.
	ImageRelID string `json:"image_rel_id,omitempty"`
}

// Drawing is the parsed content of a sheet's drawing part.
type Drawing struct {
	// Part is the drawing part name.
	Part   string  `json:"part"`
	Shapes []Shape `json:"shapes,omitempty"`
	Charts []Chart `json:"charts,omitempty"`
}
