package layout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Objective is a single planning item placed by the layout functions.
// Layout functions never modify the objectives they are given.
type Objective struct {
	ID                  int     `json:"id" yaml:"id" bson:"id"`
	Tier                string  `json:"tier" yaml:"tier" bson:"tier"`
	BaselineTier        string  `json:"baselineTier,omitempty" yaml:"baselineTier,omitempty" bson:"baseline_tier,omitempty"`
	Category            string  `json:"category" yaml:"category" bson:"category"`
	WaterVolume         float64 `json:"waterVolume" yaml:"waterVolume" bson:"water_volume"`
	UnmetDemand         float64 `json:"unmetDemand" yaml:"unmetDemand" bson:"unmet_demand"`
	WithinCategoryIndex int     `json:"withinCategoryIndex" yaml:"withinCategoryIndex" bson:"within_category_index"`
}

// Baseline returns the tier the objective occupied in the reference
// scenario. Without a baseline it is the current tier.
func (o Objective) Baseline() string {
	if o.BaselineTier == "" {
		return o.Tier
	}
	return o.BaselineTier
}

// Moved reports whether the objective changed tier relative to its baseline.
func (o Objective) Moved() bool { return o.Baseline() != o.Tier }

// Shape is the mark a renderer should draw for a position.
type Shape string

const (
	ShapeRect         Shape = "rect"
	ShapeTriangleUp   Shape = "triangle-up"
	ShapeTriangleDown Shape = "triangle-down"
	ShapeBaselineRect Shape = "baseline-rect"
)

const baselinePrefix = "baseline-"

// PositionID identifies a mark. A primary mark carries the objective's own
// id; a baseline mark stands for the cell an objective moved away from and
// shares the objective id without colliding with its primary mark.
type PositionID struct {
	Objective int  `bson:"objective"`
	Baseline  bool `bson:"baseline,omitempty"`
}

// PrimaryID returns the id of an objective's main mark.
func PrimaryID(id int) PositionID { return PositionID{Objective: id} }

// BaselineID returns the id of an objective's moved-away mark.
func BaselineID(id int) PositionID { return PositionID{Objective: id, Baseline: true} }

// String renders the id as "42" or "baseline-42".
func (id PositionID) String() string {
	if id.Baseline {
		return baselinePrefix + strconv.Itoa(id.Objective)
	}
	return strconv.Itoa(id.Objective)
}

// ParsePositionID parses the String form of a PositionID.
func ParsePositionID(s string) (PositionID, error) {
	baseline := strings.HasPrefix(s, baselinePrefix)
	n, err := strconv.Atoi(strings.TrimPrefix(s, baselinePrefix))
	if err != nil {
		return PositionID{}, fmt.Errorf("invalid position id %q: %w", s, err)
	}
	return PositionID{Objective: n, Baseline: baseline}, nil
}

// MarshalJSON encodes primary ids as numbers and baseline ids as
// "baseline-<id>" strings, the shape renderers key their marks by.
func (id PositionID) MarshalJSON() ([]byte, error) {
	if id.Baseline {
		return json.Marshal(id.String())
	}
	return json.Marshal(id.Objective)
}

// UnmarshalJSON accepts both encodings produced by MarshalJSON.
func (id *PositionID) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*id = PrimaryID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("position id must be a number or string: %w", err)
	}
	parsed, err := ParsePositionID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Position is one rendered mark. All coordinates are in canvas units with
// the origin at the top-left corner.
type Position struct {
	ID        PositionID `json:"id" bson:"id"`
	X         float64    `json:"x" bson:"x"`
	Y         float64    `json:"y" bson:"y"`
	Width     float64    `json:"width" bson:"width"`
	Height    float64    `json:"height" bson:"height"`
	Objective Objective  `json:"obj" bson:"obj"`
	Shape     Shape      `json:"shape" bson:"shape"`
}

// Right returns the x coordinate of the right edge.
func (p Position) Right() float64 { return p.X + p.Width }

// Bottom returns the y coordinate of the bottom edge.
func (p Position) Bottom() float64 { return p.Y + p.Height }

// CenterX returns the horizontal center point of the mark.
func (p Position) CenterX() float64 { return p.X + p.Width/2 }

// CenterY returns the vertical center point of the mark.
func (p Position) CenterY() float64 { return p.Y + p.Height/2 }

// Area returns the mark's width times height.
func (p Position) Area() float64 { return p.Width * p.Height }

// CategoryLayout is the horizontal band assigned to one category.
type CategoryLayout struct {
	Category string  `json:"category" bson:"category"`
	Width    float64 `json:"width" bson:"width"`
	StartX   float64 `json:"startX" bson:"start_x"`
}

// EndX returns the x coordinate where the band ends.
func (c CategoryLayout) EndX() float64 { return c.StartX + c.Width }
