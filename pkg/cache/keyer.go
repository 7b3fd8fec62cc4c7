package cache

// Keyer names cache entries. Implementations must be deterministic.
type Keyer interface {
	// HTTPKey names a cached API response.
	HTTPKey(namespace, key string) string
	// DatasetKey names an acquired dataset.
	DatasetKey(scenario string, opts DatasetKeyOpts) string
	// LayoutKey names a computed layout for a dataset hash.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
}

// DatasetKeyOpts are the acquisition settings that change a dataset.
type DatasetKeyOpts struct {
	Baseline string   `json:"baseline,omitempty"`
	Tiers    []string `json:"tiers,omitempty"`
}

// LayoutKeyOpts are the layout settings that change the computed marks.
type LayoutKeyOpts struct {
	Mode       string  `json:"mode"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Comparison bool    `json:"comparison,omitempty"`
	// Geometry is a hash of the layout configuration (margins, dot size, ...).
	Geometry string `json:"geometry,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) DatasetKey(scenario string, opts DatasetKeyOpts) string {
	return hashKey("dataset", scenario, opts)
}

func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}
