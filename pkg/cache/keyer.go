package cache

// Keyer builds cache keys for the pipeline stages. Every option that changes
// the stage output must be part of the key options, so cached results can
// never leak across configurations.
type Keyer interface {
	// LayoutKey generates a key for layout results.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for rendered artifacts.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that affect layout output.
type LayoutKeyOpts struct {
	Strategy          string
	Margin            float64
	VerticalSpacing   float64
	HorizontalSpacing float64
	ContainerWidth    float64
}

// ArtifactKeyOpts are the options that affect rendered artifacts.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
	Scale    float64
}

// DefaultKeyer builds versioned, hash-based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout results.
func (k *DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout:v1", diagramHash, opts)
}

// ArtifactKey generates a key for rendered artifacts.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:v1", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
