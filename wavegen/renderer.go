package wavegen

// Renderer produces blocks on demand for hosts that pull audio themselves,
// such as offline rendering or a browser audio callback. It exposes the same
// setters as Engine through the embedded store but runs no goroutine; Next
// must be called from one goroutine at a time.
type Renderer struct {
	*ParameterStore

	cfg   Config
	gen   *BlockGenerator
	state GeneratorState
}

// NewRenderer creates a renderer for cfg.
func NewRenderer(cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		ParameterStore: NewParameterStore(cfg),
		cfg:            cfg,
		gen:            NewBlockGenerator(cfg.SampleRate, cfg.BlockDuration),
		state:          NewGeneratorState(),
	}, nil
}

// Next renders the next block toward the current targets. The returned slice
// is reused by the following call.
func (r *Renderer) Next() []float32 {
	block := r.gen.Generate(&r.state, r.Snapshot())
	r.publish(r.state)
	return block
}

// BlockLength returns the number of samples Next produces.
func (r *Renderer) BlockLength() int {
	return r.gen.BlockLength()
}

// Config returns the construction settings.
func (r *Renderer) Config() Config {
	return r.cfg
}
