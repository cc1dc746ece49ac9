package thumbnail

// DefaultFallback is the image shown when a restaurant has no thumbnail
// or its thumbnail fails to load.
const DefaultFallback = "/images/logo.png"

// Stage is the rendering stage of a card image.
type Stage string

// Rendering stages.
const (
	// Primary renders the source through the optimized image pipeline.
	Primary Stage = "primary"
	// Fallback renders the fallback image through the pipeline.
	Fallback Stage = "fallback"
	// PlainRender renders the current source as a plain image element.
	PlainRender Stage = "plain"
)

// Image tracks which source a card shows and how. Transitions only move
// forward: Primary -> Fallback -> PlainRender.
type Image struct {
	src      string
	fallback string
	stage    Stage
}

// New starts an image at src. An empty src starts from the fallback.
func New(src, fallback string) Image {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if src == "" {
		src = fallback
	}
	return Image{src: src, fallback: fallback, stage: Primary}
}

// Failed records a load failure of the current source.
func (i Image) Failed() Image {
	switch i.stage {
	case Primary:
		if i.src == i.fallback {
			i.stage = PlainRender
			return i
		}
		i.src = i.fallback
		i.stage = Fallback
	case Fallback:
		i.stage = PlainRender
	}
	return i
}

// Src returns the source currently shown.
func (i Image) Src() string { return i.src }

// Stage returns the rendering stage.
func (i Image) Stage() Stage { return i.stage }

// Optimized reports whether the image still goes through the image pipeline.
func (i Image) Optimized() bool { return i.stage != PlainRender }
