package models

// Skymodel is a sky brightness model made of images and discrete components.
type Skymodel struct {
	// Images holds gridded parts of the model, in insertion order
	Images []*Image

	// Components holds discrete sources, in insertion order
	Components []*Skycomponent
}

// NewSkymodel returns an empty model.
func NewSkymodel() *Skymodel {
	return &Skymodel{
		Images:     make([]*Image, 0),
		Components: make([]*Skycomponent, 0),
	}
}

// AddImage appends an image to the model.
func (sm *Skymodel) AddImage(im *Image) {
	sm.Images = append(sm.Images, im)
}

// AddComponents appends components to the model.
func (sm *Skymodel) AddComponents(comps ...*Skycomponent) {
	sm.Components = append(sm.Components, comps...)
}
