// Package dataset owns the studio's training image collection and the gate
// deciding when enough imagery exists to (re)train the studio model.
package dataset

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/archway-no/archway/pkg/model"
)

// MinTrainingImages is how many images the gate requires before a
// fine-tuning run may start.
const MinTrainingImages = 10

// RecommendedMaxImages is advisory guidance only; more than this rarely
// improves the model. It is never enforced.
const RecommendedMaxImages = 50

// Dataset is the insertion-ordered training image collection of one upload
// session. It never inspects job state.
type Dataset struct {
	mu     sync.Mutex
	log    *log.Entry
	images []model.TrainingImage
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{log: log.WithField("component", "dataset")}
}

// AddImages appends the image-like uploads and returns the images actually
// added. Files with a non-image content type are skipped silently; a
// malformed file is a no-op, not a failure.
func (d *Dataset) AddImages(files []model.FileUpload) []model.TrainingImage {
	d.mu.Lock()
	defer d.mu.Unlock()

	var added []model.TrainingImage
	for _, f := range files {
		if !model.IsImageContentType(f.ContentType) {
			d.log.Debugf("skipping non-image upload %q (%s)", f.Name, f.ContentType)
			continue
		}
		id := model.NewImageID()
		img := model.TrainingImage{
			ID:          id,
			Name:        f.Name,
			ContentType: f.ContentType,
			Preview:     model.NewPreviewHandle(id),
		}
		d.images = append(d.images, img)
		added = append(added, img)
	}
	if len(d.images) > RecommendedMaxImages {
		d.log.Warnf("dataset has %d images; more than %d rarely improves results",
			len(d.images), RecommendedMaxImages)
	}
	return added
}

// RemoveImage removes the image with the given id and releases its preview.
// Removing a nonexistent id is a no-op.
func (d *Dataset) RemoveImage(id model.ImageID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, img := range d.images {
		if img.ID == id {
			img.Preview.Release()
			d.images = append(d.images[:i], d.images[i+1:]...)
			return
		}
	}
}

// Clear releases every preview and empties the collection.
func (d *Dataset) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, img := range d.images {
		img.Preview.Release()
	}
	d.images = nil
}

// Size returns the number of images in the dataset.
func (d *Dataset) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.images)
}

// Images returns the collection in insertion order.
func (d *Dataset) Images() []model.TrainingImage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.TrainingImage, len(d.images))
	copy(out, d.images)
	return out
}

// CanTrain reports whether the gate is open: at least MinTrainingImages
// images are present.
func (d *Dataset) CanTrain() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.images) >= MinTrainingImages
}
