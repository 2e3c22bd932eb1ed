package trafficview

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// defaultIconSide is the pixel size of the built-in arrow icons.
const defaultIconSide = 32

// IconSet holds one directional icon per vehicle type. Icons point right
// (direction Right) when unrotated. A nil entry is simply not drawn.
type IconSet struct {
	icons [2]*ebiten.Image
}

// Icon returns the icon for t, or nil. Safe on a nil IconSet.
func (s *IconSet) Icon(t VehicleType) *ebiten.Image {
	if s == nil || int(t) >= len(s.icons) {
		return nil
	}
	return s.icons[t]
}

// SetIcon replaces the icon for t. A nil image disables it.
func (s *IconSet) SetIcon(t VehicleType, img *ebiten.Image) {
	if int(t) < len(s.icons) {
		s.icons[t] = img
	}
}

// DefaultIcons returns procedurally drawn white arrows for every vehicle
// type. The images are created on call, so call it after the game starts.
func DefaultIcons() *IconSet {
	s := &IconSet{}
	arrow := newArrowIcon(defaultIconSide)
	s.icons[VehicleCar] = arrow
	s.icons[VehicleBike] = arrow
	return s
}

// newArrowIcon draws a right-pointing arrow on a transparent square.
func newArrowIcon(side int) *ebiten.Image {
	img := ebiten.NewImage(side, side)
	f := float32(side)
	w := f / 8
	clr := ColorPaper.RGBA()
	vector.StrokeLine(img, f*0.2, f/2, f*0.8, f/2, w, clr, true)
	vector.StrokeLine(img, f*0.8, f/2, f*0.55, f*0.25, w, clr, true)
	vector.StrokeLine(img, f*0.8, f/2, f*0.55, f*0.75, w, clr, true)
	return img
}

// LoadIcons loads one image per vehicle type from fsys. Types missing from
// paths, or whose file fails to load, are left nil; the joined error lists
// every failure so the caller can log it and carry on.
func LoadIcons(fsys fs.FS, paths map[VehicleType]string) (*IconSet, error) {
	s := &IconSet{}
	var errs []error
	for t, path := range paths {
		if int(t) >= len(s.icons) {
			errs = append(errs, fmt.Errorf("icon %q: unknown vehicle type %d", path, t))
			continue
		}
		img, _, err := ebitenutil.NewImageFromFileSystem(fsys, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s icon %q: %w", t, path, err))
			continue
		}
		s.icons[t] = img
	}
	return s, errors.Join(errs...)
}
