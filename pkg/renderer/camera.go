package renderer

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Camera is a thin-lens perspective camera implementing core.Camera
// (§6 "camera.generateRay(pixel_x, pixel_y, lens_u, lens_v) -> (ray,
// weight)"). LensRadius > 0 enables depth-of-field: lens_u/lens_v sample a
// disk of that radius centered on the eye, focused at FocusDist.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // camera basis: u = right, v = up, w = back (toward eye)
	lensRadius      float64
	imageWidth      float64
	imageHeight     float64
}

// NewCamera builds a camera at position looking toward lookAt, with up as
// the world up hint, vfov in degrees, an image of imageWidth x imageHeight
// pixels, and depth-of-field parameters aperture (lens diameter) and
// focusDist (distance to the plane in perfect focus).
func NewCamera(position, lookAt, up core.Vec3, vfov, imageWidth, imageHeight, aperture, focusDist float64) *Camera {
	aspectRatio := imageWidth / imageHeight
	theta := vfov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspectRatio * halfHeight

	w := position.Subtract(lookAt).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := position
	horizontal := u.Multiply(2 * halfWidth * focusDist)
	vertical := v.Multiply(2 * halfHeight * focusDist)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDist))

	return &Camera{
		origin:          origin,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      aperture / 2,
		imageWidth:      imageWidth,
		imageHeight:     imageHeight,
	}
}

// NewDefaultCamera builds a pinhole camera (no depth of field) at the
// origin looking down -Z, the configuration the teacher's NewCamera shipped
// with, for scenes that don't need an explicit camera setup.
func NewDefaultCamera(imageWidth, imageHeight float64) *Camera {
	return NewCamera(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 1, 0),
		90,
		imageWidth, imageHeight,
		0, 1,
	)
}

// GenerateRay implements core.Camera. pixelX/pixelY are continuous pixel
// coordinates (fractional for anti-aliasing offsets); lensU/lensV are in
// [0,1) and sampled onto the lens disk for depth of field. weight is always
// 1 for this pinhole/thin-lens model; it exists in the signature for
// cameras that vignette or otherwise weight samples non-uniformly.
func (c *Camera) GenerateRay(pixelX, pixelY, lensU, lensV float64) (core.Ray, float64) {
	s := pixelX / c.imageWidth
	t := 1.0 - pixelY/c.imageHeight

	var offset core.Vec3
	if c.lensRadius > 0 {
		rd := sampleUnitDisk(lensU, lensV).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	target := c.lowerLeftCorner.Add(c.horizontal.Multiply(s)).Add(c.vertical.Multiply(t))
	rayOrigin := c.origin.Add(offset)
	direction := target.Subtract(rayOrigin)

	return core.NewRay(rayOrigin, direction), 1.0
}

// sampleUnitDisk maps two uniform numbers in [0,1) to a point in the unit
// disk via the concentric-mapping the teacher's sampling code uses
// elsewhere (low-distortion compared to rejection sampling).
func sampleUnitDisk(u1, u2 float64) core.Vec3 {
	a := 2*u1 - 1
	b := 2*u2 - 1
	if a == 0 && b == 0 {
		return core.Vec3{}
	}
	var r, theta float64
	if math.Abs(a) > math.Abs(b) {
		r = a
		theta = math.Pi / 4 * (b / a)
	} else {
		r = b
		theta = math.Pi/2 - math.Pi/4*(a/b)
	}
	return core.NewVec3(r*math.Cos(theta), r*math.Sin(theta), 0)
}
