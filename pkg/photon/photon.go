// Package photon implements C6/C7/C8: the photon record, the balanced point
// kd-tree and hash-grid spatial accelerators used to query it, and the
// emission/tracing pass that populates a map (§4.6-§4.8).
package photon

import "github.com/lumenforge/tracecore/pkg/core"

// Kind tags which map a photon belongs to, mirroring the caustic/diffuse
// split of §4.8 point 2 ("photons that arrive via at least one specular
// bounce are filed in the caustic map; all others in the diffuse map").
type Kind int

const (
	KindDiffuse Kind = iota
	KindCaustic
)

// Photon is a single deposited sample: position, incoming direction, power,
// and which map it belongs to.
type Photon struct {
	Position Vec3
	Dir      Vec3 // unit vector pointing back toward the previous bounce
	Power    Vec3 // unnormalized flux carried by this photon
	Kind     Kind
}

type Vec3 = core.Vec3
