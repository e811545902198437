package photon

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// magic is the persisted photon-map header prefix (§6). The format is
// little-endian throughout.
const magic = "YAF_PHOTONMAPv1"

// File is the on-disk photon-map record of §6: a name, the build
// parameters that produced it, and the flat photon list.
type File struct {
	Name         string
	Paths        int32
	SearchRadius float32
	Threads      int32
	Photons      []Photon
}

// Save writes f to w in the persisted format: magic, length-prefixed name,
// paths/search_radius/threads, a count, then count {pos,color} records.
func Save(w io.Writer, f File) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return errors.Wrap(err, "photon: write magic")
	}
	if err := writeString(bw, f.Name); err != nil {
		return errors.Wrap(err, "photon: write name")
	}
	if err := binary.Write(bw, binary.LittleEndian, f.Paths); err != nil {
		return errors.Wrap(err, "photon: write paths")
	}
	if err := binary.Write(bw, binary.LittleEndian, f.SearchRadius); err != nil {
		return errors.Wrap(err, "photon: write search radius")
	}
	if err := binary.Write(bw, binary.LittleEndian, f.Threads); err != nil {
		return errors.Wrap(err, "photon: write threads")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(f.Photons))); err != nil {
		return errors.Wrap(err, "photon: write count")
	}

	for _, p := range f.Photons {
		rec := [6]float32{
			float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z),
			float32(p.Power.X), float32(p.Power.Y), float32(p.Power.Z),
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return errors.Wrap(err, "photon: write record")
		}
	}

	return bw.Flush()
}

// Load reads a photon map previously written by Save. Photon.Dir and .Kind
// are not part of the persisted format (§6 records only pos and color) and
// are zero-valued on load; callers that need a usable map for gathering
// should rebuild the kd-tree with Build after Load.
func Load(r io.Reader) (File, error) {
	br := bufio.NewReader(r)

	got := make([]byte, len(magic))
	if _, err := io.ReadFull(br, got); err != nil {
		return File{}, errors.Wrap(err, "photon: read magic")
	}
	if string(got) != magic {
		return File{}, errors.Errorf("photon: bad magic %q", got)
	}

	name, err := readString(br)
	if err != nil {
		return File{}, errors.Wrap(err, "photon: read name")
	}

	var f File
	f.Name = name

	if err := binary.Read(br, binary.LittleEndian, &f.Paths); err != nil {
		return File{}, errors.Wrap(err, "photon: read paths")
	}
	if err := binary.Read(br, binary.LittleEndian, &f.SearchRadius); err != nil {
		return File{}, errors.Wrap(err, "photon: read search radius")
	}
	if err := binary.Read(br, binary.LittleEndian, &f.Threads); err != nil {
		return File{}, errors.Wrap(err, "photon: read threads")
	}

	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return File{}, errors.Wrap(err, "photon: read count")
	}

	f.Photons = make([]Photon, count)
	for i := range f.Photons {
		var rec [6]float32
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return File{}, errors.Wrapf(err, "photon: read record %d", i)
		}
		f.Photons[i] = Photon{
			Position: Vec3{X: float64(rec[0]), Y: float64(rec[1]), Z: float64(rec[2])},
			Power:    Vec3{X: float64(rec[3]), Y: float64(rec[4]), Z: float64(rec[5])},
		}
	}

	return f, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
