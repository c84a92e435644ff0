package descriptor

import (
	"fmt"

	"github.com/backkem/zigbee/pkg/bitfield"
	"github.com/backkem/zigbee/pkg/codec"
)

// MaxClusters is the largest cluster list a count byte can describe.
const MaxClusters = 0xff

var sdVersion = bitfield.Bits(0, 4)

// SimpleDescriptor describes one endpoint of a node (Section 2.3.2.5).
type SimpleDescriptor struct {
	Endpoint       uint8
	ProfileID      uint16
	DeviceID       uint16
	DeviceVersion  uint8
	InputClusters  []uint16
	OutputClusters []uint16
}

// Size returns the encoded size.
func (d *SimpleDescriptor) Size() int {
	return 8 + 2*len(d.InputClusters) + 2*len(d.OutputClusters)
}

// DecodeFrom reads a simple descriptor.
func (d *SimpleDescriptor) DecodeFrom(r *codec.Reader) error {
	var out SimpleDescriptor
	var err error
	if out.Endpoint, err = r.Uint8(); err != nil {
		return fmt.Errorf("descriptor: endpoint: %w", err)
	}
	if out.ProfileID, err = r.Uint16(); err != nil {
		return fmt.Errorf("descriptor: profile identifier: %w", err)
	}
	if out.DeviceID, err = r.Uint16(); err != nil {
		return fmt.Errorf("descriptor: device identifier: %w", err)
	}
	version, err := r.Uint8()
	if err != nil {
		return fmt.Errorf("descriptor: device version: %w", err)
	}
	out.DeviceVersion = bitfield.Get(version, sdVersion)
	if out.InputClusters, err = decodeClusters(r); err != nil {
		return fmt.Errorf("descriptor: input clusters: %w", err)
	}
	if out.OutputClusters, err = decodeClusters(r); err != nil {
		return fmt.Errorf("descriptor: output clusters: %w", err)
	}
	*d = out
	return nil
}

// EncodeTo writes the simple descriptor.
func (d *SimpleDescriptor) EncodeTo(w *codec.Writer) error {
	if len(d.InputClusters) > MaxClusters || len(d.OutputClusters) > MaxClusters {
		return ErrTooManyClusters
	}
	w.PutUint8(d.Endpoint)
	w.PutUint16(d.ProfileID)
	w.PutUint16(d.DeviceID)
	w.PutUint8(bitfield.Set(uint8(0), sdVersion, d.DeviceVersion))
	encodeClusters(w, d.InputClusters)
	encodeClusters(w, d.OutputClusters)
	return nil
}

func decodeClusters(r *codec.Reader) ([]uint16, error) {
	count, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	clusters := make([]uint16, count)
	for i := range clusters {
		if clusters[i], err = r.Uint16(); err != nil {
			return nil, err
		}
	}
	return clusters, nil
}

func encodeClusters(w *codec.Writer, clusters []uint16) {
	w.PutUint8(uint8(len(clusters)))
	for _, c := range clusters {
		w.PutUint16(c)
	}
}
