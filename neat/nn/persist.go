package nn

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnresolvedActivation is returned when a saved network uses a custom
// activation that the loader was not given.
var ErrUnresolvedActivation = errors.New("unresolved custom activation")

// networkRecord is the on-disk form of a Network. Only structure and the
// activation selection are stored; activation state is not.
type networkRecord struct {
	ActivationKind ActivationKind
	ActivationName string
	Nodes          []nodeRecord
	Links          []linkRecord
}

type nodeRecord struct {
	ID   int
	Kind NodeKind
}

type linkRecord struct {
	In        int
	Out       int
	Weight    float64
	Recurrent bool
}

// Encode writes the network as gzip-compressed gob.
func (net *Network) Encode(w io.Writer) error {
	rec := networkRecord{
		ActivationKind: net.activation.Kind,
		ActivationName: net.activation.String(),
		Nodes:          make([]nodeRecord, len(net.nodes)),
		Links:          make([]linkRecord, len(net.links)),
	}
	for i, n := range net.nodes {
		rec.Nodes[i] = nodeRecord{ID: n.ID, Kind: n.Kind}
	}
	for i, l := range net.links {
		rec.Links[i] = linkRecord{In: l.In, Out: l.Out, Weight: l.Weight, Recurrent: l.Recurrent}
	}

	gzWriter := gzip.NewWriter(w)
	if err := gob.NewEncoder(gzWriter).Encode(rec); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode network: %w", err)
	}
	return gzWriter.Close()
}

// Decode reads a network written by Encode. Custom activations are looked up
// by name in custom.
func Decode(r io.Reader, custom map[string]ActivationFunc) (*Network, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for network: %w", err)
	}
	defer gzReader.Close()

	var rec networkRecord
	if err := gob.NewDecoder(gzReader).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}

	activation := activationOf(rec.ActivationKind)
	if rec.ActivationKind == ActivationCustom {
		fn, ok := custom[rec.ActivationName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedActivation, rec.ActivationName)
		}
		activation = Custom(rec.ActivationName, fn)
	}

	net := NewNetwork(activation)
	for _, n := range rec.Nodes {
		if err := net.AddNode(NewNode(n.Kind, n.ID)); err != nil {
			return nil, err
		}
	}
	for _, l := range rec.Links {
		if err := net.AddLink(NewLink(l.In, l.Out, l.Weight, l.Recurrent)); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Save writes the network to filePath.
func (net *Network) Save(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create network file '%s': %w", filePath, err)
	}
	if err := net.Encode(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to save network to '%s': %w", filePath, err)
	}
	return file.Close()
}

// Load reads a network saved with Save. It fails for networks using a
// custom activation; use LoadWithActivations for those.
func Load(filePath string) (*Network, error) {
	return LoadWithActivations(filePath, nil)
}

// LoadWithActivations reads a network saved with Save, resolving custom
// activations by name.
func LoadWithActivations(filePath string, custom map[string]ActivationFunc) (*Network, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open network file '%s': %w", filePath, err)
	}
	defer file.Close()

	net, err := Decode(file, custom)
	if err != nil {
		return nil, fmt.Errorf("failed to load network from '%s': %w", filePath, err)
	}
	return net, nil
}
