package profile

import (
	"bytes"
	"sort"
	"strings"
)

// Source tells how the active profile was determined.
type Source int

const (
	// SourceNone means no profile is active.
	SourceNone Source = iota
	// SourceMarker means the marker file named the profile.
	SourceMarker
	// SourcePublicKey means the installed public key matched the profile.
	SourcePublicKey
)

// String returns the label shown after "Active".
func (s Source) String() string {
	switch s {
	case SourceMarker:
		return "marker"
	case SourcePublicKey:
		return "detected from public key"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	switch s {
	case SourceMarker:
		return []byte("marker"), nil
	case SourcePublicKey:
		return []byte("public_key"), nil
	default:
		return []byte("none"), nil
	}
}

// Active is the outcome of active-profile detection.
type Active struct {
	Name   string `json:"name,omitempty"`
	Source Source `json:"source"`
}

// Found reports whether a profile is active.
func (a Active) Found() bool {
	return a.Source != SourceNone
}

// Candidate is a profile's public key as seen during detection.
type Candidate struct {
	Name      string
	Basename  string
	PublicKey []byte
}

// LiveKeys maps a key basename such as "id_ed25519" to the public key
// installed in the SSH directory under that name.
type LiveKeys map[string][]byte

// ResolveActive decides the active profile from a snapshot of disk state.
//
// A non-empty marker wins outright; whether the profile still exists is not
// checked. Otherwise the first candidate, by name, whose trimmed public key
// equals the trimmed live key of the same basename is active. When nothing
// matches the zero Active is returned.
func ResolveActive(marker string, candidates []Candidate, live LiveKeys) Active {
	if name := strings.TrimSpace(marker); name != "" {
		return Active{Name: name, Source: SourceMarker}
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	for _, c := range ordered {
		pub := bytes.TrimSpace(c.PublicKey)
		if len(pub) == 0 {
			continue
		}
		current, ok := live[c.Basename]
		if !ok {
			continue
		}
		if bytes.Equal(pub, bytes.TrimSpace(current)) {
			return Active{Name: c.Name, Source: SourcePublicKey}
		}
	}

	return Active{}
}
