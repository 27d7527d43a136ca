// Package scenario turns a scenario document into agents ready for registration.
//
// The XML form mirrors the classic layout:
//
//	<scenario>
//	  <AgentList>
//	    <Agent x="0" y="0" heading="0" speed="1" drange="5" variant="special" probability="linear"/>
//	  </AgentList>
//	</scenario>
//
// The same agent list can be written as YAML, JSON or TOML under an "agents" key.
package scenario

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrNoAgentList   = errors.New("scenario has no AgentList element")
	ErrUnknownFormat = errors.New("unknown scenario format")
)

// Descriptor holds the construction parameters of one agent.
type Descriptor struct {
	X              float64 `mapstructure:"x"`
	Y              float64 `mapstructure:"y"`
	Heading        float64 `mapstructure:"heading"` // radians
	Speed          float64 `mapstructure:"speed"`
	DetectionRange float64 `mapstructure:"drange"`

	// Variant selects the agent variant; empty means the factory default.
	Variant string `mapstructure:"variant"`
	// RangeScale, when set, adds a deterministic range-scaling decorator.
	RangeScale *float64 `mapstructure:"rangeScale"`
	// Probability, when set, adds a stochastic decorator: a number in [0, 1]
	// or "linear" for linear falloff over the detection range.
	Probability string `mapstructure:"probability"`
}

type xmlScenario struct {
	XMLName   xml.Name      `xml:"scenario"`
	AgentList *xmlAgentList `xml:"AgentList"`
}

type xmlAgentList struct {
	Agents []xmlAgent `xml:",any"`
}

type xmlAgent struct {
	XMLName     xml.Name
	X           string `xml:"x,attr"`
	Y           string `xml:"y,attr"`
	Heading     string `xml:"heading,attr"`
	Speed       string `xml:"speed,attr"`
	DRange      string `xml:"drange,attr"`
	Variant     string `xml:"variant,attr"`
	RangeScale  string `xml:"rangeScale,attr"`
	Probability string `xml:"probability,attr"`
}

// Load reads agent descriptors from path, picking the format from the file extension.
func Load(path string) ([]Descriptor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening scenario: %w", err)
		}
		defer f.Close()
		descs, err := ParseXML(f)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
		return descs, nil
	case ".yaml", ".yml", ".json", ".toml":
		return loadStructured(path)
	default:
		return nil, fmt.Errorf("scenario %s: %w", path, ErrUnknownFormat)
	}
}

// ParseXML reads agent descriptors from an XML scenario document.
// Every child element of AgentList is an agent; missing numeric attributes read as 0.
func ParseXML(r io.Reader) ([]Descriptor, error) {
	var doc xmlScenario
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding xml: %w", err)
	}
	if doc.AgentList == nil {
		return nil, ErrNoAgentList
	}

	descs := make([]Descriptor, 0, len(doc.AgentList.Agents))
	for i, el := range doc.AgentList.Agents {
		d, err := el.descriptor()
		if err != nil {
			return nil, fmt.Errorf("agent %d (<%s>): %w", i, el.XMLName.Local, err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func (a xmlAgent) descriptor() (Descriptor, error) {
	d := Descriptor{
		Variant:     strings.TrimSpace(a.Variant),
		Probability: strings.TrimSpace(a.Probability),
	}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"x", a.X, &d.X},
		{"y", a.Y, &d.Y},
		{"heading", a.Heading, &d.Heading},
		{"speed", a.Speed, &d.Speed},
		{"drange", a.DRange, &d.DetectionRange},
	}
	for _, f := range fields {
		v, err := parseDouble(f.raw)
		if err != nil {
			return Descriptor{}, fmt.Errorf("attribute %s: %w", f.name, err)
		}
		*f.dst = v
	}
	if strings.TrimSpace(a.RangeScale) != "" {
		v, err := parseDouble(a.RangeScale)
		if err != nil {
			return Descriptor{}, fmt.Errorf("attribute rangeScale: %w", err)
		}
		d.RangeScale = &v
	}
	return d, nil
}

func parseDouble(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func loadStructured(path string) ([]Descriptor, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	if !v.IsSet("agents") {
		return nil, fmt.Errorf("scenario %s: %w", path, ErrNoAgentList)
	}
	var descs []Descriptor
	if err := v.UnmarshalKey("agents", &descs); err != nil {
		return nil, fmt.Errorf("decoding scenario %s: %w", path, err)
	}
	return descs, nil
}
