// Package render turns documents into inspection output: indented JSON,
// Graphviz DOT and PNG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/msalah0e/nodeweave/internal/scene"
)

// Formats.
const (
	JSON = "json"
	DOT  = "dot"
	PNG  = "png"
)

// Formats lists every supported export format.
var Formats = []string{JSON, DOT, PNG}

var ErrUnknownFormat = errors.New("unknown export format")

// Options control the geometry used for layout-dependent output.
type Options struct {
	Metrics   scene.Metrics
	Roundness float64
	// Margin is the empty border around the nodes in PNG output.
	Margin float64
}

func DefaultOptions() Options {
	return Options{
		Metrics:   scene.DefaultMetrics(),
		Roundness: scene.DefaultRoundness,
		Margin:    40,
	}
}

// ParseFormats splits a comma separated list such as "json,png".
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if f != JSON && f != DOT && f != PNG {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// Write renders doc in format to w.
func Write(w io.Writer, format string, doc scene.Document, opts Options) error {
	switch format {
	case JSON:
		data, err := scene.EncodeDocument(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case DOT:
		s, err := ExportDOT(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s)
		return err
	case PNG:
		return ExportPNG(w, doc, opts)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// layout rebuilds doc in a private scene so socket positions and edge
// paths can be read back.
func layout(doc scene.Document, opts Options) (*scene.Scene, error) {
	sc := scene.New(scene.WithMetrics(opts.Metrics), scene.WithRoundness(opts.Roundness))
	if err := sc.Deserialize(doc, true); err != nil {
		return nil, err
	}
	return sc, nil
}
