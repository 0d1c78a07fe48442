package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
)

// Format is a scenario file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(p string) (Format, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, p)
	}
}

// Load reads, decodes and validates the scenario file at p.
func Load(p string) (*Scenario, error) {
	format, err := FormatFromPath(p)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", p, err)
	}

	sc, err := decode(format, p, data)
	if err != nil {
		return nil, err
	}
	sc.Source = p
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Parse decodes and validates a scenario held in memory.
func Parse(format Format, data []byte) (*Scenario, error) {
	sc, err := decode(format, "<input>", data)
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func decode(format Format, source string, data []byte) (*Scenario, error) {
	switch format {
	case FormatTOML:
		return decodeTOML(source, data)
	case FormatJSON:
		return decodeJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func decodeTOML(source string, data []byte) (*Scenario, error) {
	var sc Scenario
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			perr.Message = "unknown fields:\n" + serr.String()
		}
		return nil, perr
	}
	return &sc, nil
}

func decodeJSON(source string, data []byte) (*Scenario, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "malformed JSON"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &ParseError{Path: source, Message: "top level value must be an object"}
	}

	sc := &Scenario{
		Name:        doc.Get("name").String(),
		Description: doc.Get("description").String(),
	}

	doc.Get("subscriptions").ForEach(func(_, v gjson.Result) bool {
		sc.Subscriptions = append(sc.Subscriptions, SubscriptionSpec{
			Label:    v.Get("label").String(),
			Event:    v.Get("event").String(),
			Path:     v.Get("path").String(),
			Kind:     Kind(v.Get("kind").String()),
			Delegate: v.Get("delegate").String(),
			Action:   Action(v.Get("action").String()),
			Script:   v.Get("script").String(),
			Message:  v.Get("message").String(),
		})
		return true
	})

	doc.Get("steps").ForEach(func(_, v gjson.Result) bool {
		step := Step{
			Op:          Op(v.Get("op").String()),
			Event:       v.Get("event").String(),
			Path:        v.Get("path").String(),
			NoBubble:    v.Get("no_bubble").Bool(),
			Label:       v.Get("label").String(),
			ExpectNone:  v.Get("expect_none").Bool(),
			ExpectError: v.Get("expect_error").String(),
		}
		if d := v.Get("data"); d.Exists() {
			step.Data = d.Value()
		}
		if pl := v.Get("payload"); pl.IsObject() {
			step.Payload, _ = pl.Value().(map[string]any)
		}
		if e := v.Get("expect"); e.IsArray() {
			step.Expect = []string{}
			for _, hit := range e.Array() {
				step.Expect = append(step.Expect, hit.String())
			}
		}
		sc.Steps = append(sc.Steps, step)
		return true
	})

	return sc, nil
}
