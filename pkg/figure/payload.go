package figure

import (
	"encoding/json"

	"github.com/matzehuels/offlineplot/pkg/errors"
)

// Config is the plotly.js config object emitted next to data and layout.
type Config struct {
	ShowLink bool   `json:"showLink"`
	LinkText string `json:"linkText"`
}

// Payload holds the three JSON arguments passed to Plotly.newPlot.
type Payload struct {
	Data   string
	Layout string
	Config string
}

// Serialize encodes f into a Payload. A nil data list is written as [] and a
// nil layout as {}.
func Serialize(f *Figure, cfg Config) (Payload, error) {
	if f == nil {
		return Payload{}, errors.New(errors.ErrCodeInvalidFigure, "figure is nil")
	}

	data := f.Data
	if data == nil {
		data = []Trace{}
	}
	layout := f.Layout
	if layout == nil {
		layout = map[string]any{}
	}

	jdata, err := Marshal(data)
	if err != nil {
		return Payload{}, err
	}
	jlayout, err := Marshal(layout)
	if err != nil {
		return Payload{}, err
	}
	jconfig, err := json.Marshal(cfg)
	if err != nil {
		return Payload{}, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}

	return Payload{
		Data:   string(jdata),
		Layout: string(jlayout),
		Config: string(jconfig),
	}, nil
}
