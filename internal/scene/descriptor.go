package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ivlev/steps2video/internal/channel"
	"github.com/ivlev/steps2video/internal/timeline"
)

// StepState is the active step at a frame.
type StepState struct {
	Index  int             `json:"index"`
	Label  string          `json:"label"`
	Local  timeline.Frame  `json:"local"`
	Window timeline.Window `json:"window"`
}

// Descriptor is the resolved state of one frame, consumed by the presentation layer.
type Descriptor struct {
	Frame         timeline.Frame       `json:"frame"`
	Time          float64              `json:"time"`
	Step          StepState            `json:"step"`
	Blend         timeline.Blend       `json:"blend"`
	OutgoingLabel string               `json:"outgoing_label,omitempty"`
	IncomingLabel string               `json:"incoming_label"`
	Channels      map[string]float64   `json:"channels"`
	Gates         map[string]bool      `json:"gates"`
	Staggers      map[string][]float64 `json:"staggers"`
	Progress      channel.Progress     `json:"progress"`
}

// OutgoingOpacity is the opacity of the step being replaced, 0 when nothing is blending.
func (d Descriptor) OutgoingOpacity() float64 {
	if !d.Blend.Blending() {
		return 0
	}
	return 1 - d.Blend.Ratio
}

// IncomingOpacity is the opacity of the step being revealed.
func (d Descriptor) IncomingOpacity() float64 {
	return d.Blend.Ratio
}

// Digest returns a stable hash of the descriptor. Map keys are encoded in sorted order,
// so equal descriptors always share a digest.
func (d Descriptor) Digest() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
