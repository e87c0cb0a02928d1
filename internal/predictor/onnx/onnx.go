// Package onnx adapts an exported ONNX classification model to the
// predictor interface using the onnxruntime shared library.
package onnx

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/predictor"
)

// featuresPerBar is the model's per-bar input width:
// open, high, low, close, volume, close-to-close change.
const featuresPerBar = 6

var initOnce sync.Once

// InitRuntime loads the onnxruntime shared library once per process.
func InitRuntime(libPath string) error {
	var err error
	initOnce.Do(func() {
		if libPath == "" {
			switch runtime.GOOS {
			case "windows":
				libPath = "onnxruntime.dll"
			case "darwin":
				libPath = "libonnxruntime.dylib"
			default:
				libPath = "/usr/lib/libonnxruntime.so"
			}
		}
		ort.SetSharedLibraryPath(libPath)
		err = ort.InitializeEnvironment()
	})
	return err
}

// Model runs inference over a fixed-length bar window. The session output is
// a softmax over {hold, buy, sell}.
type Model struct {
	name    string
	seqLen  int
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	mu      sync.Mutex
}

// New creates a predictor backed by the ONNX model at modelPath.
func New(name, modelPath string, seqLen int) (*Model, error) {
	if err := InitRuntime(""); err != nil {
		return nil, core.WrapError(core.ErrPredictorFailed, err)
	}

	inputShape := ort.NewShape(1, int64(seqLen), featuresPerBar)
	inputTensor, err := ort.NewTensor(inputShape, make([]float32, seqLen*featuresPerBar))
	if err != nil {
		return nil, core.WrapError(core.ErrPredictorFailed, fmt.Errorf("input tensor: %w", err))
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3))
	if err != nil {
		inputTensor.Destroy()
		return nil, core.WrapError(core.ErrPredictorFailed, fmt.Errorf("output tensor: %w", err))
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, core.WrapError(core.ErrPredictorFailed, fmt.Errorf("session: %w", err))
	}

	return &Model{
		name:    name,
		seqLen:  seqLen,
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Name returns the predictor identifier.
func (m *Model) Name() string {
	return m.name
}

// Predict classifies the most recent bar of the window.
func (m *Model) Predict(ctx context.Context, window []core.Bar) (predictor.Prediction, error) {
	if len(window) < m.seqLen {
		return predictor.Prediction{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need %d bars, got %d", m.seqLen, len(window)))
	}
	if err := ctx.Err(); err != nil {
		return predictor.Prediction{}, err
	}

	features := Features(window[len(window)-m.seqLen:])

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.input.GetData(), features)
	if err := m.session.Run(); err != nil {
		return predictor.Prediction{}, core.WrapError(core.ErrPredictorFailed, err)
	}

	out := m.output.GetData()
	return decode(out), nil
}

// Close releases the session and tensors.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
}

// Features flattens a bar window into the model's input layout, normalizing
// prices against the first close and volume against the window maximum.
func Features(window []core.Bar) []float32 {
	features := make([]float32, 0, len(window)*featuresPerBar)

	base := window[0].Close
	if base == 0 {
		base = 1
	}
	var maxVol int64 = 1
	for _, b := range window {
		if b.Volume > maxVol {
			maxVol = b.Volume
		}
	}

	prevClose := window[0].Close
	for _, b := range window {
		change := 0.0
		if prevClose != 0 {
			change = (b.Close - prevClose) / prevClose
		}
		features = append(features,
			float32(b.Open/base),
			float32(b.High/base),
			float32(b.Low/base),
			float32(b.Close/base),
			float32(float64(b.Volume)/float64(maxVol)),
			float32(change),
		)
		prevClose = b.Close
	}
	return features
}

// decode maps the softmax output [hold, buy, sell] to a prediction.
func decode(out []float32) predictor.Prediction {
	actions := []core.Action{core.ActionHold, core.ActionBuy, core.ActionSell}
	best := 0
	for i := 1; i < len(out) && i < len(actions); i++ {
		if out[i] > out[best] {
			best = i
		}
	}
	return predictor.Prediction{
		Action:     actions[best],
		Confidence: float64(out[best]),
	}
}
