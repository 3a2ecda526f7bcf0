package local

import (
	"fmt"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortRuntime tracks process-wide ONNX Runtime initialization.
var ortRuntime struct {
	once sync.Once
	err  error
}

func initRuntime(libraryPath string) error {
	ortRuntime.once.Do(func() {
		ort.SetSharedLibraryPath(libraryPath)
		ortRuntime.err = ort.InitializeEnvironment()
	})
	return ortRuntime.err
}

// session runs a BERT-style encoder that maps token ids to per-token hidden
// states of shape [rows, cols, dim].
type session struct {
	onnx       *ort.DynamicAdvancedSession
	inputNames []string
	dim        int64
}

// openSession loads modelPath. fallbackDim is used when the model leaves its
// hidden dimension symbolic.
func openSession(modelPath string, fallbackDim int64) (*session, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: read model info: %w", err)
	}

	inputNames, err := encoderInputs(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	shape := outputs[0].Dimensions
	if len(shape) != 3 {
		return nil, fmt.Errorf("onnx: expected [batch, seq, dim] output, got %v", shape)
	}
	dim := shape[2]
	if dim <= 0 {
		dim = fallbackDim
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	onnx, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}

	return &session{onnx: onnx, inputNames: inputNames, dim: dim}, nil
}

// encoderInputs requires input_ids and attention_mask; token_type_ids is
// passed only when the model declares it.
func encoderInputs(inputs []ort.InputOutputInfo) ([]string, error) {
	declared := make([]string, len(inputs))
	for i, in := range inputs {
		declared[i] = in.Name
	}

	names := []string{"input_ids", "attention_mask"}
	for _, name := range names {
		if !slices.Contains(declared, name) {
			return nil, fmt.Errorf("onnx: model missing input %q", name)
		}
	}
	if slices.Contains(declared, "token_type_ids") {
		names = append(names, "token_type_ids")
	}
	return names, nil
}

// run performs one inference over the whole batch and returns the flat
// hidden states.
func (s *session) run(b batch) ([]float32, error) {
	shape := ort.NewShape(b.rows, b.cols)

	feeds := map[string][]int64{
		"input_ids":      b.inputIDs,
		"attention_mask": b.attentionMask,
		"token_type_ids": b.tokenTypeIDs,
	}
	inputs := make([]ort.Value, 0, len(s.inputNames))
	defer func() {
		for _, in := range inputs {
			in.Destroy()
		}
	}()
	for _, name := range s.inputNames {
		t, err := ort.NewTensor(shape, feeds[name])
		if err != nil {
			return nil, fmt.Errorf("onnx: %s tensor: %w", name, err)
		}
		inputs = append(inputs, t)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(b.rows, b.cols, s.dim))
	if err != nil {
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.onnx.Run(inputs, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}

	return slices.Clone(out.GetData()), nil
}

func (s *session) close() error {
	return s.onnx.Destroy()
}
