// Package emb runs sentence-embedding models exported to ONNX.
package emb

import (
	"errors"
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Config describes where the runtime, model and tokenizer live.
type Config struct {
	OrtDLL        string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
}

// Encoder turns text into a mean-pooled, L2-normalised sentence vector.
// Encode is safe for concurrent use; calls are serialised on the session.
type Encoder struct {
	mu         sync.Mutex
	tk         *tokenizer.Tokenizer
	session    *ort.DynamicAdvancedSession
	inputNames []string
	maxSeqLen  int
}

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				return fmt.Errorf("initialize onnxruntime: %w", err)
			}
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		return
	}
	envRefs--
	if envRefs == 0 && ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}

// Init loads the tokenizer and creates the inference session.
func (e *Encoder) Init(cfg Config) error {
	if cfg.ModelPath == "" {
		return errors.New("model path is required")
	}
	if cfg.TokenizerPath == "" {
		return errors.New("tokenizer path is required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}
	if err := acquireEnvironment(cfg.OrtDLL); err != nil {
		return err
	}
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		releaseEnvironment()
		return fmt.Errorf("inspect model: %w", err)
	}
	if len(outputs) == 0 {
		releaseEnvironment()
		return errors.New("model has no outputs")
	}
	inputNames := make([]string, 0, len(inputs))
	for _, in := range inputs {
		switch in.Name {
		case "input_ids", "attention_mask", "token_type_ids":
			inputNames = append(inputNames, in.Name)
		default:
			releaseEnvironment()
			return fmt.Errorf("unsupported model input %q", in.Name)
		}
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, []string{outputs[0].Name}, nil)
	if err != nil {
		releaseEnvironment()
		return fmt.Errorf("create session: %w", err)
	}
	e.tk = tk
	e.session = session
	e.inputNames = inputNames
	e.maxSeqLen = cfg.MaxSeqLen
	return nil
}

// Close destroys the session and releases the shared runtime environment.
func (e *Encoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return
	}
	_ = e.session.Destroy()
	e.session = nil
	releaseEnvironment()
}

// Encode embeds a single text.
func (e *Encoder) Encode(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, errors.New("encoder is not initialized")
	}
	en, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask, types := truncate(en.Ids, en.AttentionMask, en.TypeIds, e.maxSeqLen)
	if len(ids) == 0 {
		return nil, errors.New("tokenizer produced no tokens")
	}
	shape := ort.NewShape(1, int64(len(ids)))
	inputs := make([]ort.Value, 0, len(e.inputNames))
	defer func() {
		for _, v := range inputs {
			_ = v.Destroy()
		}
	}()
	for _, name := range e.inputNames {
		var data []int64
		switch name {
		case "input_ids":
			data = toInt64(ids)
		case "attention_mask":
			data = toInt64(mask)
		default:
			data = toInt64(types)
		}
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, fmt.Errorf("create %s tensor: %w", name, err)
		}
		inputs = append(inputs, t)
	}
	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	defer func() {
		if outputs[0] != nil {
			_ = outputs[0].Destroy()
		}
	}()
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("unexpected model output type")
	}
	return pool(out.GetData(), out.GetShape(), mask)
}

func pool(data []float32, shape ort.Shape, mask []int) ([]float32, error) {
	switch len(shape) {
	case 2:
		dim := int(shape[1])
		if len(data) < dim {
			return nil, errors.New("model output shorter than its shape")
		}
		vec := make([]float32, dim)
		copy(vec, data[:dim])
		return normalize(vec), nil
	case 3:
		seq, dim := int(shape[1]), int(shape[2])
		if len(data) < seq*dim {
			return nil, errors.New("model output shorter than its shape")
		}
		vec := make([]float32, dim)
		var count float32
		for t := 0; t < seq && t < len(mask); t++ {
			if mask[t] == 0 {
				continue
			}
			row := data[t*dim : (t+1)*dim]
			for i, v := range row {
				vec[i] += v
			}
			count++
		}
		if count == 0 {
			return nil, errors.New("attention mask is empty")
		}
		for i := range vec {
			vec[i] /= count
		}
		return normalize(vec), nil
	default:
		return nil, fmt.Errorf("unsupported output rank %d", len(shape))
	}
}

// truncate keeps the leading tokens and the trailing special token.
func truncate(ids, mask, types []int, max int) ([]int, []int, []int) {
	if len(mask) != len(ids) {
		mask = make([]int, len(ids))
		for i := range mask {
			mask[i] = 1
		}
	}
	if len(types) != len(ids) {
		types = make([]int, len(ids))
	}
	if len(ids) <= max {
		return ids, mask, types
	}
	last := len(ids) - 1
	cut := func(src []int) []int {
		out := make([]int, max)
		copy(out, src[:max-1])
		out[max-1] = src[last]
		return out
	}
	return cut(ids), cut(mask), cut(types)
}

func toInt64(src []int) []int64 {
	out := make([]int64, len(src))
	for i, v := range src {
		out[i] = int64(v)
	}
	return out
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	n := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}
