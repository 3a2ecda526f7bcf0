package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/asha/ai"
)

// poolingFile is the sentence-transformers pooling descriptor, relative to
// the model directory.
var poolingFile = filepath.Join("1_Pooling", "config.json")

// clsModels are model families trained with CLS pooling, used when the
// model directory carries no pooling descriptor.
var clsModels = []string{"mixedbread-ai/", "BAAI/bge-"}

type poolingConfig struct {
	CLSToken   bool `json:"pooling_mode_cls_token"`
	MeanTokens bool `json:"pooling_mode_mean_tokens"`
}

// resolvePooling picks the pooling mode for a model. An explicit mode wins;
// otherwise the model's pooling descriptor decides, then its name.
func resolvePooling(mode, dir, name string) (string, error) {
	if mode != ai.PoolingAuto {
		return mode, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, poolingFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		for _, prefix := range clsModels {
			if strings.HasPrefix(name, prefix) {
				return ai.PoolingCLS, nil
			}
		}
		return ai.PoolingMean, nil
	case err != nil:
		return "", fmt.Errorf("pooling config: %w", err)
	}

	var pc poolingConfig
	if err := json.Unmarshal(data, &pc); err != nil {
		return "", fmt.Errorf("pooling config: %w", err)
	}
	switch {
	case pc.CLSToken:
		return ai.PoolingCLS, nil
	case pc.MeanTokens:
		return ai.PoolingMean, nil
	}
	return "", fmt.Errorf("pooling config: no supported mode in %s", poolingFile)
}

// pool dispatches to the pooling function for mode.
func pool(mode string, hidden []float32, mask []int64, rows, cols, dim int64) [][]float32 {
	if mode == ai.PoolingCLS {
		return clsPool(hidden, rows, cols, dim)
	}
	return meanPool(hidden, mask, rows, cols, dim)
}

// clsPool takes the hidden state of the first token of every row.
func clsPool(hidden []float32, rows, cols, dim int64) [][]float32 {
	pooled := make([][]float32, rows)
	for r := range rows {
		start := r * cols * dim
		pooled[r] = append([]float32(nil), hidden[start:start+dim]...)
	}
	return pooled
}

// meanPool averages the hidden states of unmasked tokens per row.
// hidden is [rows*cols*dim], mask is [rows*cols]; the result is [rows][dim].
// A row with no unmasked tokens pools to zeros.
func meanPool(hidden []float32, mask []int64, rows, cols, dim int64) [][]float32 {
	pooled := make([][]float32, rows)
	for r := range rows {
		vec := make([]float32, dim)
		var n float32
		for c := range cols {
			if mask[r*cols+c] == 0 {
				continue
			}
			n++
			token := hidden[(r*cols+c)*dim : (r*cols+c+1)*dim]
			for d, h := range token {
				vec[d] += h
			}
		}
		if n > 0 {
			for d := range vec {
				vec[d] /= n
			}
		}
		pooled[r] = vec
	}
	return pooled
}

// normalize scales vec to unit length in place. Zero vectors are left unchanged.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
