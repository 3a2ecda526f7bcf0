package local

import (
	"bufio"
	"fmt"
	"os"
)

// Special WordPiece tokens every BERT vocabulary carries.
const (
	tokenPad = "[PAD]"
	tokenUnk = "[UNK]"
	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"
)

// vocabulary maps WordPiece tokens to ids. The id of a token is its
// zero-based line number in vocab.txt.
type vocabulary struct {
	ids map[string]int64

	pad int64
	unk int64
	cls int64
	sep int64
}

func readVocabulary(path string) (*vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	ids := make(map[string]int64, 32000)
	scanner := bufio.NewScanner(f)
	for next := int64(0); scanner.Scan(); next++ {
		ids[scanner.Text()] = next
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read %s: %w", path, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("vocab: %s is empty", path)
	}

	v := &vocabulary{ids: ids}
	for name, dest := range map[string]*int64{
		tokenPad: &v.pad,
		tokenUnk: &v.unk,
		tokenCLS: &v.cls,
		tokenSEP: &v.sep,
	} {
		id, ok := ids[name]
		if !ok {
			return nil, fmt.Errorf("vocab: %s lacks special token %s", path, name)
		}
		*dest = id
	}
	return v, nil
}

// id returns the id of token, or the [UNK] id.
func (v *vocabulary) id(token string) int64 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return v.unk
}

func (v *vocabulary) has(token string) bool {
	_, ok := v.ids[token]
	return ok
}
