package local

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// maxSequence bounds a tokenized text including [CLS] and [SEP].
	maxSequence = 512

	// maxWordRunes is the longest word WordPiece attempts to split.
	maxWordRunes = 200
)

// batch is a set of tokenized texts packed into flat row-major slices of
// size rows*cols, padded to the longest text.
type batch struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	rows          int64
	cols          int64
}

// wordPiece is a BERT-style uncased WordPiece tokenizer.
type wordPiece struct {
	vocab *vocabulary
}

func newWordPiece(vocabPath string) (*wordPiece, error) {
	v, err := readVocabulary(vocabPath)
	if err != nil {
		return nil, err
	}
	return &wordPiece{vocab: v}, nil
}

// encode returns [CLS] ids... [SEP] for text, truncated to maxSequence.
func (w *wordPiece) encode(text string) []int64 {
	ids := make([]int64, 0, 32)
	ids = append(ids, w.vocab.cls)
	for _, word := range preTokenize(text) {
		for _, piece := range w.split(word) {
			if len(ids) == maxSequence-1 {
				return append(ids, w.vocab.sep)
			}
			ids = append(ids, w.vocab.id(piece))
		}
	}
	return append(ids, w.vocab.sep)
}

// encodeBatch tokenizes texts and pads each row to the longest one.
func (w *wordPiece) encodeBatch(texts []string) batch {
	if len(texts) == 0 {
		return batch{}
	}

	encoded := make([][]int64, len(texts))
	cols := 0
	for i, text := range texts {
		encoded[i] = w.encode(text)
		cols = max(cols, len(encoded[i]))
	}

	b := batch{
		inputIDs:      make([]int64, len(texts)*cols),
		attentionMask: make([]int64, len(texts)*cols),
		tokenTypeIDs:  make([]int64, len(texts)*cols),
		rows:          int64(len(texts)),
		cols:          int64(cols),
	}
	for i, ids := range encoded {
		row := i * cols
		for j := range cols {
			if j < len(ids) {
				b.inputIDs[row+j] = ids[j]
				b.attentionMask[row+j] = 1
			} else {
				b.inputIDs[row+j] = w.vocab.pad
			}
		}
	}
	return b
}

// split breaks one pre-token into the longest matching vocabulary pieces.
// A word with any unmatched remainder becomes a single [UNK].
func (w *wordPiece) split(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []string{tokenUnk}
	}

	var pieces []string
	for start := 0; start < len(runes); {
		end := len(runes)
		var piece string
		for ; end > start; end-- {
			candidate := string(runes[start:end])
			if start > 0 {
				candidate = "##" + candidate
			}
			if w.vocab.has(candidate) {
				piece = candidate
				break
			}
		}
		if piece == "" {
			return []string{tokenUnk}
		}
		pieces = append(pieces, piece)
		start = end
	}
	return pieces
}

// preTokenize lower-cases text, strips accents and splits it on whitespace
// and punctuation. CJK ideographs become tokens of their own.
func preTokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar:
		case isSpace(r):
			b.WriteByte(' ')
		case unicode.IsControl(r):
		case isIdeograph(r) || isPunct(r):
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	lowered := strings.ToLower(b.String())
	stripped := make([]rune, 0, len(lowered))
	for _, r := range norm.NFD.String(lowered) {
		if !unicode.Is(unicode.Mn, r) {
			stripped = append(stripped, r)
		}
	}
	return strings.Fields(string(stripped))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

// isPunct treats all non-alphanumeric ASCII as punctuation, as BERT does.
func isPunct(r rune) bool {
	if (r >= '!' && r <= '/') || (r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') || (r >= '{' && r <= '~') {
		return true
	}
	return unicode.IsPunct(r)
}

func isIdeograph(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
