package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/t3codec/internal/protocol"
	"github.com/danmuck/t3codec/internal/protocol/raw"
)

const (
	formatSymbols = "symbols"
	formatBase243 = "base243"
)

// readStream loads words from path, or stdin when path is "-" or empty.
func readStream(path, format string, maxWords int) ([]protocol.Word27, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	switch strings.ToLower(format) {
	case "", formatSymbols:
		return raw.ReadWords(r, maxWords)
	case formatBase243:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		trits, err := raw.UnpackBase243(b)
		if err != nil {
			return nil, err
		}
		if len(trits)%protocol.TritsPerWord != 0 {
			return nil, fmt.Errorf("%w: %d trits is not whole words", raw.ErrBase243, len(trits))
		}
		if maxWords > 0 && len(trits)/protocol.TritsPerWord > maxWords {
			return nil, fmt.Errorf("%w: limit %d", raw.ErrStreamLarge, maxWords)
		}
		words := make([]protocol.Word27, 0, len(trits)/protocol.TritsPerWord)
		for i := 0; i < len(trits); i += protocol.TritsPerWord {
			var t [protocol.TritsPerWord]protocol.Trit
			copy(t[:], trits[i:])
			words = append(words, protocol.WordFromTrits(t))
		}
		return words, nil
	default:
		return nil, fmt.Errorf("unknown stream format %q", format)
	}
}

// writeStream stores words at path, or stdout when path is "-" or empty.
func writeStream(path, format string, words []protocol.Word27) (err error) {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, oerr := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if oerr != nil {
			return oerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch strings.ToLower(format) {
	case "", formatSymbols:
		return raw.WriteWords(w, words)
	case formatBase243:
		trits := make([]protocol.Trit, 0, len(words)*protocol.TritsPerWord)
		for _, word := range words {
			t := word.Trits()
			trits = append(trits, t[:]...)
		}
		_, err = w.Write(raw.PackBase243(trits))
		return err
	default:
		return fmt.Errorf("unknown stream format %q", format)
	}
}
