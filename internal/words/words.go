package words

import (
	"bufio"
	_ "embed"
	"math/rand"
	"strings"
)

//go:embed words.txt
var rawWords string

// Source hands out candidate words for a selection phase.
type Source interface {
	Pick(n int) []string
}

// Bank is the static in-process word collection, one word per line.
type Bank struct {
	words []string
}

func NewBank() *Bank {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(rawWords))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	return &Bank{words: words}
}

func (b *Bank) Len() int {
	return len(b.words)
}

// Pick returns n distinct words in random order. If the bank holds
// fewer than n words it returns all of them.
func (b *Bank) Pick(n int) []string {
	if n > len(b.words) {
		n = len(b.words)
	}
	picked := make([]string, 0, n)
	for _, i := range rand.Perm(len(b.words))[:n] {
		picked = append(picked, b.words[i])
	}
	return picked
}
