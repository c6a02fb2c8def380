package lorem

import (
	"bufio"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
)

var latinWords = strings.Fields(`
a ac accumsan ad adipiscing aenean aliquam aliquet amet ante aptent arcu at
auctor augue bibendum blandit class commodo condimentum congue consectetur
consequat conubia convallis cras cubilia curabitur curae cursus dapibus diam
dictum dictumst dignissim dis dolor donec dui duis efficitur egestas eget
eleifend elementum elit enim erat eros est et etiam eu euismod ex facilisi
facilisis fames faucibus felis fermentum feugiat finibus fringilla fusce
gravida habitant habitasse hac hendrerit himenaeos iaculis id imperdiet in
inceptos integer interdum ipsum justo lacinia lacus laoreet lectus leo libero
ligula litora lobortis lorem luctus maecenas magna magnis malesuada massa
mattis mauris maximus metus mi molestie mollis montes morbi mus nam nascetur
natoque nec neque netus nibh nisi nisl non nostra nulla nullam nunc odio orci
ornare parturient pellentesque penatibus per pharetra phasellus placerat
platea porta porttitor posuere potenti praesent pretium primis proin pulvinar
purus quam quis quisque rhoncus ridiculus risus rutrum sagittis sapien
scelerisque sed sem semper senectus sit sociosqu sodales sollicitudin
suscipit suspendisse taciti tellus tempor tempus tincidunt torquent tortor
tristique turpis ullamcorper ultrices ultricies urna ut varius vehicula vel
velit venenatis vestibulum vitae vivamus viverra volutpat vulputate
`)

// WordSource draws random words from a fixed list.
type WordSource struct {
	words []string
}

// Latin returns a WordSource over the built-in lorem ipsum vocabulary.
func Latin() *WordSource {
	return &WordSource{words: latinWords}
}

// NewWordSource returns a WordSource over words. It panics on an empty list.
func NewWordSource(words []string) *WordSource {
	if len(words) == 0 {
		panic("lorem: empty word list")
	}
	return &WordSource{words: words}
}

// ReadWordList reads one word per line from r, skipping blank lines.
func ReadWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("word list is empty")
	}
	return words, nil
}

// Words returns n random words.
func (s *WordSource) Words(n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = s.words[rand.IntN(len(s.words))]
	}
	return out
}

// Sentence returns a sentence of 4 to 16 random words.
func (s *WordSource) Sentence() string {
	return buildSentence(s.Words(sentenceLength()))
}
