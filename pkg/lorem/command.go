package lorem

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is the kind of text a command asks for.
type Unit int

const (
	Words Unit = iota + 1
	Sentences
	Paragraphs
)

func (u Unit) String() string {
	switch u {
	case Words:
		return "words"
	case Sentences:
		return "sentences"
	case Paragraphs:
		return "paragraphs"
	default:
		return "unknown"
	}
}

// Command is a parsed lorem command such as "5 words" or "[3p]".
type Command struct {
	Count int
	Unit  Unit
	// List asks for a slice of Count items instead of one joined string.
	List bool
}

var commandPattern = regexp.MustCompile(`^\[?\s*(\d{1,3})\s*([a-z]{1,10})\s*\]?$`)

var unitNames = map[string]Unit{
	"w":          Words,
	"word":       Words,
	"words":      Words,
	"s":          Sentences,
	"sentence":   Sentences,
	"sentences":  Sentences,
	"p":          Paragraphs,
	"paragraph":  Paragraphs,
	"paragraphs": Paragraphs,
}

// ParseCommand parses "<count> <unit>" or "[<count> <unit>]". Matching is
// case-insensitive and spaces are optional, so "5w", "5 W" and "[5 words]"
// are all valid. ok is false for anything else, including unknown units.
func ParseCommand(s string) (cmd Command, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	m := commandPattern.FindStringSubmatch(s)
	if m == nil {
		return Command{}, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return Command{}, false
	}
	unit, ok := unitNames[m[2]]
	if !ok {
		return Command{}, false
	}
	return Command{Count: count, Unit: unit, List: strings.HasPrefix(s, "[")}, true
}

func (c Command) String() string {
	s := strconv.Itoa(c.Count) + " " + c.Unit.String()
	if c.List {
		return "[" + s + "]"
	}
	return s
}
