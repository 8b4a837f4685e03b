package docstring

import (
	"regexp"
	"strings"
)

var (
	// ParamRegex matches ":param name: desc" and ":param name (type): desc".
	paramRegex = regexp.MustCompile(`^:param ([\p{L}\p{N}_]+)(?: \((.+)\))?: (.+)`)

	// TypeRegex matches ":type name: type".
	typeRegex = regexp.MustCompile(`^:type ([\p{L}\p{N}_]+): (.+)`)

	rtypeRegex  = regexp.MustCompile(`^:rtype: (.+)`)
	returnRegex = regexp.MustCompile(`^:return: (.+)`)
	noteRegex   = regexp.MustCompile(`^:note: (.+)`)
)

// Record is the structured content of one docstring.
//
// The zero value is an empty record: no description, parameters, return
// information or notes.
type Record struct {
	// Return is the return value description, nil when absent.
	Return *string `json:"return,omitempty" yaml:"return,omitempty"`
	// ReturnType is the return value type, nil when absent.
	ReturnType *string `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	// Description is the free text preceding the first tag.
	Description string `json:"description" yaml:"description"`
	// Params are ordered by first mention and unique by name.
	Params []Param `json:"params,omitempty" yaml:"params,omitempty"`
	// Notes holds one entry per :note: tag, in source order.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Param describes one function parameter.
type Param struct {
	// Type is nil when no type was given.
	Type        *string `json:"type,omitempty" yaml:"type,omitempty"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
}

// Param returns the parameter with the given name, or nil.
func (r *Record) Param(name string) *Param {
	for i := range r.Params {
		if r.Params[i].Name == name {
			return &r.Params[i]
		}
	}

	return nil
}

// IsZero reports whether r carries no information.
func (r *Record) IsZero() bool {
	return r.Description == "" &&
		len(r.Params) == 0 &&
		r.Return == nil &&
		r.ReturnType == nil &&
		len(r.Notes) == 0
}

// section identifies where continuation lines go.
type section int

const (
	sectionDescription section = iota
	sectionParams
	sectionReturn
	sectionReturnType
	sectionNotes
)

// parseState is the accumulator threaded through line processing.
type parseState struct {
	rec     Record
	section section
}

// tag pairs a line pattern with the handler applied to its submatches.
type tag struct {
	re     *regexp.Regexp
	handle func(s *parseState, m []string)
}

// tags lists the recognized tags in priority order. The :param and :type
// syntaxes can overlap on malformed input, so the order is significant.
var tags = []tag{
	{re: paramRegex, handle: (*parseState).declareParam},
	{re: typeRegex, handle: (*parseState).typeParam},
	{re: rtypeRegex, handle: (*parseState).setReturnType},
	{re: returnRegex, handle: (*parseState).setReturn},
	{re: noteRegex, handle: (*parseState).addNote},
}

// Parse converts a raw docstring into a [Record]. It never fails: input
// without recognized tags yields a record holding only a description, and
// empty input yields the zero value.
func Parse(raw string) Record {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Record{}
	}

	s := &parseState{section: sectionDescription}

	for line := range strings.SplitSeq(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !s.dispatch(line) {
			s.continueSection(line)
		}
	}

	return s.rec
}

// dispatch applies the first tag matching line and reports whether one did.
func (s *parseState) dispatch(line string) bool {
	for _, t := range tags {
		m := t.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		t.handle(s, m)

		return true
	}

	return false
}

func (s *parseState) declareParam(m []string) {
	name, inlineType, desc := m[1], m[2], m[3]

	p := s.rec.Param(name)
	if p == nil {
		s.rec.Params = append(s.rec.Params, Param{Name: name})
		p = &s.rec.Params[len(s.rec.Params)-1]
	}

	p.Description = desc
	if inlineType != "" {
		p.Type = &inlineType
	}

	s.section = sectionParams
}

func (s *parseState) typeParam(m []string) {
	name, typ := m[1], m[2]

	p := s.rec.Param(name)
	if p == nil {
		s.rec.Params = append(s.rec.Params, Param{Name: name})
		p = &s.rec.Params[len(s.rec.Params)-1]
	}

	p.Type = &typ

	s.section = sectionParams
}

func (s *parseState) setReturnType(m []string) {
	typ := m[1]
	s.rec.ReturnType = &typ

	s.section = sectionReturnType
}

func (s *parseState) setReturn(m []string) {
	desc := m[1]
	s.rec.Return = &desc

	s.section = sectionReturn
}

func (s *parseState) addNote(m []string) {
	s.rec.Notes = append(s.rec.Notes, m[1])

	s.section = sectionNotes
}

// continueSection appends an untagged line to the current section's target.
func (s *parseState) continueSection(line string) {
	switch s.section {
	case sectionDescription:
		s.rec.Description = join(s.rec.Description, line)

	case sectionParams:
		if len(s.rec.Params) == 0 {
			return
		}

		p := &s.rec.Params[len(s.rec.Params)-1]
		p.Description = join(p.Description, line)

	case sectionReturn:
		if s.rec.Return == nil {
			return
		}

		joined := join(*s.rec.Return, line)
		s.rec.Return = &joined

	case sectionNotes:
		if len(s.rec.Notes) == 0 {
			return
		}

		last := len(s.rec.Notes) - 1
		s.rec.Notes[last] = join(s.rec.Notes[last], line)

	case sectionReturnType:
		// Single-valued; continuation has no target.
	}
}

// join appends line to text with a single separating space.
func join(text, line string) string {
	if text == "" {
		return line
	}

	return text + " " + line
}
