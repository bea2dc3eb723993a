package preprocessor

import (
	"bufio"
	"bytes"
	"strings"
)

// -----------------------------------------------------------------------------

type Macro struct {
	Name     string
	Params   []string // nil for object-like macros
	FuncLike bool
	Body     string
}

// Alias returns the identifier an object-like macro expands to, e.g.
// "__xpg_basename" for `#define basename __xpg_basename`.
func (p *Macro) Alias() (name string, ok bool) {
	if p.FuncLike || !isIdent(p.Body) {
		return
	}
	return p.Body, true
}

type Table map[string]*Macro

// Resolve follows single-identifier macros starting at name and returns
// the identifier the chain ends at. Self-referencing macros such as
// `#define RLIMIT_CORE RLIMIT_CORE` stop at themselves.
func (t Table) Resolve(name string) string {
	for i := 0; i < 16; i++ {
		m, ok := t[name]
		if !ok {
			break
		}
		to, ok := m.Alias()
		if !ok || to == name {
			break
		}
		name = to
	}
	return name
}

// ParseMacros reads the output of `cc -dM -E`.
func ParseMacros(data []byte) Table {
	t := make(Table)
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(nil, 1<<20)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		rest, ok := strings.CutPrefix(line, "#define ")
		if !ok {
			continue
		}
		m := parseDefine(rest)
		if m != nil {
			t[m.Name] = m
		}
	}
	return t
}

func parseDefine(s string) *Macro {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 {
		return nil
	}
	m := &Macro{Name: s[:i]}
	rest := s[i:]
	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil
		}
		m.FuncLike = true
		m.Params = []string{}
		for _, p := range strings.Split(rest[1:end], ",") {
			if p = strings.TrimSpace(p); p != "" {
				m.Params = append(m.Params, p)
			}
		}
		rest = rest[end+1:]
	}
	m.Body = strings.TrimSpace(rest)
	return m
}

func isIdentChar(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isIdent(s string) bool {
	if s == "" || '0' <= s[0] && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
