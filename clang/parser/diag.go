package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
)

// -----------------------------------------------------------------------------

type Severity string

const (
	SevNote    Severity = "note"
	SevWarning Severity = "warning"
	SevError   Severity = "error"
	SevFatal   Severity = "fatal error"
)

// Diagnostic is one clang message, e.g.
//
//	probe.c:12:39: error: use of undeclared identifier 'RLIMIT_FOO'
type Diagnostic struct {
	File     string
	Line     int
	Col      int
	Severity Severity
	Msg      string
}

func (p *Diagnostic) IsError() bool {
	return p.Severity == SevError || p.Severity == SevFatal
}

func (p *Diagnostic) String() string {
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col) + ": " + string(p.Severity) + ": " + p.Msg
}

var diagRe = regexp.MustCompile(`^(.+?):(\d+):(\d+): (note|warning|error|fatal error): (.*)$`)

// ParseDiagnostics extracts the located messages from clang's stderr.
// Source excerpts, carets and "N errors generated." lines are skipped.
func ParseDiagnostics(stderr []byte) (diags []*Diagnostic) {
	s := bufio.NewScanner(bytes.NewReader(stderr))
	for s.Scan() {
		m := diagRe.FindStringSubmatch(s.Text())
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		diags = append(diags, &Diagnostic{
			File: m[1], Line: line, Col: col, Severity: Severity(m[4]), Msg: m[5],
		})
	}
	return
}

// -----------------------------------------------------------------------------
