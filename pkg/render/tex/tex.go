// Package tex converts the TeX-style labels of DBN diagrams into display text.
//
// Labels produced by expansion look like X_{\tau+1} or \Sigma_{t}. Renderers
// cannot typeset TeX, so this package splits a label into a base, a
// subscript and a superscript, and replaces common macros (greek letters and
// a few symbols) with their Unicode characters.
//
//	l := tex.Parse(`\Sigma_{\tau-1}`)
//	l.Base // "Σ"
//	l.Sub  // "τ-1"
package tex

import (
	"strings"
	"unicode"
)

// Label is a label split into its parts. All parts are Unicode text with
// macros and grouping braces removed.
type Label struct {
	Base string
	Sub  string
	Sup  string
}

// String renders the label on a single line, e.g. "X_τ+1".
func (l Label) String() string {
	var b strings.Builder
	b.WriteString(l.Base)
	if l.Sub != "" {
		b.WriteString("_" + l.Sub)
	}
	if l.Sup != "" {
		b.WriteString("^" + l.Sup)
	}
	return b.String()
}

// Parse splits s at its first top-level subscript and superscript markers.
// Subscripts and superscripts are either a braced group or a single token.
func Parse(s string) Label {
	var l Label
	var base strings.Builder

	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\\':
			tok := macroToken(s, i)
			base.WriteString(s[i : i+len(tok)])
			i += len(tok)
		case '{':
			end := closingBrace(s, i)
			base.WriteString(s[i:end])
			i = end
		case '_', '^':
			arg, next := script(s, i+1)
			if c == '_' && l.Sub == "" {
				l.Sub = Unicode(arg)
			} else if c == '^' && l.Sup == "" {
				l.Sup = Unicode(arg)
			} else {
				base.WriteString(s[i:next])
			}
			i = next
		default:
			base.WriteByte(c)
			i++
		}
	}

	l.Base = Unicode(base.String())
	return l
}

// script returns the argument starting at s[i] and the index after it.
func script(s string, i int) (string, int) {
	if i >= len(s) {
		return "", i
	}
	switch s[i] {
	case '{':
		end := closingBrace(s, i)
		inner := s[i+1 : end]
		if end > i+1 && s[end-1] == '}' {
			inner = s[i+1 : end-1]
		}
		return inner, end
	case '\\':
		tok := macroToken(s, i)
		return tok, i + len(tok)
	default:
		_, size := firstRune(s[i:])
		return s[i : i+size], i + size
	}
}

// closingBrace returns the index just past the brace group opened at s[i].
// An unbalanced group extends to the end of s.
func closingBrace(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

// macroToken returns the macro starting with the backslash at s[i]: either a
// run of letters or a single non-letter character.
func macroToken(s string, i int) string {
	j := i + 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	if j == i+1 && j < len(s) {
		_, size := firstRune(s[j:])
		j += size
	}
	return s[i:j]
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

// Unicode replaces known macros with their characters and drops grouping
// braces. Font macros such as \mathbf keep only their argument; unknown
// macros keep their name without the backslash.
func Unicode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\\':
			tok := macroToken(s, i)
			i += len(tok)
			name := tok[1:]
			if r, ok := symbols[name]; ok {
				b.WriteString(r)
			} else if fontMacros[name] {
				continue
			} else if name == "," || name == ";" || name == " " {
				b.WriteByte(' ')
			} else {
				b.WriteString(name)
			}
			// A control word swallows the space that terminates it.
			if len(name) > 0 && unicode.IsLetter(rune(name[0])) && i < len(s) && s[i] == ' ' {
				i++
			}
		case '{', '}':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

var fontMacros = map[string]bool{
	"mathbf": true, "mathrm": true, "mathit": true, "mathcal": true,
	"mathsf": true, "boldsymbol": true, "bm": true, "text": true,
}

var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ϵ",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "varpi": "ϖ", "rho": "ρ", "varrho": "ϱ", "sigma": "σ",
	"varsigma": "ς", "tau": "τ", "upsilon": "υ", "phi": "ϕ", "varphi": "φ",
	"chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
	"infty": "∞", "cdot": "·", "cdots": "⋯", "ldots": "…", "dots": "…",
	"prime": "′", "pm": "±", "times": "×",
}
