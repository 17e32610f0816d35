package tex

import "strings"

// Characters that must be escaped in running text.
var textOnly = []string{
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
	"‐", `-`,
	"‑", `-`,
	"–", `--`,
	"—", `---`,
	"…", `\ldots{}`,
	"‘", "`",
	"’", `'`,
	"“", "``",
	"”", `''`,
	"\u00a0", `~`,
	"©", `\textcopyright{}`,
	"®", `\textregistered{}`,
	"™", `\texttrademark{}`,
	"°", `\textdegree{}`,
	"§", `\S{}`,
	"¶", `\P{}`,
}

// Unicode symbols with a math-mode command.
var mathSymbols = []string{
	"α", `\alpha`,
	"β", `\beta`,
	"γ", `\gamma`,
	"δ", `\delta`,
	"ε", `\epsilon`,
	"θ", `\theta`,
	"λ", `\lambda`,
	"μ", `\mu`,
	"π", `\pi`,
	"σ", `\sigma`,
	"τ", `\tau`,
	"φ", `\phi`,
	"ω", `\omega`,
	"Δ", `\Delta`,
	"Σ", `\Sigma`,
	"Ω", `\Omega`,
	"±", `\pm`,
	"×", `\times`,
	"÷", `\div`,
	"≤", `\leq`,
	"≥", `\geq`,
	"≠", `\neq`,
	"≈", `\approx`,
	"∞", `\infty`,
	"→", `\rightarrow`,
	"←", `\leftarrow`,
	"↔", `\leftrightarrow`,
	"∑", `\sum`,
	"∏", `\prod`,
	"∂", `\partial`,
	"∈", `\in`,
	"∀", `\forall`,
	"∃", `\exists`,
}

var (
	textReplacer = strings.NewReplacer(append(append([]string{}, textOnly...), wrapMath(mathSymbols)...)...)
	mathReplacer = strings.NewReplacer(braceMath(mathSymbols)...)
	urlReplacer  = strings.NewReplacer(`%`, `\%`, `#`, `\#`)
)

// wrapMath puts each math command in $...$ for use in running text.
func wrapMath(pairs []string) []string {
	out := make([]string, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		out[i] = pairs[i]
		out[i+1] = `$` + pairs[i+1] + `$`
	}
	return out
}

// braceMath groups each command so a following letter cannot extend its name.
func braceMath(pairs []string) []string {
	out := make([]string, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		out[i] = pairs[i]
		out[i+1] = `{` + pairs[i+1] + `}`
	}
	return out
}
