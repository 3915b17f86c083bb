package advisor

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
)

//go:embed prompts/vc_advice.txt
var vcAdvicePrompt string

const (
	OfflineMissingKey = "AI advisor offline: API key missing."
	OfflineTransport  = "Connection trouble. I'll get back to you later."
	OfflineEmpty      = "So, how's progress?"
)

var promptTmpl = template.Must(template.New("vc_advice").Funcs(template.FuncMap{
	"yen": game.FormatYen,
	"pct": func(v float64) string { return fmt.Sprintf("%.1f", v*100) },
}).Parse(vcAdvicePrompt))

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

type Persona struct {
	Name  string `json:"name"`
	Focus string `json:"focus"`
}

type Advice struct {
	Persona string `json:"persona"`
	Text    string `json:"text"`
	Offline bool   `json:"offline"`
}

type Advisor struct {
	gen     Generator
	log     *slog.Logger
	timeout time.Duration
}

// New builds an advisor. Without an API key it answers with the offline line.
func New(ctx context.Context, cfg config.AdvisorConfig, logger *slog.Logger) (*Advisor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Advisor{log: logger, timeout: cfg.Timeout}
	if cfg.GeminiAPIKey == "" {
		return a, nil
	}
	gen, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	a.gen = gen
	return a, nil
}

// WithGenerator builds an advisor over an arbitrary generator.
func WithGenerator(gen Generator, logger *slog.Logger, timeout time.Duration) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{gen: gen, log: logger, timeout: timeout}
}

func (a *Advisor) Close() error {
	if a.gen == nil {
		return nil
	}
	return a.gen.Close()
}

func PersonaFor(t game.InvestorType) Persona {
	switch t {
	case game.InvestorBlitz:
		return Persona{
			Name:  "a hyper-aggressive growth investor who only cares about growth rate",
			Focus: "month-over-month growth only. Ignore the losses and tell them to burn harder",
		}
	case game.InvestorProduct:
		return Persona{
			Name:  "a former Silicon Valley engineer turned investor who distrusts salespeople",
			Focus: "product quality and tech debt. Tell them to write code instead of hiring sales",
		}
	case game.InvestorFamily:
		return Persona{
			Name:  "a kind loan officer from the local credit union",
			Focus: "keeping people employed and running a sane business. Prefer stability over hypergrowth",
		}
	default:
		return Persona{
			Name:  "a cynical venture capitalist who likes to apply pressure",
			Focus: "burn rate and runway",
		}
	}
}

// nudges are extra instructions the persona reacts to.
func nudges(s game.GameState) []string {
	var out []string
	switch s.InvestorType {
	case game.InvestorBlitz:
		if s.KPI.GrowthRateMoM < 0.2 {
			out = append(out, "Growth is slowing! Be furious about it.")
		}
	case game.InvestorProduct:
		if s.Employees.Has(game.RoleSales) {
			out = append(out, "They hired salespeople. Scold them for it.")
		}
	case game.InvestorFamily:
		if s.Cash < 3_000_000 {
			out = append(out, "Ask worriedly whether they can still make payroll.")
		}
	}
	return out
}

func BuildPrompt(s game.GameState) (string, error) {
	p := PersonaFor(s.InvestorType)
	data := struct {
		Persona   string
		Focus     string
		State     game.GameState
		Burn      float64
		Headcount int
		Nudges    []string
	}{
		Persona:   p.Name,
		Focus:     p.Focus,
		State:     s,
		Burn:      game.MonthlyBurn(s),
		Headcount: s.Employees.Len(),
		Nudges:    nudges(s),
	}
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render advice prompt: %w", err)
	}
	return buf.String(), nil
}

// Advise never fails: transport problems degrade to an in-character offline line.
func (a *Advisor) Advise(ctx context.Context, s game.GameState) Advice {
	persona := PersonaFor(s.InvestorType).Name
	if a.gen == nil {
		return Advice{Persona: persona, Text: OfflineMissingKey, Offline: true}
	}
	prompt, err := BuildPrompt(s)
	if err != nil {
		a.log.Error("advisor prompt", "err", err)
		return Advice{Persona: persona, Text: OfflineTransport, Offline: true}
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Warn("advisor request failed", "err", err, "week", s.Week)
		return Advice{Persona: persona, Text: OfflineTransport, Offline: true}
	}
	if text = strings.TrimSpace(text); text == "" {
		text = OfflineEmpty
	}
	return Advice{Persona: persona, Text: text}
}
