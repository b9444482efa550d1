// Package narrative turns a pair of asset snapshots into a persona prompt and
// asks a Generator for the market update text.
package narrative

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

const promptTemplate = `Act as Crypto Joe: a no-nonsense macro and crypto market analyst blending historical cycle insight, macro focus and data-driven analysis with a pragmatic style.
Be sharp, concise, realistic and slightly witty. Avoid hype. Connect macro, on-chain and price action.
Give a short English market update with:
{{- range .Assets}}
- Current {{.Name}} price (~${{.Price}})
- Today's % change for {{.Name}} ({{.Change}})
- RSI for {{.Name}} ({{.RSI}})
{{- end}}
- Macro context (Fed, CPI, ETF flows, etc)
- Technical trend and what to watch next for both coins
End with a signature Crypto Joe one-liner.
`

var prompt = template.Must(template.New("prompt").Parse(promptTemplate))

// Settings controls the generation request built for every run.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float32
	// Decimals is the price precision per asset, primary first.
	Decimals [2]int
}

type Composer struct {
	gen      interfaces.Generator
	settings Settings
	now      func() time.Time
}

func New(gen interfaces.Generator, settings Settings) *Composer {
	return &Composer{gen: gen, settings: settings, now: time.Now}
}

type assetView struct {
	Name   string
	Price  string
	Change string
	RSI    string
}

// FormatPrice renders a price with thousands separators and the given number
// of decimals.
func FormatPrice(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return humanize.FormatFloat("#,###."+strings.Repeat("#", decimals), v)
}

func view(s types.AssetSnapshot, decimals int) assetView {
	name := s.Name
	if name == "" {
		name = s.AssetID
	}
	return assetView{
		Name:   name,
		Price:  FormatPrice(s.LatestPrice.InexactFloat64(), decimals),
		Change: s.DayChangePct.Format("%+.2f%%", "unavailable"),
		RSI:    s.LatestRSI.Format("%.0f", "unavailable"),
	}
}

// Render fills the persona template for both snapshots.
func (c *Composer) Render(snapshots [2]types.AssetSnapshot) (types.GenerationRequest, error) {
	data := struct{ Assets []assetView }{
		Assets: []assetView{
			view(snapshots[0], c.settings.Decimals[0]),
			view(snapshots[1], c.settings.Decimals[1]),
		},
	}
	var buf bytes.Buffer
	if err := prompt.Execute(&buf, data); err != nil {
		return types.GenerationRequest{}, fmt.Errorf("render prompt: %w", err)
	}
	return types.GenerationRequest{
		Prompt:      buf.String(),
		Model:       c.settings.Model,
		MaxTokens:   c.settings.MaxTokens,
		Temperature: c.settings.Temperature,
	}, nil
}

// Compose returns cache unchanged when it is set. Otherwise it renders the
// prompt and calls the generator exactly once.
func (c *Composer) Compose(ctx context.Context, snapshots [2]types.AssetSnapshot, cache *types.GenerationResult) (*types.GenerationResult, error) {
	if cache != nil {
		logger.Debug(ctx, "Narrative cache hit", "model", cache.Model)
		return cache, nil
	}

	req, err := c.Render(snapshots)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrGeneration, err)
	}

	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		if !errors.Is(err, types.ErrGeneration) {
			err = fmt.Errorf("%w: %w", types.ErrGeneration, err)
		}
		return nil, err
	}

	return &types.GenerationResult{
		Text:        text,
		Model:       req.Model,
		GeneratedAt: c.now().UTC(),
	}, nil
}
