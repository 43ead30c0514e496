package menu

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/grazbites/scraper/internal/cost"
	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/pkg/anthropic"
)

// ExtractionPrompt instructs the model to return menu items as JSON.
const ExtractionPrompt = `Extract ALL menu items from this restaurant menu.

Return a JSON array of objects with these fields:
- "name": dish/drink name (string, required)
- "price": price as shown on menu e.g. "€12,90" (string, optional)
- "category": one of: Starter, Main, Dessert, Drink, Pizza, Pasta, Sushi, Soup, Salad, Burger, Other (string)

Rules:
- Extract EVERY item visible on the menu
- Keep original dish names (preserve German/Italian/etc.)
- Include price exactly as displayed (with € symbol)
- If category is unclear, use "Other"
- If price is not visible for an item, set price to ""
- Do NOT make up items that aren't on the menu

Return ONLY the JSON array, no other text. Example:
[{"name": "Wiener Schnitzel", "price": "€14,90", "category": "Main"}]`

const (
	maxNameLen     = 200
	maxPriceLen    = 50
	maxCategoryLen = 50
)

// LLMOptions configures LLM.
type LLMOptions struct {
	Model        string
	MaxTokens    int64
	Temperature  float64
	MaxTextChars int
	// Costs, when set, receives the usage of every call.
	Costs *cost.Ledger
}

// LLM reads menus from text or images through a language model.
type LLM struct {
	client anthropic.Client
	opts   LLMOptions
}

// NewLLM creates an LLM.
func NewLLM(client anthropic.Client, opts LLMOptions) *LLM {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}
	if opts.MaxTextChars <= 0 {
		opts.MaxTextChars = 8000
	}
	return &LLM{client: client, opts: opts}
}

// FromText parses extracted menu text. Failures yield no items.
func (l *LLM) FromText(ctx context.Context, text string) []model.MenuItem {
	return l.ask(ctx, "text", anthropic.MessageRequest{
		System: ExtractionPrompt,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: "Here is the menu text:\n\n" + truncateRunes(text, l.opts.MaxTextChars),
		}},
	})
}

// FromImage reads one menu image. Failures yield no items.
func (l *LLM) FromImage(ctx context.Context, img anthropic.Image) []model.MenuItem {
	return l.ask(ctx, "vision", anthropic.MessageRequest{
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: ExtractionPrompt,
			Images:  []anthropic.Image{img},
		}},
	})
}

// FromImages reads several images and merges the items by name.
func (l *LLM) FromImages(ctx context.Context, images []anthropic.Image) []model.MenuItem {
	var all []model.MenuItem
	for _, img := range images {
		if ctx.Err() != nil {
			break
		}
		all = append(all, l.FromImage(ctx, img)...)
	}
	return Merge(all)
}

func (l *LLM) ask(ctx context.Context, phase string, req anthropic.MessageRequest) []model.MenuItem {
	temp := l.opts.Temperature
	req.Model = l.opts.Model
	req.MaxTokens = l.opts.MaxTokens
	req.Temperature = &temp

	resp, err := l.client.CreateMessage(ctx, req)
	if err != nil {
		zap.L().Warn("menu: llm extraction failed", zap.String("phase", phase), zap.Error(err))
		return nil
	}
	resp.Usage.LogCost(l.opts.Model, "menu_"+phase)
	l.opts.Costs.Record(l.opts.Model, "menu_"+phase, resp.Usage)
	return Clean(ParseItems(resp.Text()))
}

// ParseItems reads a model response expected to hold a JSON array of
// {name, price, category}. Code fences are stripped; when the body is not
// valid JSON the outermost [...] is tried. Anything else yields no items.
func ParseItems(content string) []model.MenuItem {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		var kept []string
		for _, line := range strings.Split(content, "\n") {
			if !strings.HasPrefix(strings.TrimSpace(line), "```") {
				kept = append(kept, line)
			}
		}
		content = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		start := strings.Index(content, "[")
		end := strings.LastIndex(content, "]")
		if start == -1 || end <= start {
			return nil
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &data); err != nil {
			zap.L().Debug("menu: llm response is not json")
			return nil
		}
	}

	list, ok := data.([]any)
	if !ok {
		return nil
	}

	var items []model.MenuItem
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(scalar(obj["name"]))
		if utf8.RuneCountInString(name) < 2 {
			continue
		}
		price := truncateRunes(scalar(obj["price"]), maxPriceLen)
		category := CategoryOther
		if v, ok := obj["category"]; ok {
			category = truncateRunes(scalar(v), maxCategoryLen)
		}
		items = append(items, model.MenuItem{
			Name:       truncateRunes(name, maxNameLen),
			Price:      price,
			PriceValue: ParsePrice(price),
			Category:   NormalizeCategory(category),
		})
	}
	return items
}

// Clean trims item names, drops names shorter than two runes, clips the text
// fields to their column limits and merges duplicates by name.
func Clean(items []model.MenuItem) []model.MenuItem {
	kept := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if utf8.RuneCountInString(it.Name) < 2 {
			continue
		}
		it.Name = truncateRunes(it.Name, maxNameLen)
		it.Price = truncateRunes(it.Price, maxPriceLen)
		it.Category = truncateRunes(it.Category, maxCategoryLen)
		kept = append(kept, it)
	}
	return Merge(kept)
}

// Merge drops later items whose case-folded name was already seen.
func Merge(items []model.MenuItem) []model.MenuItem {
	seen := make(map[string]bool, len(items))
	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		key := foldKey(it.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func foldKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
