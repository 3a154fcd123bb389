package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/dtos"
	"github.com/bibujohny/rentalAI/internal/utils"
)

// PortfolioSnapshot is the input to insight generation.
type PortfolioSnapshot struct {
	TenantCount   int     `json:"tenant_count"`
	RentTotal     float64 `json:"rent_total"`
	ActiveGuests  int     `json:"active_guests"`
	DailyGuests   int     `json:"daily_guests"`
	MonthlyGuests int     `json:"monthly_guests"`
}

func (p PortfolioSnapshot) AverageRent() float64 {
	if p.TenantCount == 0 {
		return 0
	}
	return p.RentTotal / float64(p.TenantCount)
}

// InsightsService produces the dashboard's insight panel. It never fails:
// when the model is unavailable the heuristic answer is returned.
type InsightsService interface {
	Generate(ctx context.Context, snap PortfolioSnapshot) dtos.Insights
}

type insightsService struct {
	client  *openai.Client
	model   string
	enabled bool
	cache   InsightsCache
}

// NewInsightsService creates the service. An empty apiKey or a disabled flag
// keeps it on the heuristic path.
func NewInsightsService(apiKey, model string, enabled bool, cache InsightsCache) InsightsService {
	if model == "" {
		model = constants.DefaultOpenAIModel
	}
	if cache == nil {
		cache = NoopInsightsCache{}
	}
	s := &insightsService{model: model, enabled: enabled, cache: cache}
	if apiKey != "" {
		c := openai.NewClient(option.WithAPIKey(apiKey))
		s.client = &c
	}
	return s
}

func (s *insightsService) Generate(ctx context.Context, snap PortfolioSnapshot) dtos.Insights {
	if s.client == nil || !s.enabled {
		return HeuristicInsights(snap)
	}

	key := insightsCacheKey(s.model, snap)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return *cached
	}

	reqCtx, cancel := context.WithTimeout(ctx, constants.OpenAIRequestTimeout)
	defer cancel()
	out, err := s.ask(reqCtx, snap)
	if err != nil {
		utils.Logger.WithError(err).Warn("AI insights unavailable; using heuristic")
		return HeuristicInsights(snap)
	}
	s.cache.Set(ctx, key, out)
	return *out
}

const insightsToolName = "report_portfolio_insights"

func (s *insightsService) ask(ctx context.Context, snap PortfolioSnapshot) (*dtos.Insights, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rent_performance":   map[string]string{"type": "string"},
			"occupancy_forecast": map[string]string{"type": "string"},
			"alerts":             map[string]string{"type": "string"},
			"lodge_trends":       map[string]string{"type": "string"},
		},
		"required": []string{
			"rent_performance",
			"occupancy_forecast",
			"alerts",
			"lodge_trends",
		},
		"additionalProperties": false,
	}

	fn := shared.FunctionDefinitionParam{
		Name:        insightsToolName,
		Description: openai.String("Return short plain-text insights for a small rental and lodge portfolio."),
		Strict:      openai.Bool(true),
		Parameters:  schema,
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an analyst for a small building and lodge business in India. Amounts are in rupees."),
			openai.UserMessage(fmt.Sprintf(`Analyse this portfolio and call %s.
Keep every field to one or two sentences. Put critical problems in alerts, or "No critical alerts".

%s`, insightsToolName, payload)),
		},
		Tools: []openai.ChatCompletionToolParam{{
			Function: fn,
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: insightsToolName,
				},
			},
		},
	}

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("openai: no function call returned")
	}

	out := &dtos.Insights{}
	if err := json.Unmarshal(
		[]byte(resp.Choices[0].Message.ToolCalls[0].Function.Arguments),
		out,
	); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	out.OK = true
	out.Source = dtos.InsightsSourceOpenAI
	return out, nil
}

// HeuristicInsights derives the panel from totals alone.
func HeuristicInsights(snap PortfolioSnapshot) dtos.Insights {
	avg := snap.AverageRent()

	var alerts []string
	if snap.TenantCount == 0 {
		alerts = append(alerts, "No active tenants")
	}
	if snap.ActiveGuests == 0 {
		alerts = append(alerts, "Lodge occupancy is 0")
	}
	if avg > 0 && avg < constants.LowAverageRentThreshold {
		alerts = append(alerts, "Average rent per tenant is low")
	}
	alertText := "No critical alerts"
	if len(alerts) > 0 {
		alertText = strings.Join(alerts, "; ")
	}

	return dtos.Insights{
		OK:     true,
		Source: dtos.InsightsSourceHeuristic,
		RentPerformance: fmt.Sprintf("Collecting ₹%s from %d tenants (avg ₹%s).",
			formatRupees(snap.RentTotal), snap.TenantCount, formatRupees(avg)),
		OccupancyForecast: fmt.Sprintf("%d active lodge guests now; short-term occupancy expected to be steady.",
			snap.ActiveGuests),
		Alerts: alertText,
		LodgeTrends: fmt.Sprintf("Daily: %d, Monthly: %d. Keep a healthy mix to stabilize revenue.",
			snap.DailyGuests, snap.MonthlyGuests),
	}
}

// formatRupees renders an amount rounded to whole rupees with thousands
// separators.
func formatRupees(v float64) string {
	return strings.TrimSuffix(utils.FormatMoney(math.Round(v)), ".00")
}
