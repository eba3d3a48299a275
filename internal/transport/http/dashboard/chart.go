package dashhttp

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"snipedash/internal/logger"
	"snipedash/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	echartstypes "github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"
)

const (
	chartBackground  = "#060c1b"
	chartTextPrimary = "#eceff4"
	chartTextMuted   = "#9ca3af"
	chartProfit      = "#34d399"
	chartLoss        = "#f87171"
	chartCumulative  = "#3b82f6"

	chartWidth  = "1200px"
	chartHeight = "420px"
)

// handleProfitChart 渲染一页盈亏图表：逐笔收益柱状图 + 累计收益折线。
// 只统计已离场的记录，按建仓时间正序排列。
func (r *Router) handleProfitChart(c *gin.Context) {
	history := r.controller.View().TradeHistory
	closed := make([]types.TradeRecord, 0, len(history))
	for _, tr := range history {
		if tr.Status.Terminal() && tr.ProfitLossPct != nil {
			closed = append(closed, tr)
		}
	}
	sort.Slice(closed, func(i, j int) bool { return closed[i].CreatedAt.Before(closed[j].CreatedAt) })

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(buildPerTradeBar(closed), buildCumulativeLine(closed))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := page.Render(c.Writer); err != nil {
		logger.Errorf("[chart] render failed ip=%s err=%v", c.ClientIP(), err)
	}
}

func buildPerTradeBar(closed []types.TradeRecord) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           echartstypes.ThemeWesteros,
			Width:           chartWidth,
			Height:          chartHeight,
			BackgroundColor: chartBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Per-Trade P/L %",
			Subtitle:   fmt.Sprintf("%d closed trades", len(closed)),
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: chartTextPrimary, FontSize: 16},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: chartTextMuted},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Color: chartTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: chartTextMuted, Opacity: opts.Float(0.15)}},
		}),
	)
	data := make([]opts.BarData, len(closed))
	for i, tr := range closed {
		pl := decimal.NewFromFloat(*tr.ProfitLossPct).Round(2)
		color := chartLoss
		if pl.Sign() >= 0 {
			color = chartProfit
		}
		data[i] = opts.BarData{
			Value:     pl.InexactFloat64(),
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.8)},
		}
	}
	bar.SetXAxis(tradeAxisLabels(closed))
	bar.AddSeries("P/L %", data)
	return bar
}

func buildCumulativeLine(closed []types.TradeRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           echartstypes.ThemeWesteros,
			Width:           chartWidth,
			Height:          chartHeight,
			BackgroundColor: chartBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Cumulative P/L %",
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: chartTextPrimary, FontSize: 16},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: chartTextMuted},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Color: chartTextMuted},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: chartTextMuted, Opacity: opts.Float(0.15)}},
		}),
	)
	// decimal 累加避免长序列上的浮点漂移。
	cumulative := decimal.Zero
	data := make([]opts.LineData, len(closed))
	for i, tr := range closed {
		cumulative = cumulative.Add(decimal.NewFromFloat(*tr.ProfitLossPct))
		data[i] = opts.LineData{Value: cumulative.Round(2).InexactFloat64()}
	}
	line.SetXAxis(tradeAxisLabels(closed))
	line.AddSeries("cumulative", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: chartCumulative, Width: 2}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.15)}),
	)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func tradeAxisLabels(closed []types.TradeRecord) []string {
	labels := make([]string, len(closed))
	for i, tr := range closed {
		symbol := strings.TrimSpace(tr.TokenSymbol)
		if symbol == "" {
			symbol = shortAddress(tr.TokenAddress)
		}
		labels[i] = fmt.Sprintf("%s %s", symbol, tr.CreatedAt.UTC().Format("01-02 15:04"))
	}
	return labels
}

func shortAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + ".." + addr[len(addr)-4:]
}
