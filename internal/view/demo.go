package view

import "github.com/Renan-T/chart-auto-magic/internal/models"

func ptr(f float64) *float64 { return &f }

// DemoDashboard is the static commercial dashboard shown at /dashboard.
// Each call returns a fresh document.
func DemoDashboard() *models.DashboardDoc {
	return &models.DashboardDoc{
		DatasetID: "demo",
		Version:   "demo",
		KPIs: []models.KPI{
			{Name: "Receita Total", Value: 328000, Unit: models.UnitCurrencyBRL, Change: ptr(0.125), ChangeLabel: "vs mês anterior", Trend: "up"},
			{Name: "Atingimento de Meta", Value: 1.117, Unit: models.UnitPercent, ChangeLabel: "Meta superada", Trend: "up"},
			{Name: "Total de Pedidos", Value: 1248, Unit: models.UnitNumber, Change: ptr(-0.032), ChangeLabel: "vs mês anterior", Trend: "down"},
			{Name: "Ticket Médio", Value: 262.82, Unit: models.UnitCurrencyBRL, Change: ptr(0.163), ChangeLabel: "vs mês anterior", Trend: "up"},
		},
		Charts: models.ChartList{
			&models.SeriesChart{
				Type:  models.ChartLine,
				Title: "Receita vs Meta - 2024",
				XKey:  "month",
				Data: []models.Row{
					{"month": "Jan", "receita": 45000.0, "meta": 50000.0},
					{"month": "Fev", "receita": 52000.0, "meta": 50000.0},
					{"month": "Mar", "receita": 48000.0, "meta": 50000.0},
					{"month": "Abr", "receita": 61000.0, "meta": 55000.0},
					{"month": "Mai", "receita": 55000.0, "meta": 55000.0},
					{"month": "Jun", "receita": 67000.0, "meta": 60000.0},
				},
				Series: []models.Series{
					{Key: "receita", Label: "Receita"},
					{Key: "meta", Label: "Meta", Dashed: true},
				},
			},
			&models.BarChart{
				Type:  models.ChartBar,
				Title: "Top 5 Produtos - Vendas",
				XKey:  "produto",
				YKey:  "vendas",
				Data: []models.Row{
					{"produto": "Produto A", "vendas": 4000.0},
					{"produto": "Produto B", "vendas": 3000.0},
					{"produto": "Produto C", "vendas": 2000.0},
					{"produto": "Produto D", "vendas": 2780.0},
					{"produto": "Produto E", "vendas": 1890.0},
				},
			},
			&models.PieChart{
				Type:        models.ChartPie,
				Title:       "Distribuição por Canal",
				CategoryKey: "name",
				ValueKey:    "value",
				Data: []models.Slice{
					{Name: "E-commerce", Value: 45},
					{Name: "Varejo", Value: 30},
					{Name: "Atacado", Value: 15},
					{Name: "Marketplace", Value: 10},
				},
			},
		},
		Insights: []models.Insight{
			{Type: models.InsightPositive, Title: "Performance Positiva", Message: "Receita de Junho superou a meta em 11,7%. Produto A mantém liderança com crescimento constante."},
			{Type: models.InsightWarning, Title: "Atenção Necessária", Message: "Número de pedidos caiu 3,2%. Considere campanhas para aumentar volume de vendas."},
		},
	}
}
