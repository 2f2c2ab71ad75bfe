package reply

import (
	"strings"
	"testing"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

func TestFormatReais(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "two decimals", cents: 4590, want: "R$ 45.90"},
		{name: "whole amount keeps decimals", cents: 5000, want: "R$ 50.00"},
		{name: "sub-real amount", cents: 9, want: "R$ 0.09"},
		{name: "zero", cents: 0, want: "R$ 0.00"},
		{name: "negative balance", cents: -1200, want: "R$ -12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReais(core.Money{Cents: tt.cents}); got != tt.want {
				t.Errorf("FormatReais(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}

func TestDates(t *testing.T) {
	at := time.Date(2025, time.March, 9, 15, 4, 5, 0, time.UTC)
	if got := ShortDate(at); got != "09/03/2025" {
		t.Errorf("ShortDate = %q, want 09/03/2025", got)
	}
	if got := MonthYear(at); got != "março de 2025" {
		t.Errorf("MonthYear = %q, want março de 2025", got)
	}
}

func TestExpenseSaved(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	got := ExpenseSaved(core.Money{Cents: 4590}, "transporte", at)
	want := "✅ Despesa registrada!\n💰 Valor: R$ 45.90\n📂 Categoria: transporte\n📅 Data: 09/03/2025"
	if got != want {
		t.Errorf("ExpenseSaved =\n%q\nwant\n%q", got, want)
	}
}

func TestIncomeSaved(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	got := IncomeSaved(core.Money{Cents: 300000}, "salário", at)
	if !strings.Contains(got, "✅ Receita registrada!") ||
		!strings.Contains(got, "📝 Descrição: salário") ||
		!strings.Contains(got, "R$ 3000.00") {
		t.Errorf("IncomeSaved missing expected fields:\n%s", got)
	}
}

func TestBalanceSummary(t *testing.T) {
	at := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	got := BalanceSummary(ledger.BalanceSummary{
		Income:  core.Money{Cents: 300000},
		Expense: core.Money{Cents: 120050},
		Balance: core.Money{Cents: 179950},
	}, at)
	want := "💰 Seu saldo atual (agosto de 2025):\n\n" +
		"📈 Receitas: R$ 3000.00\n" +
		"📉 Despesas: R$ 1200.50\n" +
		"💳 Saldo: R$ 1799.50"
	if got != want {
		t.Errorf("BalanceSummary =\n%q\nwant\n%q", got, want)
	}
}

func TestMonthlyReport(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	rep := ledger.ReportSummary{
		Income:  core.Money{Cents: 100000},
		Expense: core.Money{Cents: 8500},
		ByCategory: []ledger.CategoryAmount{
			{Name: "almoço", Amount: core.Money{Cents: 6500}},
			{Name: "transporte", Amount: core.Money{Cents: 2000}},
		},
	}
	got := MonthlyReport(rep, at)

	if !strings.HasPrefix(got, "📊 Relatório Financeiro - março de 2025\n\n") {
		t.Errorf("report header wrong:\n%s", got)
	}
	if !strings.Contains(got, "💳 Saldo: R$ 915.00") {
		t.Errorf("report balance wrong:\n%s", got)
	}
	// Category rows in breakdown order.
	iAlmoco := strings.Index(got, "• almoço: R$ 65.00")
	iTransporte := strings.Index(got, "• transporte: R$ 20.00")
	if iAlmoco == -1 || iTransporte == -1 || iAlmoco > iTransporte {
		t.Errorf("category breakdown wrong or misordered:\n%s", got)
	}
}

func TestMonthlyReportOmitsEmptyBreakdown(t *testing.T) {
	got := MonthlyReport(ledger.ReportSummary{}, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC))
	if strings.Contains(got, "Gastos por Categoria") {
		t.Errorf("empty expense set must omit the category section:\n%s", got)
	}
}

func TestGoalSet(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	got := GoalSet(core.Money{Cents: 50000}, at)
	if !strings.Contains(got, "🎯 Meta definida com sucesso!") ||
		!strings.Contains(got, "R$ 500.00") ||
		!strings.Contains(got, "março de 2025") {
		t.Errorf("GoalSet missing expected fields:\n%s", got)
	}
}

func TestCategorySpend(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	got := CategorySpend("alimentação", core.Money{Cents: 3050}, at)
	want := "📂 Gastos com \"alimentação\" este mês:\n💰 Total: R$ 30.50\n📅 Período: março de 2025"
	if got != want {
		t.Errorf("CategorySpend =\n%q\nwant\n%q", got, want)
	}
}

func TestFallbackGreetsUserByName(t *testing.T) {
	got := Fallback("Felipe")
	if !strings.HasPrefix(got, "Olá Felipe! 👋") {
		t.Errorf("fallback should greet the user:\n%s", got)
	}
	if !strings.Contains(got, `"Gastei R$50 em almoço"`) {
		t.Errorf("fallback should list example commands:\n%s", got)
	}
}

func TestOnboardingCarriesSignupURL(t *testing.T) {
	got := Onboarding("https://fin.example.com/")
	if !strings.Contains(got, "https://fin.example.com/") {
		t.Errorf("onboarding should carry the signup link:\n%s", got)
	}
	if !strings.Contains(got, "ainda não está cadastrado") {
		t.Errorf("onboarding text changed:\n%s", got)
	}
}

func TestRendersAreDeterministic(t *testing.T) {
	at := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	first := ExpenseSaved(core.Money{Cents: 100}, "outros", at)
	for i := 0; i < 5; i++ {
		if got := ExpenseSaved(core.Money{Cents: 100}, "outros", at); got != first {
			t.Fatal("renderer output is not deterministic")
		}
	}
}
