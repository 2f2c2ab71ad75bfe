// Package reply renders each operation result into its outbound message.
//
// Templates are fixed and deterministic: amounts always carry two decimal
// places with the "R$ " prefix, single-transaction confirmations use the
// short pt-BR date and monthly aggregates use the long month/year form.
package reply

import (
	"fmt"
	"strings"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

var monthNames = [...]string{
	time.January:   "janeiro",
	time.February:  "fevereiro",
	time.March:     "março",
	time.April:     "abril",
	time.May:       "maio",
	time.June:      "junho",
	time.July:      "julho",
	time.August:    "agosto",
	time.September: "setembro",
	time.October:   "outubro",
	time.November:  "novembro",
	time.December:  "dezembro",
}

// FormatReais renders cents as "R$ 45.90". Negative balances come out as
// "R$ -12.00".
func FormatReais(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("R$ %s%d.%02d", sign, cents/100, cents%100)
}

// ShortDate renders the pt-BR day/month/year form used in confirmations.
func ShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// MonthYear renders the long pt-BR month/year form used in monthly replies.
func MonthYear(t time.Time) string {
	return fmt.Sprintf("%s de %d", monthNames[t.Month()], t.Year())
}

// Onboarding is sent to phone numbers with no registered account.
func Onboarding(signupURL string) string {
	return "👋 Olá! Parece que você ainda não está cadastrado no nosso sistema financeiro.\n\n" +
		"Para começar a usar o bot, acesse nosso site e faça seu cadastro:\n" +
		signupURL + "\n\n" +
		"Após o cadastro, você poderá usar todos os recursos do bot! 🤖💰"
}

func ExpenseSaved(amount core.Money, category string, when time.Time) string {
	return "✅ Despesa registrada!\n" +
		"💰 Valor: " + FormatReais(amount) + "\n" +
		"📂 Categoria: " + category + "\n" +
		"📅 Data: " + ShortDate(when)
}

func IncomeSaved(amount core.Money, description string, when time.Time) string {
	return "✅ Receita registrada!\n" +
		"💰 Valor: " + FormatReais(amount) + "\n" +
		"📝 Descrição: " + description + "\n" +
		"📅 Data: " + ShortDate(when)
}

func BalanceSummary(sum ledger.BalanceSummary, when time.Time) string {
	return "💰 Seu saldo atual (" + MonthYear(when) + "):\n\n" +
		"📈 Receitas: " + FormatReais(sum.Income) + "\n" +
		"📉 Despesas: " + FormatReais(sum.Expense) + "\n" +
		"💳 Saldo: " + FormatReais(sum.Balance)
}

func MonthlyReport(rep ledger.ReportSummary, when time.Time) string {
	var b strings.Builder
	b.WriteString("📊 Relatório Financeiro - " + MonthYear(when) + "\n\n")
	b.WriteString("💰 Resumo:\n")
	b.WriteString("📈 Total de Receitas: " + FormatReais(rep.Income) + "\n")
	b.WriteString("📉 Total de Despesas: " + FormatReais(rep.Expense) + "\n")
	b.WriteString("💳 Saldo: " + FormatReais(rep.Income.Sub(rep.Expense)) + "\n\n")

	if len(rep.ByCategory) > 0 {
		b.WriteString("📂 Gastos por Categoria:\n")
		for _, c := range rep.ByCategory {
			b.WriteString("• " + c.Name + ": " + FormatReais(c.Amount) + "\n")
		}
	}
	return b.String()
}

func GoalSet(target core.Money, when time.Time) string {
	return "🎯 Meta definida com sucesso!\n" +
		"💰 Valor: " + FormatReais(target) + "\n" +
		"📅 Mês: " + MonthYear(when) + "\n\n" +
		"Vou te ajudar a acompanhar seu progresso!"
}

func CategorySpend(category string, total core.Money, when time.Time) string {
	return "📂 Gastos com \"" + category + "\" este mês:\n" +
		"💰 Total: " + FormatReais(total) + "\n" +
		"📅 Período: " + MonthYear(when)
}

func Help() string {
	return "💡 Dica Financeira do Dia:\n\n" +
		"\"Registre todas suas despesas diariamente para ter controle total dos seus gastos. " +
		"Pequenas despesas somam muito no final do mês!\"\n\n" +
		"📝 Comandos disponíveis:\n" +
		"• \"Gastei R$X em categoria\" - registrar despesa\n" +
		"• \"Recebi R$X de fonte\" - registrar receita\n" +
		"• \"Saldo\" - consultar saldo atual\n" +
		"• \"Relatório\" - ver resumo do mês\n" +
		"• \"Quero economizar R$X\" - definir meta\n" +
		"• \"Quanto gastei com categoria\" - gastos por categoria"
}

// Fallback greets the user by name and lists the known commands.
func Fallback(name string) string {
	return "Olá " + name + "! 👋\n\n" +
		"Não entendi sua mensagem. Aqui estão alguns comandos que você pode usar:\n\n" +
		"💸 \"Gastei R$50 em almoço\"\n" +
		"💰 \"Recebi meu salário de R$3000\"\n" +
		"💳 \"Qual meu saldo?\"\n" +
		"📊 \"Gerar relatório\"\n" +
		"🎯 \"Quero economizar R$500\"\n" +
		"📂 \"Quanto gastei com alimentação?\"\n" +
		"💡 \"Dicas\"\n\n" +
		"Como posso te ajudar hoje?"
}

// Restate prompts sent when a message carries no parsable amount. These are
// user guidance, not system errors.
func AskExpenseAmount() string {
	return `Por favor, informe o valor da despesa. Ex: "Gastei R$50 em almoço"`
}

func AskIncomeAmount() string {
	return `Por favor, informe o valor da receita. Ex: "Recebi meu salário de R$3000"`
}

func AskGoalAmount() string {
	return `Por favor, informe o valor da meta. Ex: "Quero economizar R$500 este mês"`
}

// Retry messages sent when the store fails. The underlying error is logged
// by the dispatcher, never shown to the user.
func ExpenseSaveFailed() string {
	return "Ops! Não consegui registrar sua despesa. Tente novamente."
}

func IncomeSaveFailed() string {
	return "Ops! Não consegui registrar sua receita. Tente novamente."
}

func BalanceFailed() string {
	return "Erro ao consultar saldo. Tente novamente."
}

func ReportFailed() string {
	return "Erro ao gerar relatório. Tente novamente."
}

func GoalSaveFailed() string {
	return "Erro ao definir meta. Tente novamente."
}

func CategorySpendFailed() string {
	return "Erro ao consultar gastos por categoria. Tente novamente."
}
