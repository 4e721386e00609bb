package llm

import (
	"strings"

	"github.com/rbarros/finassist/internal/extract"
)

// buildPrompt assembles the extraction instructions for one user message.
// The taxonomy and the "0"/"1" direction encoding are the same contract the
// rule-based extractor emits, so both sources can be merged key for key.
func buildPrompt(text string) string {
	var b strings.Builder

	b.WriteString("Você é um extrator de transações financeiras de mensagens informais em português.\n\n")
	b.WriteString("Tarefa:\n")
	b.WriteString("- Extraia TODAS as transações citadas na mensagem abaixo.\n")
	b.WriteString("- Responda APENAS com JSON válido: um array de objetos, sem comentários e sem texto extra.\n\n")

	b.WriteString("Cada objeto deve ter estes campos:\n")
	b.WriteString("- \"tipo\": string, \"0\" para dinheiro que saiu (gasto) ou \"1\" para dinheiro que entrou (receita)\n")
	b.WriteString("- \"valor\": number, sempre positivo, em reais\n")
	b.WriteString("- \"categoria\": string, exatamente uma das listadas abaixo\n")
	b.WriteString("- \"descricao\": string curta e natural, no máximo 6 palavras\n\n")

	b.WriteString("Categorias permitidas:\n")
	b.WriteString("  " + strings.Join(extract.CategoryList, ", ") + "\n")
	b.WriteString("Use \"duvida\" quando não tiver certeza da categoria e \"outros\" para\n")
	b.WriteString("movimentações genéricas (pix, transferência, depósito) sem contexto.\n\n")

	b.WriteString("Exemplos:\n")
	b.WriteString("Mensagem: \"gastei 50 no mercado e recebi 1000 de salário\"\n")
	b.WriteString(`Resposta: [{"tipo":"0","valor":50,"categoria":"alimentacao","descricao":"Mercado"},` +
		`{"tipo":"1","valor":1000,"categoria":"salario","descricao":"Salário"}]` + "\n")
	b.WriteString("Mensagem: \"vendi uma calça por 50\"\n")
	b.WriteString(`Resposta: [{"tipo":"1","valor":50,"categoria":"vendas","descricao":"Venda de calça"}]` + "\n")
	b.WriteString("Mensagem: \"paguei 477,17 de luz ontem\"\n")
	b.WriteString(`Resposta: [{"tipo":"0","valor":477.17,"categoria":"moradia","descricao":"Luz"}]` + "\n\n")

	b.WriteString("Regras:\n")
	b.WriteString("- Valores seguem o formato brasileiro: vírgula decimal, ponto de milhar.\n")
	b.WriteString("- Se não houver nenhuma transação, responda [].\n")
	b.WriteString("- Não use cercas de código nem Markdown; a resposta começa com \"[\" e termina com \"]\".\n\n")

	b.WriteString("Mensagem: \"" + strings.ReplaceAll(text, `"`, `'`) + "\"\n")
	b.WriteString("Resposta:")

	return b.String()
}
