package extract

import "regexp"

// The closed category taxonomy. These exact tokens are shared with the LLM
// prompt so that merge keys line up across extraction sources.
const (
	CategoryFood      = "alimentacao"
	CategoryTransport = "transporte"
	CategoryHousing   = "moradia"
	CategoryHealth    = "saude"
	CategoryLeisure   = "lazer"
	CategoryApparel   = "vestuario"
	CategoryServices  = "servicos"
	CategorySalary    = "salario"
	CategorySales     = "vendas"
	CategoryOther     = "outros"
	CategoryUncertain = "duvida"
)

// CategoryList is the taxonomy in its canonical order.
var CategoryList = []string{
	CategoryFood, CategoryTransport, CategoryHousing, CategoryHealth,
	CategoryLeisure, CategoryApparel, CategoryServices, CategorySalary,
	CategorySales, CategoryOther, CategoryUncertain,
}

// IsKnownCategory reports whether s is one of the taxonomy tokens.
func IsKnownCategory(s string) bool {
	for _, c := range CategoryList {
		if s == c {
			return true
		}
	}
	return false
}

// categoryRule is one entry of the ordered keyword table. Patterns are
// written in unaccented lowercase and matched against folded text; the first
// rule with any matching pattern wins. The keyword lists are a tuned
// configuration artifact, kept in sync with the labeled corpus rather than
// derived from first principles.
type categoryRule struct {
	category string
	patterns []*regexp.Regexp
}

func compileAll(pats ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(pats))
	for i, p := range pats {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var categoryRules = []categoryRule{
	{CategoryFood, compileAll(
		`\bmercado\b`, `\bsupermercado\b`, `\bmercadinho\b`, `\bmercearia\b`, `\bpadaria\b`,
		`\brestaurante\b`, `\blanches?\b`, `\bcomida\b`, `\bpizza\b`, `\bhamburguer\b`,
		`\bhambuguer\b`, `\bhamburgueria\b`, `\bburger\b`, `\bsanduiche\b`, `\bcafe\b`,
		`\bchurrasco\b`, `\bvinho\b`, `\bcerveja\b`, `\bbebida\b`, `\bmarmita\b`,
		`\bquentinha\b`, `\bsushi\b`, `\bpastel\b`, `\bdog\b`, `\bifood\b`, `\bdelivery\b`,
	)},
	{CategoryTransport, compileAll(
		`\bgasolina\b`, `\bcombustivel\b`, `\buber\b`, `\b99\b`, `\bestacionamento\b`,
		`\bonibus\b`, `\bmetro\b`, `\bpassagem\b`, `\btaxi\b`, `\bpedagio\b`, `\bposto\b`,
	)},
	{CategoryHousing, compileAll(
		`\baluguel\b`, `\bcondominio\b`, `\biptu\b`, `\benergia\b`, `\bagua\b`, `\bluz\b`,
	)},
	{CategoryHealth, compileAll(
		`\bfarmacia\b`, `\bmedico\b`, `\bremedio\b`, `\bdentista\b`, `\bconsulta\b`,
		`\bexame\b`, `\bplano\s+de\s+saude\b`, `\bplano\b`,
	)},
	{CategoryLeisure, compileAll(
		`\bcinema\b`, `\bstreaming\b`, `\bacademia\b`, `\bnetflix\b`, `\bspotify\b`,
		`\bjogo\b`, `\baposta[s]?\b`, `\bcassino\b`,
	)},
	{CategoryApparel, compileAll(
		`\broupa\b`, `\bsapato\b`, `\bcamisa\b`, `\bcalca\b`, `\bmoleton\b`,
		`\bcamiseta\b`, `\btenis\b`, `\bacessorio\b`,
	)},
	{CategoryServices, compileAll(
		`\bassinatura\b`, `\bservicos?\b`, `\binternet\b`, `\btelefonia\b`, `\bcabeleireiro\b`,
		`\bbarbearia\b`, `\bsalao\b`, `\bmanicure\b`, `\bpedicure\b`, `\bplano\b`, `\btv\b`,
		`\bnet\b`, `\bvivo\b`, `\bclaro\b`, `\boi\b`, `\bprime\b`, `\bdisney\b`,
		`\bicloud\b`, `\bgoogle\s+one\b`, `\bspotify\b`, `\byoutube\b`,
	)},
	{CategorySalary, compileAll(`\bsalario\b`, `\bfreela\b`)},
	{CategorySales, compileAll(`\bvendi\b`, `\bvenda[s]?\b`, `\bvendas\b`)},
}

// verbCategoryDefault maps an anchor verb to a low-confidence default
// category, used only when nothing in the text itself matched.
var verbCategoryDefault = map[string]string{
	"gastei":  CategoryOther,
	"paguei":  CategoryServices,
	"comprei": CategoryOther,
	"custou":  CategoryOther,
	"recebi":  CategoryOther,
	"ganhei":  CategoryOther,
	"vendi":   CategorySales,
	"salario": CategorySalary,
	"freela":  CategorySalary,
}

var (
	moneyMoveRx        = regexp.MustCompile(`\bpix\b|\btransfer[a-z]*\b|\bdeposito\b`)
	eSignatureRx       = regexp.MustCompile(`assinatura\s+(?:eletronica|digital)|\binternet\s+banking\b`)
	genericServiceRx   = regexp.MustCompile(`\bservicos?\b`)
	concreteMerchantRx = regexp.MustCompile(`mercado|supermercado|farmacia|restaurante|padaria|posto|uber|gasolina|combustivel|aluguel|condominio|energia|agua|luz`)
	streamingTelecomRx = regexp.MustCompile(`netflix|prime|disney|spotify|youtube|telefonia|vivo|claro|oi|internet`)
	salaryTermRx       = regexp.MustCompile(`\bsalario\b|\bcontracheque\b|\bholerite\b|\bfolha\b`)
	saleVerbRx         = regexp.MustCompile(`\bvendi\b|^vendas?\b`)
	saleStemRx         = regexp.MustCompile(`\bvend[a-z]*\b`)
)

// DetectCategory classifies normalized text into the taxonomy, returning the
// category and a confidence score. verb is an optional hint: the anchor verb
// the extractor matched in front of the amount.
//
// The tiers run in fixed priority order; specific keyword evidence outranks
// verb guessing, and vague money-movement language without merchant context
// never earns a concrete category.
func DetectCategory(text, verb string) (string, float64) {
	t := fold(text)

	// Vague transfer/pix/deposit phrasing dressed up as "serviço" or an
	// e-signature line must not be mistaken for a real service charge.
	if moneyMoveRx.MatchString(t) {
		if eSignatureRx.MatchString(t) && !concreteMerchantRx.MatchString(t) {
			return CategoryOther, 0.4
		}
		if genericServiceRx.MatchString(t) && !streamingTelecomRx.MatchString(t) && !concreteMerchantRx.MatchString(t) {
			return CategoryOther, 0.4
		}
	}

	// A first-person sale verb decides the direction of the whole clause;
	// the thing being sold must not drag the category away ("vendi uma
	// calça" is a sale, not an apparel expense).
	if saleVerbRx.MatchString(t) || fold(verb) == "vendi" {
		return CategorySales, 0.8
	}

	for _, rule := range categoryRules {
		for _, p := range rule.patterns {
			if p.MatchString(t) {
				return rule.category, 0.95
			}
		}
	}

	if salaryTermRx.MatchString(t) {
		return CategorySalary, 0.95
	}
	if saleStemRx.MatchString(t) {
		return CategorySales, 0.8
	}
	if moneyMoveRx.MatchString(t) {
		return CategoryOther, 0.4
	}
	if verb != "" {
		if cat, ok := verbCategoryDefault[fold(verb)]; ok {
			return cat, 0.3
		}
	}
	return CategoryOther, 0.2
}
