package catalog

import (
	"strconv"
	"strings"

	"quiz-match/internal/domain"
)

// sellablePredicate keeps drafts and sold-out items off the returned page.
const sellablePredicate = "status:active AND available_for_sale:true"

// BuildSearchQuery renders the catalog search syntax:
//
//	(tag:'casual' OR product_type:'Sneakers') AND variants.price:>=50 AND variants.price:<=150 AND status:active AND available_for_sale:true
//
// Empty criteria render as the sellable predicate alone.
func BuildSearchQuery(q domain.CatalogQuery) string {
	var terms []string
	for _, tag := range q.Tags {
		terms = append(terms, "tag:"+quote(tag))
	}
	for _, typ := range q.Types {
		terms = append(terms, "product_type:"+quote(typ))
	}

	var clauses []string
	switch len(terms) {
	case 0:
	case 1:
		clauses = append(clauses, terms[0])
	default:
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}
	if q.MinPrice != nil {
		clauses = append(clauses, "variants.price:>="+formatPrice(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, "variants.price:<="+formatPrice(*q.MaxPrice))
	}
	clauses = append(clauses, sellablePredicate)
	return strings.Join(clauses, " AND ")
}

func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
