package domain

// Flour is one inventory item. The stock ledger tracks on-hand grams
// per flour; ids are referenced from recipe formulas and process
// ledgers.
type Flour struct {
	ID                   string `json:"id"`
	Kind                 string `json:"mehlArt"`
	Grade                string `json:"mehlTyp"`
	BrandName            string `json:"eigenName"`
	RecommendedHydration string `json:"empfohleneHydration"`
	OnHand               bool   `json:"vorhanden"`
	OnHandGrams          int    `json:"vorhandenGramm"`
}

// Display returns a readable one-line description of the flour.
func (f *Flour) Display() string {
	s := f.Kind + " Typ " + f.Grade
	if f.BrandName != "" {
		s += " (" + f.BrandName + ")"
	}
	return s
}
