package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("  --  "))
	assert.Equal(t, []string{"q3", "revenue", "grew", "12", "year", "over", "year"}, Tokenize("Q3 revenue grew 12% year-over-year."))
	assert.Equal(t, []string{"café", "menü"}, Tokenize("Café/Menü"))
}

func TestTerms_DropsStopwords(t *testing.T) {
	assert.Equal(t, []string{"termination", "clause", "contract"}, Terms("The termination clause of the contract"))
	assert.Nil(t, Terms("the and of"))
}

func TestUniqueTerms(t *testing.T) {
	assert.Equal(t, []string{"lease", "renewal"}, UniqueTerms("lease renewal LEASE lease"))
}

func TestTopTerms(t *testing.T) {
	texts := []string{
		"Invoice totals for the vendor. Vendor terms apply.",
		"The vendor invoice was approved in 2024 by audit.",
	}
	assert.Equal(t, []string{"vendor", "invoice"}, TopTerms(texts, 2))
	got := TopTerms(texts, 10)
	assert.NotContains(t, got, "2024")
	assert.NotContains(t, got, "the")
	assert.Equal(t, "vendor", got[0])
}
