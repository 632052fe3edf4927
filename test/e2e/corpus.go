// Package e2e runs the embedding pipeline against a real exported model and a multilingual
// paraphrase corpus.
package e2e

// Sentence is a corpus entry.
type Sentence struct {
	Lang string
	Text string
}

// QueryTestCase is a query whose best match in the corpus must be ExpectedIndex.
type QueryTestCase struct {
	Query         string
	Lang          string
	ExpectedIndex int
	Description   string
}

// Corpus holds the sentences to rank and the queries to rank them against.
type Corpus struct {
	Sentences []Sentence
	TestCases []QueryTestCase
}

// Texts returns the sentence texts in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.Sentences))
	for i, s := range c.Sentences {
		out[i] = s.Text
	}
	return out
}

// BuildCorpus returns topically distinct sentences and, for each, a paraphrase query
// (often in another language) that should retrieve it.
func BuildCorpus() *Corpus {
	topics := []struct {
		sentence Sentence
		query    QueryTestCase
	}{
		{Sentence{"en", "The cat is sleeping on the warm windowsill."},
			QueryTestCase{Query: "Der Kater schläft auf der warmen Fensterbank.", Lang: "de", Description: "pet resting"}},
		{Sentence{"pt", "O trem para Lisboa está atrasado trinta minutos."},
			QueryTestCase{Query: "The train to Lisbon is half an hour late.", Lang: "en", Description: "train delay"}},
		{Sentence{"es", "Necesito cambiar la contraseña de mi cuenta bancaria."},
			QueryTestCase{Query: "I have to reset my bank account password.", Lang: "en", Description: "password reset"}},
		{Sentence{"en", "Heavy rain is expected across the region tomorrow."},
			QueryTestCase{Query: "Amanhã deve chover muito em toda a região.", Lang: "pt", Description: "weather forecast"}},
		{Sentence{"fr", "Le restaurant sert les meilleures pâtes de la ville."},
			QueryTestCase{Query: "This place has the best pasta in town.", Lang: "en", Description: "restaurant review"}},
		{Sentence{"en", "The server crashed because it ran out of memory."},
			QueryTestCase{Query: "El servidor se cayó por falta de memoria.", Lang: "es", Description: "outage cause"}},
		{Sentence{"de", "Wir treffen uns morgen um neun Uhr im Büro."},
			QueryTestCase{Query: "We will meet at the office tomorrow at nine.", Lang: "en", Description: "meeting time"}},
		{Sentence{"it", "La squadra ha vinto il campionato dopo dieci anni."},
			QueryTestCase{Query: "The team won the championship for the first time in a decade.", Lang: "en", Description: "sports result"}},
		{Sentence{"en", "Please remember to water the plants while I am away."},
			QueryTestCase{Query: "Não se esqueça de regar as plantas enquanto eu estiver fora.", Lang: "pt", Description: "house sitting"}},
		{Sentence{"en", "Interest rates were raised by the central bank."},
			QueryTestCase{Query: "La banque centrale a augmenté ses taux d'intérêt.", Lang: "fr", Description: "monetary policy"}},
	}

	c := &Corpus{}
	for i, t := range topics {
		c.Sentences = append(c.Sentences, t.sentence)
		q := t.query
		q.ExpectedIndex = i
		c.TestCases = append(c.TestCases, q)
	}
	return c
}
