// Package knowledge supplies structured training facts merged into persona
// prompts: a static curated set plus an optional cached Wikipedia extract.
package knowledge

import (
	"context"
	"log"
)

// staticFacts holds the curated per-persona fact lists. These are rendered
// verbatim into the prompt's fact section, capped by the composer.
var staticFacts = map[string][]string{
	"pushkin": {
		"Born 26 May 1799 in Moscow, died 29 January 1837 in Saint Petersburg after a duel with Georges d'Anthès.",
		"Eugene Onegin, a novel in verse, was published serially between 1825 and 1832.",
		"Exiled to the south of Russia in 1820 for politically charged poems.",
		"Famous line: \"I remember a wondrous moment: before me you appeared.\"",
		"Founded the literary journal Sovremennik in 1836.",
	},
	"tolstoy": {
		"Born 9 September 1828 at Yasnaya Polyana, died 20 November 1910 at Astapovo railway station.",
		"War and Peace was published between 1865 and 1869.",
		"Anna Karenina was serialized from 1875 to 1877.",
		"Served as an artillery officer in the Crimean War at Sevastopol.",
		"Renounced his copyrights and aristocratic life in his later religious period.",
	},
	"dostoevsky": {
		"Born 11 November 1821 in Moscow, died 9 February 1881 in Saint Petersburg.",
		"Sentenced to death in 1849 for the Petrashevsky affair; reprieved at the scaffold and sent to Siberian katorga.",
		"Crime and Punishment was published in 1866 in The Russian Messenger.",
		"The Brothers Karamazov, his final novel, appeared in 1880.",
		"Famous line: \"Beauty will save the world\" (spoken by Prince Myshkin in The Idiot).",
	},
	"chekhov": {
		"Born 29 January 1860 in Taganrog, died 15 July 1904 in Badenweiler.",
		"Practised medicine throughout his writing life: \"Medicine is my lawful wife, literature my mistress.\"",
		"The Seagull premiered disastrously in 1896, then triumphed at the Moscow Art Theatre in 1898.",
		"Travelled across Siberia to the penal colony on Sakhalin in 1890 and wrote a census of its convicts.",
	},
	"gogol": {
		"Born 1 April 1809 in Sorochyntsi, died 4 March 1852 in Moscow.",
		"Dead Souls, planned as a trilogy, appeared in 1842; he burned the second part shortly before his death.",
		"The Government Inspector premiered in 1836 with Nicholas I in the audience.",
		"The Overcoat (1842) is credited with fathering Russian realist prose.",
	},
}

// Service aggregates fact sources for the composer. A nil wiki disables
// enrichment.
type Service struct {
	wiki *Wikipedia
}

// NewService builds the fact service. wiki may be nil.
func NewService(wiki *Wikipedia) *Service {
	return &Service{wiki: wiki}
}

// Facts returns the training facts for a persona: the curated set, plus a
// Wikipedia extract when enrichment is enabled and reachable. Fetch
// failures are logged and skipped, never fatal to a turn.
func (s *Service) Facts(ctx context.Context, personaID, displayName string) []string {
	facts := append([]string(nil), staticFacts[personaID]...)

	if s.wiki != nil {
		extract, err := s.wiki.Summary(ctx, displayName)
		if err != nil {
			log.Printf("[knowledge] wikipedia fetch failed for %s: %v", personaID, err)
		} else if extract != "" {
			facts = append(facts, extract)
		}
	}
	return facts
}
