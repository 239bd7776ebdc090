package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/litsalon/backend/internal/model/chat"
	"github.com/litsalon/backend/internal/model/persona"
)

func testPersona() persona.Persona {
	return persona.Persona{
		ID:             "tolstoy",
		DisplayName:    "Leo Tolstoy",
		Era:            "1828-1910",
		Bio:            "Novelist and moral philosopher.",
		MajorWorks:     []string{"War and Peace", "Anna Karenina"},
		StyleDirective: "Speak with moral seriousness and long sentences.",
	}
}

func TestComposeSectionOrder(t *testing.T) {
	correctionRecords := []chat.CorrectionRecord{{
		PriorUserMessage: "When were you born?",
		CorrectionText:   "In 1828.",
		Priority:         chat.PriorityNormal,
	}}
	global := []string{"When asked about: his estate → Answer: Yasnaya Polyana"}
	facts := []string{"War and Peace was published between 1865 and 1869."}

	out := Compose(testPersona(), correctionRecords, global, facts)

	markers := []string{
		"You embody the personality of Leo Tolstoy.",
		"Core facts:",
		"Verified training facts about you:",
		"HIGHEST PRIORITY - corrections this user has taught you",
		"Community corrections",
		"SELF-CORRECTION PROTOCOL:",
	}
	last := -1
	for _, marker := range markers {
		idx := strings.Index(out, marker)
		if idx < 0 {
			t.Fatalf("missing section %q", marker)
		}
		if idx < last {
			t.Fatalf("section %q out of order", marker)
		}
		last = idx
	}
}

func TestComposeOmitsEmptySections(t *testing.T) {
	out := Compose(testPersona(), nil, nil, nil)

	if strings.Contains(out, "HIGHEST PRIORITY") {
		t.Fatal("corrections section should be absent without corrections")
	}
	if strings.Contains(out, "Community corrections") {
		t.Fatal("community section should be absent without global learnings")
	}
	if strings.Contains(out, "Verified training facts") {
		t.Fatal("facts section should be absent without facts")
	}
	if !strings.Contains(out, "SELF-CORRECTION PROTOCOL:") {
		t.Fatal("self-correction protocol must always be present")
	}
}

func TestComposeCapsEachBlock(t *testing.T) {
	var correctionRecords []chat.CorrectionRecord
	for i := 0; i < MaxUserCorrections+5; i++ {
		correctionRecords = append(correctionRecords, chat.CorrectionRecord{
			PriorUserMessage: fmt.Sprintf("q%d", i),
			CorrectionText:   fmt.Sprintf("c%d", i),
		})
	}
	var global []string
	for i := 0; i < MaxGlobalCorrections+3; i++ {
		global = append(global, fmt.Sprintf("learning %d", i))
	}
	var facts []string
	for i := 0; i < MaxFacts+2; i++ {
		facts = append(facts, fmt.Sprintf("fact %d", i))
	}

	out := Compose(testPersona(), correctionRecords, global, facts)

	if strings.Contains(out, "c0\n") || !strings.Contains(out, "c14") {
		t.Fatal("expected only the newest user corrections to survive the cap")
	}
	if strings.Contains(out, "learning 0") || !strings.Contains(out, "learning 7") {
		t.Fatal("expected only the newest global learnings to survive the cap")
	}
	// Facts keep the head of the list, curated facts first.
	if !strings.Contains(out, "fact 0") || strings.Contains(out, "fact 9") {
		t.Fatal("expected facts truncated from the tail")
	}
}

func TestComposeFlagsCriticalCorrections(t *testing.T) {
	correctionRecords := []chat.CorrectionRecord{{
		PriorUserMessage: "q",
		CorrectionText:   "c",
		Priority:         chat.PriorityCritical,
	}}

	out := Compose(testPersona(), correctionRecords, nil, nil)
	if !strings.Contains(out, "[critical]") {
		t.Fatal("expected critical marker in corrections block")
	}
}

func TestComposeDeterministic(t *testing.T) {
	correctionRecords := []chat.CorrectionRecord{{PriorUserMessage: "q", CorrectionText: "c"}}
	a := Compose(testPersona(), correctionRecords, []string{"g"}, []string{"f"})
	b := Compose(testPersona(), correctionRecords, []string{"g"}, []string{"f"})
	if a != b {
		t.Fatal("expected identical output for identical input")
	}
}
