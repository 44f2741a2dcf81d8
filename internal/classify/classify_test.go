package classify

import (
	"testing"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/structure"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want structure.BlockType
	}{
		{"exercise header", "EXERCÍCIO 3. Calcule o valor de x", structure.TypeExercicio},
		{"exercise plural", "Exercícios de fixação", structure.TypeExercicio},
		{"exercise no accent", "exercicio 10", structure.TypeExercicio},
		{"question header", "Questão 5: assinale a alternativa correta", structure.TypeQuestao},
		{"question plural", "Questões para revisão", structure.TypeQuestao},
		{"vestibular enem", "(ENEM 2019) Considere o gráfico abaixo", structure.TypeQuestao},
		{"vestibular fuvest", "FUVEST 2020 - Um corpo em queda livre", structure.TypeQuestao},
		{"answer key", "GABARITO\n1. A\n2. C", structure.TypeGabarito},
		{"answer key respostas", "Respostas dos exercícios: 1-B 2-D", structure.TypeGabarito},
		{"example header", "Exemplo 2: considere a função f(x) = 2x", structure.TypeExemplo},
		{"worked exercise is an example", "Exercício resolvido 4: temos que", structure.TypeExemplo},
		{"activity header", "Atividade 7 - pesquise em grupo", structure.TypeExercicio},
		{"default theory", "Uma função é uma relação entre dois conjuntos", structure.TypeTeoria},
		{"empty text", "", structure.TypeTeoria},
		{"keyword mid-sentence stays theory", "Neste capítulo veremos exemplos de funções", structure.TypeTeoria},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyWith_FirstMatchWins(t *testing.T) {
	// Both rules match; the earlier one must win.
	rules := []Rule{
		{DefaultRules[2].Pattern, structure.TypeGabarito},
		{DefaultRules[2].Pattern, structure.TypeQuestao},
	}
	if got := ClassifyWith(rules, "Questão 1"); got != structure.TypeGabarito {
		t.Errorf("expected first rule to win, got %q", got)
	}
}

func TestIsQuestionType(t *testing.T) {
	if !IsQuestionType(structure.TypeQuestao) || !IsQuestionType(structure.TypeExercicio) {
		t.Error("questao and exercicio should be question types")
	}
	if IsQuestionType(structure.TypeTeoria) || IsQuestionType(structure.TypeGabarito) {
		t.Error("teoria and gabarito are not question types")
	}
}
