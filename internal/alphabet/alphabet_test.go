package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCharacters(t *testing.T) {
	ok, invalid := ValidateCharacters("Qazaq xabər, Teñri sû!")
	assert.True(t, ok)
	assert.Empty(t, invalid)

	ok, invalid = ValidateCharacters("Қазақ and ßß")
	assert.False(t, ok)
	assert.Equal(t, []rune{'Қ', 'а', 'з', 'қ', 'ß'}, invalid)
}

func TestFindTrackedLetters(t *testing.T) {
	assert.Equal(t, []string{"x", "ə", "q", "Q"}, FindTrackedLetters("Qazaq xəbər"))
	assert.Empty(t, FindTrackedLetters("güzel bir gün"))
}

func TestCountFold(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		letter string
		want   int
	}{
		{name: "mixed case", text: "Qazaq qızı", letter: "q", want: 3},
		{name: "upper letter", text: "Qazaq qızı", letter: "Q", want: 3},
		{name: "schwa", text: "Ədəbiyyat", letter: "ə", want: 2},
		{name: "dotless I folds to ı", text: "IIı", letter: "ı", want: 3},
		{name: "empty letter", text: "abc", letter: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountFold(tt.text, tt.letter))
		})
	}
}

func TestCountLetters(t *testing.T) {
	counts := CountLetters("Qazaq xabar", TransliterationUsage)
	assert.Equal(t, map[string]int{"x": 1, "q": 1, "Q": 1}, counts)

	folded := CountLettersFold("Qazaq xabar", EffectivenessLetters)
	assert.Equal(t, map[string]int{"q": 2, "x": 1}, folded)
}

func TestParseLanguage(t *testing.T) {
	for input, want := range map[string]Language{
		"Turkish":            Turkish,
		"uz":                 UzbekLatin,
		"kazakh_cyrillic":    KazakhCyrillic,
		" Kyrgyz  Cyrillic ": KyrgyzCyrillic,
		"AZ":                 AzerbaijaniLatin,
		"turkmen":            TurkmenLatin,
	} {
		got, err := ParseLanguage(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLanguage("Klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Uzbek Latin")
}

func TestMappingTables(t *testing.T) {
	for _, l := range Languages {
		assert.NotEmpty(t, Mapping(l), l)
	}

	kazakh := FormatMapping(Mapping(KazakhCyrillic))
	assert.Contains(t, kazakh, "қ→q")
	assert.Contains(t, kazakh, "ь→∅")
	assert.NotContains(t, kazakh, "Қ→Q")
}

func TestCognateLanguageName(t *testing.T) {
	assert.Equal(t, "Sakha", CognateLanguageName("sah"))
	assert.Equal(t, "XX", CognateLanguageName("xx"))
	assert.Len(t, CognateLanguages, 11)
}
