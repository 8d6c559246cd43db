// Case classification for the migration bridge. The Classifier interface
// keeps the keyword heuristics swappable without touching the bridge's
// control flow.
package migrate

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Classifier assigns a case type and a complexity level to a legacy
// record from its concatenated stage text.
type Classifier interface {
	// CaseType returns the legal category for the given text.
	CaseType(text string) string

	// Complexity returns the complexity level for the given text and
	// stage count.
	Complexity(text string, stageCount int) string
}

// category is one keyword list; order in KeywordClassifier.categories is
// match priority.
type category struct {
	caseType string
	terms    []string
}

// KeywordClassifier is the default Classifier: a first-match-wins scan of
// curated Arabic legal term lists.
type KeywordClassifier struct {
	categories []category
	legalTerms []string
}

// NewKeywordClassifier returns the classifier with the curated term
// lists.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		categories: []category{
			{types.CaseTypeInheritance, []string{"ميراث", "ورثة", "تركة", "وصية", "إرث", "مواريث"}},
			{types.CaseTypeFamilyStatus, []string{"طلاق", "زواج", "حضانة", "نفقة", "خلع", "عدة", "أحوال شخصية"}},
			{types.CaseTypeCommercial, []string{"تجاري", "شركة", "شيك", "سند", "إفلاس", "تجارة", "علامة تجارية"}},
			{types.CaseTypeCriminal, []string{"جناية", "جنحة", "سرقة", "احتيال", "قتل", "جريمة", "عقوبة"}},
			{types.CaseTypeRealEstate, []string{"عقار", "ملكية", "أرض", "بناء", "تسجيل عقاري", "شفعة"}},
			{types.CaseTypeLabor, []string{"عامل", "أجور", "فصل تعسفي", "مكافأة نهاية الخدمة", "عقد عمل"}},
			{types.CaseTypeAdministrative, []string{"قرار إداري", "إداري", "جهة حكومية", "وزارة", "ترخيص"}},
			{types.CaseTypeRental, []string{"إيجار", "مستأجر", "مؤجر", "أجرة", "إخلاء"}},
		},
		legalTerms: []string{"محكمة", "دعوى", "محامي", "قاضي", "حكم", "استئناف", "قانون"},
	}
}

// CaseType scans the category lists in priority order and returns the
// first category with a term present in the text, or "general" when none
// matches. The scan is deterministic: same text, same category.
func (k *KeywordClassifier) CaseType(text string) string {
	for _, cat := range k.categories {
		hit := lo.SomeBy(cat.terms, func(term string) bool {
			return strings.Contains(text, term)
		})
		if hit {
			return cat.caseType
		}
	}
	return types.CaseTypeGeneral
}

// Complexity thresholds over text length (in runes) and stage count.
const (
	advancedTextLen    = 10000
	advancedStageCount = 8
	intermedTextLen    = 5000
	intermedStageCount = 4
)

// Complexity scores the record: very long or many-staged cases are
// advanced; moderately long, moderately staged, or legal-terminology
// cases are intermediate; everything else is basic.
func (k *KeywordClassifier) Complexity(text string, stageCount int) string {
	length := utf8.RuneCountInString(text)

	if length >= advancedTextLen || stageCount > advancedStageCount {
		return types.ComplexityAdvanced
	}

	legalHit := lo.SomeBy(k.legalTerms, func(term string) bool {
		return strings.Contains(text, term)
	})
	if length >= intermedTextLen || stageCount > intermedStageCount || legalHit {
		return types.ComplexityIntermediate
	}
	return types.ComplexityBasic
}
