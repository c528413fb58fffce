package classify

import "reception-backend/internal/category"

// DefaultVocabulary returns the built-in keyword vocabulary per category.
// The vocabulary is data, not contract: callers may supply their own when
// constructing a Classifier.
func DefaultVocabulary() map[category.Category][]string {
	return map[category.Category][]string{
		category.Udostoverenie: {"удостоверение", "id"},
		category.ENT: {
			"сертификат",
			"тестирования",
			"тестілеу",
			"тестируемого",
			"набранные баллы",
		},
		category.Lgota: {"льгота", "инвалид", "многодетная"},
		category.Diplom: {"диплом", "аттестат", "бакалавр", "магистр"},
		category.Privivka: {
			"прививка",
			"прививочный паспорт",
			"вакцинирование",
			"инфекция",
		},
		category.MedSpravka: {
			"медицинская справка",
			"справка",
			"медицинский",
			"туберкулез",
			"полиомелит",
			"гепатит",
			"вич",
			"спид",
			"карта ребенка",
			"дегельминтизация",
			"клинический анализ крови",
			"анализ крови",
			"анализ мочи",
			"моча",
			"кровь",
			"флюорография",
			"флюорографическое обследование",
			"флюорография легких",
		},
	}
}
