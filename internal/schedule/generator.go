// internal/schedule/generator.go
package schedule

// Generate строит канонический упорядоченный график взносов по условиям
// договора: первоначальный взнос (если есть), затем месяцы 1..PeriodMonths.
// Порядок фиксирован и служит основой позиционного сопоставления —
// пересортировывать результат по датам нельзя.
func Generate(terms ContractTerms) ([]ScheduleItem, error) {
	if terms.MonthlyAmount < 0 {
		return nil, &InvalidTermsError{Field: "monthlyAmount", Reason: "сумма не может быть отрицательной"}
	}
	if terms.PeriodMonths < 0 {
		return nil, &InvalidTermsError{Field: "periodMonths", Reason: "срок не может быть отрицательным"}
	}
	if terms.InitialAmount < 0 {
		return nil, &InvalidTermsError{Field: "initialAmount", Reason: "сумма не может быть отрицательной"}
	}
	if terms.PeriodMonths > 0 && terms.MonthlyAmount == 0 {
		return nil, &InvalidTermsError{Field: "monthlyAmount", Reason: "при ненулевом сроке требуется сумма взноса"}
	}

	// PeriodMonths = 0 без первоначального взноса — валидный пустой график
	// (договор закрыт при подписании); обработчик сам решает, как его показать.
	items := make([]ScheduleItem, 0, terms.PeriodMonths+1)

	if terms.InitialAmount > 0 {
		due := terms.StartDate
		if terms.InitialDueDate != nil {
			due = *terms.InitialDueDate
		}
		items = append(items, ScheduleItem{
			MonthIndex:    0,
			DueDate:       due,
			NominalAmount: terms.InitialAmount,
		})
	}

	for i := 1; i <= terms.PeriodMonths; i++ {
		items = append(items, ScheduleItem{
			MonthIndex:    i,
			DueDate:       terms.StartDate.AddDate(0, i, 0),
			NominalAmount: terms.MonthlyAmount,
		})
	}

	return items, nil
}
