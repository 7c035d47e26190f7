package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FeatureAll — специальное значение в allowedExams, означающее доступ ко всем экзаменам.
const FeatureAll = "ALL"

// FeatureList представляет трёхзначное ограничение из features-плана:
// ключ отсутствует (ограничения нет), ключ задан пустым списком (ничего
// не разрешено) или ключ задан непустым списком разрешённых значений.
// Тип не позволяет перепутать отсутствующий ключ с пустым списком.
type FeatureList struct {
	defined bool
	items   []string
}

// Unrestricted возвращает FeatureList без ограничения (ключ отсутствовал).
func Unrestricted() FeatureList {
	return FeatureList{}
}

// NoneAllowed возвращает FeatureList, запрещающий все значения (пустой список).
func NoneAllowed() FeatureList {
	return FeatureList{defined: true}
}

// OnlyThese возвращает FeatureList, разрешающий только перечисленные значения.
func OnlyThese(items ...string) FeatureList {
	return FeatureList{defined: true, items: items}
}

// IsUnrestricted сообщает, что ограничение не задано.
func (f FeatureList) IsUnrestricted() bool {
	return !f.defined
}

// IsNoneAllowed сообщает, что задан пустой список: ни одно значение не разрешено.
func (f FeatureList) IsNoneAllowed() bool {
	return f.defined && len(f.items) == 0
}

// Items возвращает список разрешённых значений. Для неограниченного
// списка возвращает nil.
func (f FeatureList) Items() []string {
	return f.items
}

// Allows проверяет, разрешено ли значение. Отсутствующее ограничение
// и список, содержащий FeatureAll, разрешают любое значение.
func (f FeatureList) Allows(item string) bool {
	if !f.defined {
		return true
	}
	for _, it := range f.items {
		if it == FeatureAll || it == item {
			return true
		}
	}
	return false
}

// Restriction возвращает список значений для фильтра выборки и признак,
// что фильтр нужно применять. Отсутствующее ограничение и список,
// содержащий FeatureAll, фильтра не требуют.
func (f FeatureList) Restriction() ([]string, bool) {
	if !f.defined {
		return nil, false
	}
	for _, it := range f.items {
		if it == FeatureAll {
			return nil, false
		}
	}
	return f.items, true
}

// PlanFeatures содержит ограничения тарифного плана, прочитанные из JSON.
// Каждый ключ независим: отсутствие ключа означает отсутствие ограничения.
type PlanFeatures struct {
	AllowedExams    FeatureList
	AllowedSubjects FeatureList
	AllowedYears    FeatureList
}

type rawFeatures struct {
	AllowedExams    *[]any `json:"allowedExams,omitempty"`
	AllowedSubjects *[]any `json:"allowedSubjectIds,omitempty"`
	AllowedYears    *[]any `json:"allowedYears,omitempty"`
}

// UnmarshalJSON читает features-план, различая отсутствующий ключ и пустой список.
// Числовые значения (годы) приводятся к строкам.
func (p *PlanFeatures) UnmarshalJSON(data []byte) error {
	var raw rawFeatures
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if p.AllowedExams, err = featureListFromRaw(raw.AllowedExams); err != nil {
		return err
	}
	if p.AllowedSubjects, err = featureListFromRaw(raw.AllowedSubjects); err != nil {
		return err
	}
	if p.AllowedYears, err = featureListFromRaw(raw.AllowedYears); err != nil {
		return err
	}
	return nil
}

// MarshalJSON восстанавливает исходную трёхзначную семантику:
// неограниченные ключи в JSON не попадают.
func (p PlanFeatures) MarshalJSON() ([]byte, error) {
	raw := rawFeatures{
		AllowedExams:    featureListToRaw(p.AllowedExams),
		AllowedSubjects: featureListToRaw(p.AllowedSubjects),
		AllowedYears:    featureListToRaw(p.AllowedYears),
	}
	return json.Marshal(raw)
}

// ParsePlanFeatures разбирает содержимое колонки features. Пустое значение
// или SQL NULL означают план без ограничений.
func ParsePlanFeatures(data []byte) (PlanFeatures, error) {
	var p PlanFeatures
	if len(data) == 0 || string(data) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return PlanFeatures{}, fmt.Errorf("models.ParsePlanFeatures: %w", err)
	}
	return p, nil
}

func featureListFromRaw(values *[]any) (FeatureList, error) {
	if values == nil {
		return Unrestricted(), nil
	}
	items := make([]string, 0, len(*values))
	for _, v := range *values {
		switch t := v.(type) {
		case string:
			items = append(items, t)
		case float64:
			items = append(items, strconv.FormatInt(int64(t), 10))
		default:
			return FeatureList{}, fmt.Errorf("models.featureListFromRaw: unsupported list value %v", v)
		}
	}
	return FeatureList{defined: true, items: items}, nil
}

func featureListToRaw(f FeatureList) *[]any {
	if !f.defined {
		return nil
	}
	values := make([]any, 0, len(f.items))
	for _, it := range f.items {
		values = append(values, it)
	}
	return &values
}
