package models

// Exam — экзамен в каталоге (например, WAEC, JAMB).
type Exam struct {
	ID   int    `json:"id"`   // Уникальный идентификатор экзамена
	Name string `json:"name"` // Отображаемое название, используется в allowedExams
}

// Paper — конкретная экзаменационная работа: экзамен, предмет и год.
type Paper struct {
	ID        int    `json:"id"`         // Уникальный идентификатор работы
	ExamID    int    `json:"exam_id"`    // Экзамен, к которому относится работа
	ExamName  string `json:"exam_name"`  // Название экзамена
	SubjectID int    `json:"subject_id"` // Предмет работы
	Year      int    `json:"year"`       // Год работы
	Title     string `json:"title"`      // Название работы
}
